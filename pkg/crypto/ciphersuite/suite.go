// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package ciphersuite implements the bulk record-protection algorithms
// negotiated during a handshake and the small registry the handshake-type
// resolver (spec.md §4.4) consults to decide whether a cipher suite
// provides perfect forward secrecy.
package ciphersuite

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/coretls/tlshandshake/pkg/protocol"
)

// KeyExchangeAlgorithm identifies how a suite derives its premaster
// secret, which the handshake-type resolver uses to set the PFS bit
// (spec.md §4.4): ECDHE suites are forward-secret, RSA suites are not.
type KeyExchangeAlgorithm int

const (
	KeyExchangeRSA KeyExchangeAlgorithm = iota
	KeyExchangeECDHE
)

// AEAD is the subset of a negotiated bulk cipher the record layer needs
// once key material has been derived; GCM is the only implementation.
type AEAD interface {
	Encrypt(contentType protocol.ContentType, version protocol.Version, plaintext []byte) ([]byte, error)
	Decrypt(contentType protocol.ContentType, version protocol.Version, ciphertext []byte) ([]byte, error)
	TagLength() int
}

// Suite describes a negotiable TLS 1.2 cipher suite: its wire ID, the
// key-exchange algorithm that sets the PFS bit, the PRF hash RFC 5246
// §7.4.9 ties to the suite (SHA-256 unless the suite specifies
// otherwise), and the symmetric key material sizes the key-block
// expansion must produce.
type Suite struct {
	ID            uint16
	Name          string
	KeyExchange   KeyExchangeAlgorithm
	PRFHash       func() hash.Hash
	KeyLength     int
	FixedIVLength int
	NewAEAD       func(localKey, localIV, remoteKey, remoteIV []byte) (AEAD, error)
}

// IsForwardSecret reports whether the suite's key exchange provides
// perfect forward secrecy.
func (s *Suite) IsForwardSecret() bool {
	return s.KeyExchange == KeyExchangeECDHE
}

// Well-known TLS 1.2 cipher suite IDs this driver negotiates.
// https://www.iana.org/assignments/tls-parameters/tls-parameters.xhtml
const (
	TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256 uint16 = 0xc02f
	TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384 uint16 = 0xc030
	TLS_RSA_WITH_AES_128_GCM_SHA256       uint16 = 0x009c
)

var registry = map[uint16]*Suite{
	TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256: {
		ID:            TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		Name:          "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256",
		KeyExchange:   KeyExchangeECDHE,
		PRFHash:       sha256.New,
		KeyLength:     16,
		FixedIVLength: 4,
		NewAEAD:       newGCMAEAD,
	},
	TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384: {
		ID:            TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		Name:          "TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384",
		KeyExchange:   KeyExchangeECDHE,
		PRFHash:       sha512.New384,
		KeyLength:     32,
		FixedIVLength: 4,
		NewAEAD:       newGCMAEAD,
	},
	TLS_RSA_WITH_AES_128_GCM_SHA256: {
		ID:            TLS_RSA_WITH_AES_128_GCM_SHA256,
		Name:          "TLS_RSA_WITH_AES_128_GCM_SHA256",
		KeyExchange:   KeyExchangeRSA,
		PRFHash:       sha256.New,
		KeyLength:     16,
		FixedIVLength: 4,
		NewAEAD:       newGCMAEAD,
	},
}

func newGCMAEAD(localKey, localIV, remoteKey, remoteIV []byte) (AEAD, error) {
	return NewGCM(localKey, localIV, remoteKey, remoteIV)
}

// ByID looks up a registered suite by its wire ID.
func ByID(id uint16) (*Suite, error) {
	s, ok := registry[id]
	if !ok {
		return nil, errUnknownCipherSuiteID
	}
	return s, nil
}

// SupportedIDs returns the suite IDs this driver offers, in descending
// preference order, for use in an outgoing ClientHello.
func SupportedIDs() []uint16 {
	return []uint16{
		TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		TLS_RSA_WITH_AES_128_GCM_SHA256,
	}
}

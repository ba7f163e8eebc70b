// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshakefsm

import (
	"crypto/x509"

	"github.com/coretls/tlshandshake/pkg/crypto/ciphersuite"
	"github.com/coretls/tlshandshake/pkg/crypto/elliptic"
	"github.com/coretls/tlshandshake/pkg/protocol/handshake"
	zctls "github.com/zmap/zcrypto/tls"
)

// Exchange carries the values the default handlers (handlers.go) produce
// and consume as the handshake progresses. It is intentionally a plain
// struct rather than something the driver core inspects: spec.md treats
// per-message encoding/decoding and cryptographic primitives as external
// collaborators, so only the handlers in this package's handlers.go write
// it, and apart from them only the handshake-type resolver (resolver.go)
// reads it — not table.go/framer.go/negotiate.go.
type Exchange struct {
	ServerName string

	ClientRandom handshake.Random
	ServerRandom handshake.Random

	OfferedCipherSuites []uint16
	CipherSuite         *ciphersuite.Suite

	// ECDHE key-exchange state, populated only for PFS suites.
	Curve           elliptic.Curve
	LocalECDHEPriv  []byte
	LocalECDHEPub   []byte
	RemoteECDHEPub  []byte

	Certificates [][]byte
	PeerCertificates []*x509.Certificate

	OCSPResponse []byte // stapled response this side will send, if any

	MasterSecret []byte
	Keys         *EncryptionMaterial

	ResumedSessionID []byte
	IsResumption      bool

	// *Log fields are the zcrypto scan-log projections of the messages
	// that carried the values above, populated by the same handlers that
	// produce/parse those messages (MessageServerHello.MakeLog,
	// MessageFinished.MakeLog). pkg/handshakelog assembles them into a
	// zcrypto/tls.ServerHandshake once the connection finishes.
	ServerHelloLog    *zctls.ServerHello
	ServerFinishedLog *zctls.Finished
	ClientFinishedLog *zctls.Finished
}

// EncryptionMaterial is the AEAD state installed once the key block has
// been derived. ClientWriteAEAD encrypts under the client write key and
// decrypts under the server write key; ServerWriteAEAD is the reverse, so
// each side uses its own one for both directions. The root Conn applies it
// only to application_data records after the handshake; this driver does
// not switch the record layer to encryption at ChangeCipherSpec, so
// Finished is sent unencrypted (see DESIGN.md).
type EncryptionMaterial struct {
	ClientWriteAEAD ciphersuite.AEAD
	ServerWriteAEAD ciphersuite.AEAD
}

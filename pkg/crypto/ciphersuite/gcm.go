// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/coretls/tlshandshake/pkg/protocol"
)

const (
	gcmTagLength         = 16
	gcmExplicitNonceLen  = 8
	gcmImplicitNonceLen  = 4
	gcmFullNonceLen      = gcmImplicitNonceLen + gcmExplicitNonceLen
	gcmAdditionalDataLen = 8 + 1 + 2 + 2 // seq_num || type || version || length
)

// GCM implements the TLS_*_WITH_AES_*_GCM_SHA* record protection
// (RFC 5288). Unlike the DTLS record layer, TLS carries no explicit
// sequence number on the wire: both sides derive the 64-bit sequence
// implicitly from record order, which GCM tracks itself per direction.
type GCM struct {
	localGCM, remoteGCM         cipher.AEAD
	localWriteIV, remoteWriteIV []byte // 4-byte implicit salt, RFC 5288 §3

	localSeq  uint64
	remoteSeq uint64
}

// NewGCM derives a GCM cipher suite instance from the key block produced
// by the PRF's key expansion (pkg/crypto/prf.GenerateEncryptionKeys).
func NewGCM(localKey, localWriteIV, remoteKey, remoteWriteIV []byte) (*GCM, error) {
	localBlock, err := aes.NewCipher(localKey)
	if err != nil {
		return nil, err
	}
	localGCM, err := cipher.NewGCM(localBlock)
	if err != nil {
		return nil, err
	}

	remoteBlock, err := aes.NewCipher(remoteKey)
	if err != nil {
		return nil, err
	}
	remoteGCM, err := cipher.NewGCM(remoteBlock)
	if err != nil {
		return nil, err
	}

	return &GCM{
		localGCM:      localGCM,
		localWriteIV:  localWriteIV,
		remoteGCM:     remoteGCM,
		remoteWriteIV: remoteWriteIV,
	}, nil
}

// TagLength reports the authentication tag overhead Encrypt adds, beyond
// the explicit nonce, to a plaintext payload.
func (g *GCM) TagLength() int { return gcmTagLength }

// Encrypt seals a single TLS record's plaintext payload for contentType,
// using and then advancing the local sequence number. The returned slice
// is the explicit nonce followed by the sealed payload and tag; it does
// not include the 5-byte record header.
func (g *GCM) Encrypt(contentType protocol.ContentType, version protocol.Version, plaintext []byte) ([]byte, error) {
	seq := atomic.AddUint64(&g.localSeq, 1) - 1

	nonce := make([]byte, gcmFullNonceLen)
	copy(nonce, g.localWriteIV)
	if _, err := rand.Read(nonce[gcmImplicitNonceLen:]); err != nil {
		return nil, err
	}

	aad := additionalData(seq, contentType, version, len(plaintext))
	sealed := g.localGCM.Seal(nil, nonce, plaintext, aad)

	out := make([]byte, gcmExplicitNonceLen+len(sealed))
	copy(out, nonce[gcmImplicitNonceLen:])
	copy(out[gcmExplicitNonceLen:], sealed)
	return out, nil
}

// Decrypt opens a record whose ciphertext (explicit nonce + sealed
// payload) was produced by the peer's Encrypt, advancing the remote
// sequence number on success only — a failed open must not desynchronize
// the sequence counter from the sender, since the caller is expected to
// treat any Decrypt error as fatal (spec.md §7) and tear down the
// connection rather than retry.
func (g *GCM) Decrypt(contentType protocol.ContentType, version protocol.Version, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < gcmExplicitNonceLen+gcmTagLength {
		return nil, errNotEnoughRoomForNonce
	}

	nonce := make([]byte, gcmFullNonceLen)
	copy(nonce, g.remoteWriteIV)
	copy(nonce[gcmImplicitNonceLen:], ciphertext[:gcmExplicitNonceLen])
	sealed := ciphertext[gcmExplicitNonceLen:]

	seq := atomic.LoadUint64(&g.remoteSeq)
	aad := additionalData(seq, contentType, version, len(sealed)-gcmTagLength)

	out, err := g.remoteGCM.Open(sealed[:0], nonce, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errDecryptPacket, err) //nolint:errorlint
	}
	atomic.AddUint64(&g.remoteSeq, 1)
	return out, nil
}

// additionalData builds the AEAD associated data RFC 5246 §6.2.3.3
// defines for MAC-then-encrypt-style AEAD ciphers: the implicit 64-bit
// sequence number followed by the record's type, version, and plaintext
// length fields.
func additionalData(seq uint64, contentType protocol.ContentType, version protocol.Version, plaintextLen int) []byte {
	aad := make([]byte, gcmAdditionalDataLen)
	binary.BigEndian.PutUint64(aad[0:8], seq)
	aad[8] = byte(contentType)
	aad[9] = version.Major
	aad[10] = version.Minor
	binary.BigEndian.PutUint16(aad[11:13], uint16(plaintextLen))
	return aad
}

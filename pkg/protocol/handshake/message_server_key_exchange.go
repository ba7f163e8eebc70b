// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "golang.org/x/crypto/cryptobyte"

const curveTypeNamedCurve = 3

// MessageServerKeyExchange carries the server's ephemeral ECDHE key share
// and a signature over it, present only in PERFECT_FORWARD_SECRECY shapes.
//
// https://tools.ietf.org/html/rfc4492#section-5.4
type MessageServerKeyExchange struct {
	NamedGroup uint16 // NamedCurve ID, e.g. x25519 = 29, secp256r1 = 23

	PublicKey []byte

	SignatureScheme uint16
	Signature       []byte
}

// Type returns the handshake message type.
func (MessageServerKeyExchange) Type() Type { return TypeServerKeyExchange }

// Marshal encodes an ECDHE ServerKeyExchange.
func (m *MessageServerKeyExchange) Marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8(curveTypeNamedCurve)
	b.AddUint16(m.NamedGroup)
	b.AddUint8LengthPrefixed(func(c *cryptobyte.Builder) {
		c.AddBytes(m.PublicKey)
	})
	b.AddUint16(m.SignatureScheme)
	b.AddUint16LengthPrefixed(func(c *cryptobyte.Builder) {
		c.AddBytes(m.Signature)
	})
	return b.Bytes()
}

// Unmarshal decodes an ECDHE ServerKeyExchange.
func (m *MessageServerKeyExchange) Unmarshal(data []byte) error {
	s := cryptobyte.String(data)

	var curveType uint8
	if !s.ReadUint8(&curveType) || curveType != curveTypeNamedCurve {
		return errUnsupportedKeyExchange
	}
	if !s.ReadUint16(&m.NamedGroup) {
		return errBufferTooSmall
	}

	var pub cryptobyte.String
	if !s.ReadUint8LengthPrefixed(&pub) {
		return errBufferTooSmall
	}
	m.PublicKey = append([]byte{}, pub...)

	if !s.ReadUint16(&m.SignatureScheme) {
		return errBufferTooSmall
	}
	var sig cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&sig) {
		return errBufferTooSmall
	}
	m.Signature = append([]byte{}, sig...)
	return nil
}

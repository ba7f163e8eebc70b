// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "golang.org/x/crypto/cryptobyte"

// MessageClientKeyExchange carries the client's contribution to the
// pre-master secret. This driver only implements the ECDHE form (a raw
// public key share); RSA key transport is not wired to any shape.
//
// https://tools.ietf.org/html/rfc4492#section-5.7
type MessageClientKeyExchange struct {
	PublicKey []byte
}

// Type returns the handshake message type.
func (MessageClientKeyExchange) Type() Type { return TypeClientKeyExchange }

// Marshal encodes the client's ECDHE public key share.
func (m *MessageClientKeyExchange) Marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8LengthPrefixed(func(c *cryptobyte.Builder) {
		c.AddBytes(m.PublicKey)
	})
	return b.Bytes()
}

// Unmarshal decodes the client's ECDHE public key share.
func (m *MessageClientKeyExchange) Unmarshal(data []byte) error {
	s := cryptobyte.String(data)
	var pub cryptobyte.String
	if !s.ReadUint8LengthPrefixed(&pub) {
		return errBufferTooSmall
	}
	m.PublicKey = append([]byte{}, pub...)
	return nil
}

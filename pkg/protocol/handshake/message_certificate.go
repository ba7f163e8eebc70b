// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "golang.org/x/crypto/cryptobyte"

// MessageCertificate carries the sender's certificate chain, leaf first.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.2
type MessageCertificate struct {
	Certificates [][]byte // DER-encoded X.509, leaf first
}

// Type returns the handshake message type.
func (MessageCertificate) Type() Type { return TypeCertificate }

// Marshal encodes the certificate chain.
func (m *MessageCertificate) Marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint24LengthPrefixed(func(chain *cryptobyte.Builder) {
		for _, cert := range m.Certificates {
			chain.AddUint24LengthPrefixed(func(c *cryptobyte.Builder) {
				c.AddBytes(cert)
			})
		}
	})
	return b.Bytes()
}

// Unmarshal decodes a certificate chain. An empty chain is permitted at
// the wire level (required to be non-empty only for the server's mandatory
// Certificate slot; CLIENT_CERT itself is out of scope per spec.md).
func (m *MessageCertificate) Unmarshal(data []byte) error {
	s := cryptobyte.String(data)
	var chain cryptobyte.String
	if !s.ReadUint24LengthPrefixed(&chain) {
		return errBufferTooSmall
	}

	m.Certificates = nil
	for !chain.Empty() {
		var cert cryptobyte.String
		if !chain.ReadUint24LengthPrefixed(&cert) {
			return errBufferTooSmall
		}
		m.Certificates = append(m.Certificates, append([]byte{}, cert...))
	}
	return nil
}

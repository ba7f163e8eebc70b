// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"golang.org/x/crypto/cryptobyte"

	"github.com/coretls/tlshandshake/pkg/protocol"
	"github.com/coretls/tlshandshake/pkg/protocol/extension"
	"github.com/coretls/tlshandshake/pkg/sni"
)

// MessageClientHello is the first message of every handshake. It
// carries the client's offered version, randomness, an optional session id
// to attempt resumption, the cipher suites and compression methods it
// supports, and any extensions.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.2
type MessageClientHello struct {
	Version protocol.Version
	Random  Random

	SessionID []byte

	CipherSuiteIDs     []uint16
	CompressionMethods []*protocol.CompressionMethod
	Extensions         []extension.Extension
}

// Type returns the handshake message type.
func (MessageClientHello) Type() Type { return TypeClientHello }

// Marshal encodes the message body (header excluded; the framer prepends
// it).
func (m *MessageClientHello) Marshal() ([]byte, error) {
	if len(m.CipherSuiteIDs) == 0 {
		return nil, errCipherSuiteUnset
	}
	if len(m.CompressionMethods) == 0 {
		return nil, errCompressionMethodUnset
	}

	var b cryptobyte.Builder
	b.AddUint8(m.Version.Major)
	b.AddUint8(m.Version.Minor)

	random := m.Random.MarshalFixed()
	b.AddBytes(random[:])

	b.AddUint8LengthPrefixed(func(c *cryptobyte.Builder) {
		c.AddBytes(m.SessionID)
	})

	b.AddUint16LengthPrefixed(func(c *cryptobyte.Builder) {
		for _, id := range m.CipherSuiteIDs {
			c.AddUint16(id)
		}
	})

	b.AddUint8LengthPrefixed(func(c *cryptobyte.Builder) {
		for _, cm := range m.CompressionMethods {
			c.AddUint8(byte(cm.ID))
		}
	})

	extBytes, err := extension.Marshal(m.Extensions)
	if err != nil {
		return nil, err
	}

	out, err := b.Bytes()
	if err != nil {
		return nil, err
	}
	return append(out, extBytes...), nil
}

// Unmarshal decodes a ClientHello body.
func (m *MessageClientHello) Unmarshal(data []byte) error {
	s := cryptobyte.String(data)

	var major, minor uint8
	if !s.ReadUint8(&major) || !s.ReadUint8(&minor) {
		return errBufferTooSmall
	}
	m.Version = protocol.Version{Major: major, Minor: minor}

	var random [RandomLength]byte
	if !s.CopyBytes(random[:]) {
		return errBufferTooSmall
	}
	m.Random.UnmarshalFixed(random)

	var sessionID cryptobyte.String
	if !s.ReadUint8LengthPrefixed(&sessionID) {
		return errBufferTooSmall
	}
	m.SessionID = append([]byte{}, sessionID...)

	var suites cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&suites) {
		return errBufferTooSmall
	}
	m.CipherSuiteIDs = nil
	for !suites.Empty() {
		var id uint16
		if !suites.ReadUint16(&id) {
			return errBufferTooSmall
		}
		m.CipherSuiteIDs = append(m.CipherSuiteIDs, id)
	}

	var compression cryptobyte.String
	if !s.ReadUint8LengthPrefixed(&compression) {
		return errBufferTooSmall
	}
	methods := protocol.CompressionMethods()
	m.CompressionMethods = nil
	for !compression.Empty() {
		var id uint8
		if !compression.ReadUint8(&id) {
			return errBufferTooSmall
		}
		cm, ok := methods[protocol.CompressionMethodID(id)]
		if !ok {
			return errInvalidCompressionMethod
		}
		m.CompressionMethods = append(m.CompressionMethods, cm)
	}

	if s.Empty() {
		m.Extensions = []extension.Extension{}
		return nil
	}
	exts, err := extension.Unmarshal(s)
	if err != nil {
		return err
	}
	m.Extensions = exts
	return nil
}

// ServerName returns the host name from the server_name extension,
// normalized with pkg/sni, if present.
func (m *MessageClientHello) ServerName() (string, bool) {
	for _, e := range m.Extensions {
		if sn, ok := e.(*extension.ServerName); ok {
			return sni.Normalize(sn.HostName), true
		}
	}
	return "", false
}

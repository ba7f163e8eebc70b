// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"golang.org/x/crypto/cryptobyte"

	"github.com/coretls/tlshandshake/pkg/protocol"
	"github.com/coretls/tlshandshake/pkg/protocol/extension"
	"github.com/zmap/zcrypto/tls"
)

// MessageServerHello is sent in response to a ClientHello message when the
// server was able to find an acceptable set of algorithms. If it cannot
// find such a match, it responds with a handshake_failure alert instead.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.3
type MessageServerHello struct {
	Version protocol.Version
	Random  Random

	SessionID []byte

	CipherSuiteID     *uint16
	CompressionMethod *protocol.CompressionMethod
	Extensions        []extension.Extension
}

// Type returns the handshake message type.
func (MessageServerHello) Type() Type { return TypeServerHello }

// Marshal encodes the message body (header excluded; the framer prepends
// it).
func (m *MessageServerHello) Marshal() ([]byte, error) {
	if m.CipherSuiteID == nil {
		return nil, errCipherSuiteUnset
	}
	if m.CompressionMethod == nil {
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

	b.AddUint16(*m.CipherSuiteID)
	b.AddUint8(byte(m.CompressionMethod.ID))

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

// Unmarshal decodes a ServerHello body.
func (m *MessageServerHello) Unmarshal(data []byte) error {
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

	var cipherSuiteID uint16
	if !s.ReadUint16(&cipherSuiteID) {
		return errBufferTooSmall
	}
	m.CipherSuiteID = &cipherSuiteID

	var compressionID uint8
	if !s.ReadUint8(&compressionID) {
		return errBufferTooSmall
	}
	cm, ok := protocol.CompressionMethods()[protocol.CompressionMethodID(compressionID)]
	if !ok {
		return errInvalidCompressionMethod
	}
	m.CompressionMethod = cm

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

// MakeLog projects the message into zcrypto's scan-log shape, the same way
// a TLS fingerprinting scanner would record an observed handshake.
func (m *MessageServerHello) MakeLog() *tls.ServerHello {
	ret := &tls.ServerHello{}

	ret.Version = tls.TLSVersion((uint16(m.Version.Major) << 8) | uint16(m.Version.Minor))

	ret.Random = make([]byte, RandomLength)
	binary.BigEndian.PutUint32(ret.Random[:4], uint32(m.Random.GMTUnixTime.Unix()))
	copy(ret.Random[4:], m.Random.RandomBytes[:])

	ret.SessionID = append([]byte{}, m.SessionID...)

	if m.CipherSuiteID != nil {
		ret.CipherSuite = tls.CipherSuiteID(*m.CipherSuiteID)
	}
	if m.CompressionMethod != nil {
		ret.CompressionMethod = uint8(m.CompressionMethod.ID)
	}

	for _, anyExt := range m.Extensions {
		switch e := anyExt.(type) {
		case *extension.ALPN:
			if len(e.ProtocolNameList) > 0 {
				ret.AlpnProtocol = e.ProtocolNameList[0]
			}
		case *extension.RenegotiationInfo:
			ret.SecureRenegotiation = true
		case *extension.UseExtendedMasterSecret:
			ret.ExtendedMasterSecret = e.Supported
		default:
			// unrecognized extension, or one zcrypto's scan log doesn't model
		}
	}
	return ret
}

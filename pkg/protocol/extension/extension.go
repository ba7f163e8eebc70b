// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package extension implements the small set of ClientHello/ServerHello
// extensions this driver's shape selectors care about: server_name (for
// session-cache keying), ALPN, renegotiation_info and
// extended_master_secret (both carried for interoperability even though
// this driver never renegotiates), and a passthrough Unknown type for
// anything else so an unrecognized extension never aborts the handshake.
package extension

import (
	"golang.org/x/crypto/cryptobyte"
)

// Type is an IANA TLS ExtensionType.
//
// https://www.iana.org/assignments/tls-extensiontype-values
type Type uint16

// Extension type numbers this package names. server_name, ALPN,
// renegotiation_info and extended_master_secret are parsed by name;
// everything else, supported_point_formats and connection_id included,
// decodes to Unknown.
const (
	TypeServerName            Type = 0
	TypeALPN                  Type = 16
	TypeRenegotiationInfo     Type = 65281
	TypeExtendedMasterSecret  Type = 23
	TypeSupportedPointFormats Type = 11
	TypeConnectionID          Type = 54
)

// Extension is implemented by every recognized extension body.
type Extension interface {
	Type() Type
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// Marshal encodes a list of extensions to the wire form that follows the
// compression-method list in a ClientHello/ServerHello: a 2-byte total
// length followed by each extension's (type, length, body) triplet. An
// empty list marshals to a present-but-empty block (a zero 2-byte length),
// the form Unmarshal reads back as an empty list.
func Marshal(exts []Extension) ([]byte, error) {
	if len(exts) == 0 {
		return []byte{0x00, 0x00}, nil
	}

	var body cryptobyte.Builder
	for _, e := range exts {
		raw, err := e.Marshal()
		if err != nil {
			return nil, err
		}
		typ := e.Type()
		body.AddUint16(uint16(typ))
		body.AddUint16LengthPrefixed(func(c *cryptobyte.Builder) {
			c.AddBytes(raw)
		})
	}
	bodyBytes, err := body.Bytes()
	if err != nil {
		return nil, err
	}

	var out cryptobyte.Builder
	out.AddUint16LengthPrefixed(func(c *cryptobyte.Builder) {
		c.AddBytes(bodyBytes)
	})
	return out.Bytes()
}

// Unmarshal decodes the extensions block. A present-but-empty block (a
// zero-length outer size) yields an empty, non-nil slice.
func Unmarshal(data []byte) ([]Extension, error) {
	if len(data) == 0 {
		return []Extension{}, nil
	}

	s := cryptobyte.String(data)
	var block cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&block) {
		return nil, errTruncatedExtensions
	}

	out := []Extension{}
	for !block.Empty() {
		var typ uint16
		var body cryptobyte.String
		if !block.ReadUint16(&typ) || !block.ReadUint16LengthPrefixed(&body) {
			return nil, errTruncatedExtensions
		}

		ext, err := newExtension(Type(typ))
		if err != nil {
			return nil, err
		}
		if err := ext.Unmarshal(body); err != nil {
			return nil, err
		}
		out = append(out, ext)
	}
	return out, nil
}

func newExtension(t Type) (Extension, error) {
	switch t {
	case TypeServerName:
		return &ServerName{}, nil
	case TypeALPN:
		return &ALPN{}, nil
	case TypeRenegotiationInfo:
		return &RenegotiationInfo{}, nil
	case TypeExtendedMasterSecret:
		return &UseExtendedMasterSecret{}, nil
	default:
		return &Unknown{typ: t}, nil
	}
}

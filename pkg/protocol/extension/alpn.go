// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "golang.org/x/crypto/cryptobyte"

// ALPN is the application_layer_protocol_negotiation extension.
//
// https://tools.ietf.org/html/rfc7301
type ALPN struct {
	ProtocolNameList []string
}

// Type returns the extension type.
func (ALPN) Type() Type { return TypeALPN }

// Marshal encodes the protocol name list.
func (e *ALPN) Marshal() ([]byte, error) {
	var list cryptobyte.Builder
	for _, name := range e.ProtocolNameList {
		list.AddUint8LengthPrefixed(func(c *cryptobyte.Builder) {
			c.AddBytes([]byte(name))
		})
	}
	listBytes, err := list.Bytes()
	if err != nil {
		return nil, err
	}

	var out cryptobyte.Builder
	out.AddUint16LengthPrefixed(func(c *cryptobyte.Builder) {
		c.AddBytes(listBytes)
	})
	return out.Bytes()
}

// Unmarshal decodes the protocol name list.
func (e *ALPN) Unmarshal(data []byte) error {
	s := cryptobyte.String(data)
	var list cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&list) {
		return errTruncatedExtensions
	}
	for !list.Empty() {
		var name cryptobyte.String
		if !list.ReadUint8LengthPrefixed(&name) {
			return errTruncatedExtensions
		}
		e.ProtocolNameList = append(e.ProtocolNameList, string(name))
	}
	return nil
}

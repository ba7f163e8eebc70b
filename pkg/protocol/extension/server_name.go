// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "golang.org/x/crypto/cryptobyte"

const serverNameTypeHostName = 0

// ServerName is the server_name (SNI) extension.
//
// https://tools.ietf.org/html/rfc6066#section-3
type ServerName struct {
	HostName string
}

// Type returns the extension type.
func (ServerName) Type() Type { return TypeServerName }

// Marshal encodes the extension body (a one-entry ServerNameList).
func (e *ServerName) Marshal() ([]byte, error) {
	var list cryptobyte.Builder
	list.AddUint8(serverNameTypeHostName)
	list.AddUint16LengthPrefixed(func(c *cryptobyte.Builder) {
		c.AddBytes([]byte(e.HostName))
	})
	entry, err := list.Bytes()
	if err != nil {
		return nil, err
	}

	var out cryptobyte.Builder
	out.AddUint16LengthPrefixed(func(c *cryptobyte.Builder) {
		c.AddBytes(entry)
	})
	return out.Bytes()
}

// Unmarshal decodes the extension body, keeping only the first host_name
// entry (the only entry type in use on the modern web).
func (e *ServerName) Unmarshal(data []byte) error {
	s := cryptobyte.String(data)
	var list cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&list) {
		return errInvalidServerNameExt
	}

	for !list.Empty() {
		var nameType uint8
		var name cryptobyte.String
		if !list.ReadUint8(&nameType) || !list.ReadUint16LengthPrefixed(&name) {
			return errInvalidServerNameExt
		}
		if nameType == serverNameTypeHostName && e.HostName == "" {
			e.HostName = string(name)
		}
	}
	return nil
}

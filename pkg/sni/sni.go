// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package sni normalizes the server_name extension value (RFC 6066 §3):
// the client normalizes the name it sends, and the server normalizes the
// name it reads from a ClientHello.
package sni

import (
	"strings"

	"golang.org/x/net/idna"
)

// Normalize lowercases name and converts it to its ASCII (punycode) form,
// the way any TLS stack compares SNI values: RFC 6066 requires the
// server_name value to be a DNS hostname, which is case-insensitive and
// may arrive as a U-label. An empty name is returned unchanged and an
// unparseable one lowercased, rather than rejected — the ClientHello
// handler treats SNI as
// optional, so a malformed value should fall through rather than abort
// the handshake.
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return strings.ToLower(name)
	}
	return ascii
}

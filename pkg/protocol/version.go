// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package protocol holds the wire-level types shared by every layer of the
// handshake: protocol version, record content type, and compression method.
package protocol

import "fmt"

// Version is the two-byte (major, minor) TLS protocol version.
//
// https://tools.ietf.org/html/rfc5246#appendix-E
type Version struct {
	Major, Minor uint8
}

// Named TLS versions in scope for this driver. TLS 1.3 is out of scope.
var (
	Version10 = Version{Major: 0x03, Minor: 0x01}
	Version11 = Version{Major: 0x03, Minor: 0x02}
	Version12 = Version{Major: 0x03, Minor: 0x03}
)

// String implements fmt.Stringer.
func (v Version) String() string {
	switch v {
	case Version10:
		return "TLS 1.0"
	case Version11:
		return "TLS 1.1"
	case Version12:
		return "TLS 1.2"
	default:
		return fmt.Sprintf("TLS(%d.%d)", v.Major, v.Minor)
	}
}

// Supported reports whether v is one of the three versions this driver
// negotiates.
func (v Version) Supported() bool {
	return v == Version10 || v == Version11 || v == Version12
}

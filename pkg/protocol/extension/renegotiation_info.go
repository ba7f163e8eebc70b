// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "golang.org/x/crypto/cryptobyte"

// RenegotiationInfo is the secure renegotiation indicator. This driver
// never renegotiates (spec.md Non-goals), so it always carries an empty
// renegotiated_connection value: present purely so peers that require the
// indicator (RFC 5746) don't refuse the initial handshake.
//
// https://tools.ietf.org/html/rfc5746#section-3.2
type RenegotiationInfo struct{}

// Type returns the extension type.
func (RenegotiationInfo) Type() Type { return TypeRenegotiationInfo }

// Marshal encodes an empty renegotiated_connection.
func (RenegotiationInfo) Marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8LengthPrefixed(func(c *cryptobyte.Builder) {})
	return b.Bytes()
}

// Unmarshal accepts and discards the renegotiated_connection value.
func (RenegotiationInfo) Unmarshal([]byte) error {
	return nil
}

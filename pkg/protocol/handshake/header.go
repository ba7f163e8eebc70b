// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"golang.org/x/crypto/cryptobyte"
)

// HeaderLength is the fixed size, in bytes, of a TLS handshake header: one
// byte of message type followed by a 24-bit big-endian payload length.
//
// https://tools.ietf.org/html/rfc5246#section-7.4
const HeaderLength = 4

// MaxMessageLength is the driver-enforced upper bound on a single
// handshake message's payload, independent of any record-layer limit.
// A declared length above this is rejected as a malformed message
// (spec: MAX_HANDSHAKE_MESSAGE_LENGTH).
const MaxMessageLength = 1 << 24 // 24-bit length field ceiling; callers may tighten further

// Header is the 4-byte header that precedes every handshake message's
// payload on the wire, and whose bytes are themselves part of the
// handshake transcript.
type Header struct {
	Type   Type
	Length uint32 // fits in 24 bits
}

// Marshal encodes the header to its fixed 4-byte wire form.
func (h *Header) Marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8(byte(h.Type))
	b.AddUint24(h.Length)
	return b.Bytes()
}

// Unmarshal decodes a 4-byte handshake header.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < HeaderLength {
		return errBufferTooSmall
	}
	s := cryptobyte.String(data)
	var typ uint8
	var length uint32
	if !s.ReadUint8(&typ) || !s.ReadUint24(&length) {
		return errBufferTooSmall
	}
	h.Type = Type(typ)
	h.Length = length
	return nil
}

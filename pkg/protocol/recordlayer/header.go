// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package recordlayer implements the stream-oriented TLS record framing
// that sits underneath the handshake driver: a 5-byte header (content
// type, protocol version, 16-bit length) in front of every record, with
// records read and written over a net.Conn that may deliver bytes in
// arbitrary-sized chunks.
//
// https://tools.ietf.org/html/rfc5246#section-6.2.1
package recordlayer

import (
	"encoding/binary"

	"github.com/coretls/tlshandshake/pkg/protocol"
)

// HeaderSize is the fixed size, in bytes, of a TLS record header.
const HeaderSize = 5

// MaxPlaintextRecordLength is the largest payload RFC 5246 §6.2.1 allows
// in a single record before encryption overhead.
const MaxPlaintextRecordLength = 1 << 14 // 16384

// Header is the 5-byte record header.
type Header struct {
	ContentType protocol.ContentType
	Version     protocol.Version
	Length      uint16
}

// Marshal encodes the header to its fixed wire form.
func (h *Header) Marshal() ([]byte, error) {
	out := make([]byte, HeaderSize)
	out[0] = byte(h.ContentType)
	out[1] = h.Version.Major
	out[2] = h.Version.Minor
	binary.BigEndian.PutUint16(out[3:], h.Length)
	return out, nil
}

// Unmarshal decodes a 5-byte record header.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < HeaderSize {
		return errBufferTooSmall
	}
	h.ContentType = protocol.ContentType(data[0])
	h.Version = protocol.Version{Major: data[1], Minor: data[2]}
	h.Length = binary.BigEndian.Uint16(data[3:])
	return nil
}

// sslv2HeaderPeekSize is how many bytes of an SSLv2-compat ClientHello
// (spec.md §4.3, §6) the 5-byte header read already holds past the 2-byte
// length-with-high-bit-set field: the 1-byte message type and the 2-byte
// client version, which belong to the message and its transcript.
const sslv2HeaderPeekSize = 3

// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/zmap/zcrypto/tls"

// VerifyDataLength is the length, in bytes, of the Finished message's
// verify_data for every cipher suite this driver negotiates (RFC 5246's
// default PRF output size; TLS 1.2 cipher suites may override it, but none
// this driver supports do).
const VerifyDataLength = 12

// MessageFinished is sent by both client and server once they have each
// other's Finished slot in view of their own transcript. Its verify_data
// is derived from the full transcript up to (but not including) itself.
// This module's record layer sends it unencrypted, like every other
// handshake message.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.9
type MessageFinished struct {
	VerifyData []byte
}

// Type returns the handshake message type.
func (MessageFinished) Type() Type { return TypeFinished }

// Marshal encodes the verify_data as-is; Finished carries no other fields.
func (m *MessageFinished) Marshal() ([]byte, error) {
	return append([]byte{}, m.VerifyData...), nil
}

// Unmarshal stores the verify_data bytes for the caller to compare against
// its own computed value.
func (m *MessageFinished) Unmarshal(data []byte) error {
	m.VerifyData = append([]byte{}, data...)
	return nil
}

// MakeLog projects the message into zcrypto's scan-log shape.
func (m *MessageFinished) MakeLog() *tls.Finished {
	return &tls.Finished{VerifyData: append([]byte{}, m.VerifyData...)}
}

// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

// MessageServerHelloDone has an empty body; its mere presence tells the
// client the server has finished its half of the full handshake.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.5
type MessageServerHelloDone struct{}

// Type returns the handshake message type.
func (MessageServerHelloDone) Type() Type { return TypeServerHelloDone }

// Marshal encodes the (always empty) body.
func (MessageServerHelloDone) Marshal() ([]byte, error) {
	return nil, nil
}

// Unmarshal validates the body is empty.
func (MessageServerHelloDone) Unmarshal(data []byte) error {
	if len(data) != 0 {
		return errBufferTooSmall
	}
	return nil
}

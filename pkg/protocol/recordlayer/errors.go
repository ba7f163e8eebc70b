// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import "errors"

var (
	errBufferTooSmall = errors.New("recordlayer: buffer too small to unmarshal")
	errRecordTooLarge = errors.New("recordlayer: record payload exceeds MaxPlaintextRecordLength")
	errNilConn        = errors.New("recordlayer: nil underlying connection")
)

// ErrWouldBlock is returned by Conn's Read/Flush paths when the underlying
// connection would block. It is the sole "suspension point" signal
// consumed by the handshake driver (spec.md §5): every other error is
// fatal.
var ErrWouldBlock = errors.New("recordlayer: operation would block")

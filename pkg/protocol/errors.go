// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package protocol

import "errors"

var (
	errInvalidCCS                = errors.New("protocol: change_cipher_spec body must be exactly one byte with value 0x01")
	errInvalidCompressionMethod  = errors.New("protocol: invalid compression method")
	errCompressionMethodListSize = errors.New("protocol: compression method list must not be empty")
)

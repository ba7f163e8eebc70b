// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import "errors"

var (
	errNotEnoughRoomForNonce = errors.New("ciphersuite: ciphertext too short to contain explicit nonce and tag")
	errDecryptPacket         = errors.New("ciphersuite: decrypt failed")
	errUnknownCipherSuiteID  = errors.New("ciphersuite: unknown cipher suite id")
)

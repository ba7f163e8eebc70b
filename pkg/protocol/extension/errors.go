// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "errors"

var (
	errTruncatedExtensions  = errors.New("extension: truncated extensions block")
	errInvalidServerNameExt = errors.New("extension: invalid server_name extension")
)

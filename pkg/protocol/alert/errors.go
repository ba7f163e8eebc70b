// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package alert

import "errors"

var errBufferTooSmall = errors.New("alert: buffer too small to unmarshal")

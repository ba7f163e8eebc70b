// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "errors"

var (
	errBufferTooSmall           = errors.New("handshake: buffer too small to unmarshal")
	errCipherSuiteUnset         = errors.New("handshake: cipher suite must be set before marshaling")
	errCompressionMethodUnset   = errors.New("handshake: compression method must be set before marshaling")
	errInvalidCompressionMethod = errors.New("handshake: invalid compression method")
	errInvalidServerNameType    = errors.New("handshake: unsupported server_name host_name type")
	errEmptyCertificateList     = errors.New("handshake: certificate list must not be empty")
	errUnsupportedKeyExchange   = errors.New("handshake: only named_curve ECDHE key exchange is supported")
	errUnsupportedStatusType    = errors.New("handshake: only ocsp certificate_status_type is supported")
)

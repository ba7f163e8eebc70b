// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"crypto/x509"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/ocsp"
)

const certificateStatusTypeOCSP = 1

// MessageCertificateStatus carries a stapled OCSP response, present only
// in OCSP_STATUS shapes. Slot SERVER_CERT_STATUS per spec.md §3.
//
// https://tools.ietf.org/html/rfc6066#section-8
type MessageCertificateStatus struct {
	Response []byte // DER-encoded OCSPResponse
}

// Type returns the handshake message type.
func (MessageCertificateStatus) Type() Type { return TypeCertificateStatus }

// Marshal encodes the status_type and stapled response.
func (m *MessageCertificateStatus) Marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8(certificateStatusTypeOCSP)
	b.AddUint24LengthPrefixed(func(c *cryptobyte.Builder) {
		c.AddBytes(m.Response)
	})
	return b.Bytes()
}

// Unmarshal decodes the status_type and stapled response.
func (m *MessageCertificateStatus) Unmarshal(data []byte) error {
	s := cryptobyte.String(data)
	var statusType uint8
	if !s.ReadUint8(&statusType) || statusType != certificateStatusTypeOCSP {
		return errUnsupportedStatusType
	}
	var resp cryptobyte.String
	if !s.ReadUint24LengthPrefixed(&resp) {
		return errBufferTooSmall
	}
	m.Response = append([]byte{}, resp...)
	return nil
}

// ParseResponse parses the stapled bytes as an OCSP response, optionally
// verifying it against the issuer that signed it. Passing a nil issuer
// skips signature verification and only checks structure and status.
func (m *MessageCertificateStatus) ParseResponse(issuer *x509.Certificate) (*ocsp.Response, error) {
	return ocsp.ParseResponse(m.Response, issuer)
}

// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package alert implements the TLS alert protocol content type. Alert
// records may interleave with the handshake at any point; the handshake
// driver hands them to this package and otherwise treats them as opaque.
//
// https://tools.ietf.org/html/rfc5246#section-7.2
package alert

import "fmt"

// Level is the alert severity.
type Level byte

// Alert levels.
const (
	Warning Level = 1
	Fatal   Level = 2
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "Warning"
	case Fatal:
		return "Fatal"
	default:
		return fmt.Sprintf("Invalid(%d)", byte(l))
	}
}

// Description is the alert reason code.
type Description byte

// Alert descriptions used by this driver or its handlers.
const (
	CloseNotify            Description = 0
	UnexpectedMessage      Description = 10
	BadRecordMac           Description = 20
	DecryptionFailed       Description = 21
	RecordOverflow         Description = 22
	DecompressionFailure   Description = 30
	HandshakeFailure       Description = 40
	BadCertificate         Description = 42
	UnsupportedCertificate Description = 43
	CertificateExpired     Description = 45
	CertificateUnknown     Description = 46
	IllegalParameter       Description = 47
	DecodeError            Description = 50
	DecryptError           Description = 51
	ProtocolVersion        Description = 70
	InternalError          Description = 80
	NoRenegotiation        Description = 100
)

func (d Description) String() string {
	switch d {
	case CloseNotify:
		return "CloseNotify"
	case UnexpectedMessage:
		return "UnexpectedMessage"
	case BadRecordMac:
		return "BadRecordMac"
	case DecryptionFailed:
		return "DecryptionFailed"
	case RecordOverflow:
		return "RecordOverflow"
	case DecompressionFailure:
		return "DecompressionFailure"
	case HandshakeFailure:
		return "HandshakeFailure"
	case BadCertificate:
		return "BadCertificate"
	case UnsupportedCertificate:
		return "UnsupportedCertificate"
	case CertificateExpired:
		return "CertificateExpired"
	case CertificateUnknown:
		return "CertificateUnknown"
	case IllegalParameter:
		return "IllegalParameter"
	case DecodeError:
		return "DecodeError"
	case DecryptError:
		return "DecryptError"
	case ProtocolVersion:
		return "ProtocolVersion"
	case InternalError:
		return "InternalError"
	case NoRenegotiation:
		return "NoRenegotiation"
	default:
		return fmt.Sprintf("Unknown(%d)", byte(d))
	}
}

// Alert is the two-byte record body of a ContentTypeAlert record.
type Alert struct {
	Level       Level
	Description Description
}

// String implements fmt.Stringer.
func (a *Alert) String() string {
	return fmt.Sprintf("%s: %s", a.Level, a.Description)
}

// Marshal encodes the alert to its two-byte wire form.
func (a *Alert) Marshal() ([]byte, error) {
	return []byte{byte(a.Level), byte(a.Description)}, nil
}

// Unmarshal decodes a two-byte alert body. Per RFC 6347/5246, a
// short/truncated alert fragment must be accumulated by the caller; this
// function only accepts an exact two-byte record.
func (a *Alert) Unmarshal(data []byte) error {
	if len(data) != 2 {
		return errBufferTooSmall
	}
	a.Level = Level(data[0])
	a.Description = Description(data[1])
	return nil
}

// IsFatalOrCloseNotify reports whether the connection must be torn down
// after processing this alert.
func (a *Alert) IsFatalOrCloseNotify() bool {
	return a.Level == Fatal || a.Description == CloseNotify
}

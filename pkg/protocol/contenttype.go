// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package protocol

// ContentType is the record layer's outer content type, the first byte of
// every TLS record header.
//
// https://tools.ietf.org/html/rfc5246#section-6.2.1
type ContentType uint8

// Content types the driver must distinguish. Heartbeat and other unassigned
// types have no constant here and fall through to the read sub-driver's
// default case.
const (
	ContentTypeChangeCipherSpec ContentType = 20
	ContentTypeAlert            ContentType = 21
	ContentTypeHandshake        ContentType = 22
	ContentTypeApplicationData  ContentType = 23
)

// String implements fmt.Stringer.
func (c ContentType) String() string {
	switch c {
	case ContentTypeChangeCipherSpec:
		return "ChangeCipherSpec"
	case ContentTypeAlert:
		return "Alert"
	case ContentTypeHandshake:
		return "Handshake"
	case ContentTypeApplicationData:
		return "ApplicationData"
	default:
		return "Unknown"
	}
}

// ChangeCipherSpec is the single-byte record body carried by a
// ContentTypeChangeCipherSpec record.
//
// https://tools.ietf.org/html/rfc5246#section-7.1
type ChangeCipherSpec struct{}

// Marshal encodes the fixed single-byte body.
func (ChangeCipherSpec) Marshal() ([]byte, error) {
	return []byte{0x01}, nil
}

// Unmarshal validates the fixed single-byte body.
func (ChangeCipherSpec) Unmarshal(data []byte) error {
	if len(data) != 1 || data[0] != 0x01 {
		return errInvalidCCS
	}
	return nil
}

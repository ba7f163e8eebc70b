// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

// UseExtendedMasterSecret is the zero-length extended_master_secret
// extension: its mere presence is the signal.
//
// https://tools.ietf.org/html/rfc7627
type UseExtendedMasterSecret struct {
	Supported bool
}

// Type returns the extension type.
func (UseExtendedMasterSecret) Type() Type { return TypeExtendedMasterSecret }

// Marshal encodes the (always empty) body.
func (UseExtendedMasterSecret) Marshal() ([]byte, error) {
	return nil, nil
}

// Unmarshal marks the extension as present; the body carries no data.
func (e *UseExtendedMasterSecret) Unmarshal([]byte) error {
	e.Supported = true
	return nil
}

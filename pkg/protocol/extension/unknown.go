// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

// Unknown preserves the raw body of any extension type this package does
// not parse by name, so an unrecognized-but-well-formed extension never
// aborts the handshake (spec.md §1 scopes extension handling to the four
// shape selectors only).
type Unknown struct {
	typ  Type
	Body []byte
}

// Type returns the extension's wire type.
func (u Unknown) Type() Type { return u.typ }

// Marshal returns the preserved raw body.
func (u *Unknown) Marshal() ([]byte, error) {
	return u.Body, nil
}

// Unmarshal stores the raw body verbatim.
func (u *Unknown) Unmarshal(data []byte) error {
	u.Body = append([]byte{}, data...)
	return nil
}

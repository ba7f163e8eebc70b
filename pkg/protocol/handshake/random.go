// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// RandomLength is the wire size, in bytes, of the ClientHello/ServerHello
// random field: a 4-byte timestamp followed by 28 bytes of randomness.
const RandomLength = 32

// RandomBytesLength is the size of the non-timestamp portion.
const RandomBytesLength = RandomLength - 4

// Random is the random value every ClientHello and ServerHello carries.
// The GMT timestamp is retained for wire compatibility even though modern
// clients fill it with additional randomness; this driver does not rely on
// its value for anything security-relevant.
type Random struct {
	GMTUnixTime time.Time
	RandomBytes [RandomBytesLength]byte
}

// Populate fills r with the current time and public randomness.
func (r *Random) Populate() error {
	r.GMTUnixTime = time.Now()
	_, err := rand.Read(r.RandomBytes[:])
	return err
}

// MarshalFixed returns the 32-byte wire encoding.
func (r *Random) MarshalFixed() [RandomLength]byte {
	var out [RandomLength]byte
	binary.BigEndian.PutUint32(out[:4], uint32(r.GMTUnixTime.Unix()))
	copy(out[4:], r.RandomBytes[:])
	return out
}

// UnmarshalFixed decodes a 32-byte wire encoding produced by MarshalFixed.
func (r *Random) UnmarshalFixed(in [RandomLength]byte) {
	r.GMTUnixTime = time.Unix(int64(binary.BigEndian.Uint32(in[:4])), 0)
	copy(r.RandomBytes[:], in[4:])
}

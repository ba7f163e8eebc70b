// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package transcript maintains the running handshake transcript hashes
// the driver consumes when computing CertificateVerify signatures and
// Finished verify_data. TLS 1.0/1.1's Finished derivation needs the
// concatenation of MD5 and SHA-1; TLS 1.2 uses whichever single hash the
// negotiated cipher suite's PRF names (SHA-256 unless a suite specifies
// SHA-384). Rather than branch ahead of time, the hasher fans every byte
// out to all four contexts and lets the caller pick which digest(s) it
// needs once the version and cipher suite are known.
//
// No third-party hash implementation in the dependency pack improves on
// these: MD5, SHA-1, SHA-256, and SHA-384 are all standard-library
// primitives with no faster or more idiomatic alternative available, so
// this is one of the few places the driver deliberately stays on
// crypto/*.
package transcript

import (
	"crypto/md5"  //nolint:gosec // required for TLS 1.0/1.1 Finished derivation
	"crypto/sha1" //nolint:gosec // required for TLS 1.0/1.1 Finished derivation
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// Hasher fans written bytes out to MD5, SHA-1, SHA-256, and SHA-384
// running hash contexts in parallel. The zero value is not usable; use
// New.
type Hasher struct {
	md5    hash.Hash
	sha1   hash.Hash
	sha256 hash.Hash
	sha384 hash.Hash
}

// New returns a Hasher with all four running contexts freshly reset.
func New() *Hasher {
	return &Hasher{
		md5:    md5.New(),  //nolint:gosec
		sha1:   sha1.New(), //nolint:gosec
		sha256: sha256.New(),
		sha384: sha512.New384(),
	}
}

// Write feeds chunk to every running hash context exactly once; spec.md
// §4.2 requires every transcript byte to reach each hash exactly once,
// in wire order, so callers must never call Write twice for the same
// bytes.
func (h *Hasher) Write(chunk []byte) {
	h.md5.Write(chunk)    //nolint:errcheck // hash.Hash.Write never errors
	h.sha1.Write(chunk)   //nolint:errcheck
	h.sha256.Write(chunk) //nolint:errcheck
	h.sha384.Write(chunk) //nolint:errcheck
}

// SumMD5SHA1 returns the concatenation of the running MD5 and SHA-1
// digests, the transcript hash TLS 1.0 and 1.1's Finished/CertificateVerify
// derivations use (RFC 2246 §7.4.9, RFC 4346 §7.4.9), without resetting
// either context.
func (h *Hasher) SumMD5SHA1() []byte {
	return append(h.md5.Sum(nil), h.sha1.Sum(nil)...)
}

// Sum256 returns the running SHA-256 digest, the transcript hash TLS 1.2
// suites use unless their PRF names SHA-384 (RFC 5246 §7.4.9).
func (h *Hasher) Sum256() []byte {
	return h.sha256.Sum(nil)
}

// Sum384 returns the running SHA-384 digest, for TLS 1.2 cipher suites
// whose PRF hash is SHA-384 (e.g. TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384).
func (h *Hasher) Sum384() []byte {
	return h.sha384.Sum(nil)
}

// Clone returns an independent copy of h's current state, letting the
// driver snapshot the transcript just before each message (the state a
// Finished message's verify_data is computed from) while continuing to
// extend the original.
func (h *Hasher) Clone() *Hasher {
	return &Hasher{
		md5:    cloneHash(h.md5),
		sha1:   cloneHash(h.sha1),
		sha256: cloneHash(h.sha256),
		sha384: cloneHash(h.sha384),
	}
}

func cloneHash(h hash.Hash) hash.Hash {
	type binaryMarshaler interface {
		MarshalBinary() ([]byte, error)
	}
	type binaryUnmarshaler interface {
		UnmarshalBinary([]byte) error
	}
	bm, ok := h.(binaryMarshaler)
	if !ok {
		// Every stdlib hash.Hash implementation this package uses
		// supports binary (un)marshaling; this path only matters for
		// hypothetical future hash.Hash values plugged in some other way.
		return h
	}
	state, err := bm.MarshalBinary()
	if err != nil {
		return h
	}
	clone := newSameKind(h)
	if bu, ok := clone.(binaryUnmarshaler); ok {
		_ = bu.UnmarshalBinary(state)
	}
	return clone
}

func newSameKind(h hash.Hash) hash.Hash {
	switch h.Size() {
	case md5.Size:
		return md5.New() //nolint:gosec
	case sha1.Size:
		return sha1.New() //nolint:gosec
	case sha256.Size:
		return sha256.New()
	case sha512.Size384:
		return sha512.New384()
	default:
		return h
	}
}

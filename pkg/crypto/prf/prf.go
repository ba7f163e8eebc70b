// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package prf implements the TLS 1.2 pseudorandom function (RFC 5246 §5)
// and the four places the handshake driver uses it: turning an ECDHE
// shared secret into a premaster secret, expanding a premaster secret
// into the master secret, expanding the master secret into the
// per-direction MAC/write-key/write-IV key block, and computing the
// Finished messages' verify_data.
package prf

import (
	"crypto/hmac"
	"hash"

	"github.com/coretls/tlshandshake/pkg/crypto/elliptic"
)

const (
	masterSecretLength    = 48
	verifyDataLength      = 12
	masterSecretLabel     = "master secret"
	keyExpansionLabel     = "key expansion"
	verifyDataClientLabel = "client finished"
	verifyDataServerLabel = "server finished"
)

// EncryptionKeys is the key block RFC 5246 §6.3 derives from the master
// secret: MAC keys are empty for the AEAD suites this driver negotiates
// (AEAD folds authentication into the cipher itself) but are still
// produced so GenerateEncryptionKeys matches the general key-block layout
// non-AEAD suites would also use.
type EncryptionKeys struct {
	MasterSecret   []byte
	ClientMACKey   []byte
	ServerMACKey   []byte
	ClientWriteKey []byte
	ServerWriteKey []byte
	ClientWriteIV  []byte
	ServerWriteIV  []byte
}

// PreMasterSecret performs the ECDH computation RFC 8422 §5.10 specifies:
// this side's private scalar against the peer's public key on curve.
func PreMasterSecret(publicKey, privateKey []byte, curve elliptic.Curve) ([]byte, error) {
	return curve.SharedSecret(privateKey, publicKey)
}

// MasterSecret implements the RFC 5246 §8.1 master_secret derivation.
func MasterSecret(preMasterSecret, clientRandom, serverRandom []byte, h func() hash.Hash) ([]byte, error) {
	seed := append(append([]byte{}, clientRandom...), serverRandom...)
	return pHash(preMasterSecret, append([]byte(masterSecretLabel), seed...), masterSecretLength, h)
}

// GenerateEncryptionKeys implements the RFC 5246 §6.3 key_block expansion.
// macLen is 0 for every AEAD suite this driver negotiates; keyLen and
// ivLen come from the negotiated cipher suite's Suite.KeyLength and
// Suite.FixedIVLength.
func GenerateEncryptionKeys(masterSecret, clientRandom, serverRandom []byte, macLen, keyLen, ivLen int, h func() hash.Hash) (*EncryptionKeys, error) {
	seed := append(append([]byte{}, serverRandom...), clientRandom...)
	keyBlockLen := 2*macLen + 2*keyLen + 2*ivLen
	keyBlock, err := pHash(masterSecret, append([]byte(keyExpansionLabel), seed...), keyBlockLen, h)
	if err != nil {
		return nil, err
	}

	offset := 0
	next := func(n int) []byte {
		out := keyBlock[offset : offset+n]
		offset += n
		return out
	}

	clientMAC := next(macLen)
	serverMAC := next(macLen)
	clientKey := next(keyLen)
	serverKey := next(keyLen)
	clientIV := next(ivLen)
	serverIV := next(ivLen)

	return &EncryptionKeys{
		MasterSecret:   masterSecret,
		ClientMACKey:   clientMAC,
		ServerMACKey:   serverMAC,
		ClientWriteKey: clientKey,
		ServerWriteKey: serverKey,
		ClientWriteIV:  clientIV,
		ServerWriteIV:  serverIV,
	}, nil
}

// VerifyDataClient computes the client's Finished verify_data over every
// handshake message exchanged so far (spec.md §4.2's transcript hash
// input), per RFC 5246 §7.4.9.
func VerifyDataClient(masterSecret, handshakeMessages []byte, h func() hash.Hash) ([]byte, error) {
	return verifyData(masterSecret, handshakeMessages, verifyDataClientLabel, h)
}

// VerifyDataServer computes the server's Finished verify_data.
func VerifyDataServer(masterSecret, handshakeMessages []byte, h func() hash.Hash) ([]byte, error) {
	return verifyData(masterSecret, handshakeMessages, verifyDataServerLabel, h)
}

func verifyData(masterSecret, handshakeMessages []byte, label string, h func() hash.Hash) ([]byte, error) {
	hasher := h()
	if _, err := hasher.Write(handshakeMessages); err != nil {
		return nil, err
	}
	return VerifyDataFromDigest(masterSecret, hasher.Sum(nil), label, h)
}

// VerifyDataFromDigest computes verify_data from an already-finalized
// transcript digest rather than the raw message bytes verifyData hashes
// itself. The handshake driver keeps only a running transcript.Hasher, not
// the concatenated message bytes, so its Finished handlers call this (via
// VerifyDataClientFromDigest/VerifyDataServerFromDigest) instead of
// VerifyDataClient/VerifyDataServer.
func VerifyDataFromDigest(masterSecret, digest []byte, label string, h func() hash.Hash) ([]byte, error) {
	return pHash(masterSecret, append([]byte(label), digest...), verifyDataLength, h)
}

// VerifyDataClientFromDigest is VerifyDataClient for a caller that already
// holds the transcript digest.
func VerifyDataClientFromDigest(masterSecret, digest []byte, h func() hash.Hash) ([]byte, error) {
	return VerifyDataFromDigest(masterSecret, digest, verifyDataClientLabel, h)
}

// VerifyDataServerFromDigest is VerifyDataServer for a caller that already
// holds the transcript digest.
func VerifyDataServerFromDigest(masterSecret, digest []byte, h func() hash.Hash) ([]byte, error) {
	return VerifyDataFromDigest(masterSecret, digest, verifyDataServerLabel, h)
}

// pHash implements RFC 5246 §5's P_hash(secret, seed) data expansion
// function using HMAC with the given hash.
func pHash(secret, seed []byte, requestedLength int, h func() hash.Hash) ([]byte, error) {
	hmacSum := func(key, data []byte) ([]byte, error) {
		mac := hmac.New(h, key)
		if _, err := mac.Write(data); err != nil {
			return nil, err
		}
		return mac.Sum(nil), nil
	}

	var out []byte
	aPrev := seed
	for len(out) < requestedLength {
		a, err := hmacSum(secret, aPrev)
		if err != nil {
			return nil, err
		}
		chunk, err := hmacSum(secret, append(append([]byte{}, a...), seed...))
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		aPrev = a
	}
	return out[:requestedLength], nil
}

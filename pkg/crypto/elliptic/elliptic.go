// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package elliptic names the named groups the driver's ECDHE key exchange
// (MessageServerKeyExchange, MessageClientKeyExchange) supports and
// performs the ECDH scalar multiplication the PRF package needs to turn
// an exchanged public key into a premaster secret.
package elliptic

import (
	"crypto/ecdh"
	"crypto/rand"
	"io"
)

// Curve identifies a TLS named_curve / named_group value this driver can
// perform ECDH with.
//
// https://tools.ietf.org/html/rfc8422#section-5.1.1
type Curve uint16

// Named groups this package can perform ECDH with, accepted in a
// ServerKeyExchange's ECParameters. The driver's ClientHello carries no
// supported_groups extension.
const (
	X25519 Curve = 29
	P256   Curve = 23
	P384   Curve = 24
)

// SharedSecret performs ECDH using this side's private scalar and the
// peer's public key encoded the way RFC 8422 puts it on the wire (the
// raw X25519 u-coordinate, or the uncompressed point for the NIST
// curves), returning the X-coordinate/shared secret the PRF feeds into
// PreMasterSecret.
func (c Curve) SharedSecret(localPrivate, remotePublic []byte) ([]byte, error) {
	curve, err := c.ecdhCurve()
	if err != nil {
		return nil, err
	}
	priv, err := curve.NewPrivateKey(localPrivate)
	if err != nil {
		return nil, err
	}
	pub, err := curve.NewPublicKey(remotePublic)
	if err != nil {
		return nil, err
	}
	return priv.ECDH(pub)
}

// GenerateKeyPair produces an ephemeral key pair for this curve, returning
// the private scalar and the public key in wire form.
func (c Curve) GenerateKeyPair() (private, public []byte, err error) {
	curve, err := c.ecdhCurve()
	if err != nil {
		return nil, nil, err
	}
	key, err := curve.GenerateKey(rnd())
	if err != nil {
		return nil, nil, err
	}
	return key.Bytes(), key.PublicKey().Bytes(), nil
}

func rnd() io.Reader { return rand.Reader }

func (c Curve) ecdhCurve() (ecdh.Curve, error) {
	switch c {
	case X25519:
		return ecdh.X25519(), nil
	case P256:
		return ecdh.P256(), nil
	case P384:
		return ecdh.P384(), nil
	default:
		return nil, errUnsupportedCurve
	}
}

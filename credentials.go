// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tlshandshake

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"

	"github.com/coretls/tlshandshake/pkg/handshakefsm"
)

// Wire SignatureScheme values this package's Credentials implementation
// produces, matching the two schemes pkg/handshakefsm/handlers.go verifies
// (RFC 5246 §7.4.1.4.1 / the TLS SignatureScheme IANA registry).
const (
	signatureSchemeRSAPKCS1SHA256       uint16 = 0x0401
	signatureSchemeECDSASECP256R1SHA256 uint16 = 0x0403
)

// Certificate bundles a leaf-first DER certificate chain with the private
// key that signs on its behalf. Its fields correspond one to one to
// crypto/tls.Certificate's Certificate, PrivateKey and OCSPStaple; a
// crypto/tls.X509KeyPair result converts by copying the chain and
// asserting its PrivateKey to crypto.Signer.
type Certificate struct {
	Chain      [][]byte
	PrivateKey crypto.Signer
	OCSPStaple []byte
}

// credentials adapts a Certificate into handshakefsm.Credentials, the
// collaborator the SERVER_CERT/SERVER_CERT_STATUS/SERVER_KEY handlers
// consult (pkg/handshakefsm/handlers.go).
type credentials struct {
	cert Certificate
}

func newCredentials(cert Certificate) handshakefsm.Credentials {
	return &credentials{cert: cert}
}

func (c *credentials) Certificates() [][]byte { return c.cert.Chain }
func (c *credentials) OCSPResponse() []byte   { return c.cert.OCSPStaple }

// SignServerKeyExchange signs signedParams with whichever key type the
// certificate carries, reporting the matching SignatureScheme. Only RSA
// and ECDSA P-256 leaf keys are supported, matching the two schemes
// handlers.go's verifyServerKeyExchangeSignature accepts.
func (c *credentials) SignServerKeyExchange(signedParams []byte) (uint16, []byte, error) {
	sum := sha256.Sum256(signedParams)
	switch c.cert.PrivateKey.Public().(type) {
	case *rsa.PublicKey:
		sig, err := c.cert.PrivateKey.Sign(rand.Reader, sum[:], crypto.SHA256)
		if err != nil {
			return 0, nil, err
		}
		return signatureSchemeRSAPKCS1SHA256, sig, nil
	case *ecdsa.PublicKey:
		sig, err := c.cert.PrivateKey.Sign(rand.Reader, sum[:], crypto.SHA256)
		if err != nil {
			return 0, nil, err
		}
		return signatureSchemeECDSASECP256R1SHA256, sig, nil
	default:
		return 0, nil, errUnsupportedCertificateKeyType
	}
}

// cryptoRandRandom adapts crypto/rand as a handshakefsm.Random
// collaborator for connections that don't supply their own.
type cryptoRandRandom struct{}

func (cryptoRandRandom) Read(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}

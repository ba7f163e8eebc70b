// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshakefsm

import "errors"

var (
	errNoSharedCipherSuite       = errors.New("handshakefsm: no shared cipher suite")
	errMissingCipherSuite        = errors.New("handshakefsm: ServerHello did not select a cipher suite")
	errNoCertificateConfigured   = errors.New("handshakefsm: no local certificate configured")
	errEmptyCertificateChain     = errors.New("handshakefsm: peer sent an empty certificate chain")
	errNoPeerCertificate         = errors.New("handshakefsm: no peer certificate to verify signature against")
	errWrongCertificateKeyType   = errors.New("handshakefsm: certificate public key does not match signature scheme")
	errUnsupportedSigScheme      = errors.New("handshakefsm: unsupported SignatureScheme")
	errServerKeyExchangeBadSig   = errors.New("handshakefsm: ServerKeyExchange signature verification failed")
	errMalformedChangeCipherSpec = errors.New("handshakefsm: malformed ChangeCipherSpec body")
	errFinishedMismatch          = errors.New("handshakefsm: Finished verify_data mismatch")
)

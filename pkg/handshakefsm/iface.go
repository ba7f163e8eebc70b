// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshakefsm

import "github.com/coretls/tlshandshake/pkg/protocol"

// HandlerFunc is a per-slot, per-role handler: on the write side it
// appends this slot's message payload to d.io; on the read side it
// consumes the just-parsed message bytes from d.io. Either way it
// returns a non-nil error on rejection (bad version, bad signature, and
// so on), which the driver reports as a HANDLER_ERROR-kind *Error.
type HandlerFunc func(d *Driver) error

// RecordLayer is the record-layer collaborator the spec treats as
// external: framing, fragmentation, and the non-blocking suspension
// points all live below this interface. pkg/protocol/recordlayer.Conn
// implements it.
type RecordLayer interface {
	ReadRecord() (contentType protocol.ContentType, payload []byte, isSSLv2 bool, err error)
	WriteRecord(contentType protocol.ContentType, payload []byte) error
	Flush() error
	MaxWritePayloadSize() int
	SSLv2HeaderBytes() [3]byte
}

// SocketCork is the platform socket-corking collaborator (spec.md §4.5).
// internal/corksocket.Corker implements it; a no-op implementation is
// valid on platforms without TCP_CORK/TCP_NOPUSH, per spec.md §9.
type SocketCork interface {
	Cork(on bool) error
}

// SessionCache is the resumption collaborator consulted by the
// handshake-type resolver (spec.md §4.4) and by the negotiation loop's
// cache-delete side effect on fatal, non-blocked error (spec.md §4.8,
// §7). pkg/session implements it.
type SessionCache interface {
	// Resume looks up sessionID and, if found, reports the master secret
	// and cipher suite to resume with.
	Resume(sessionID []byte) (masterSecret []byte, cipherSuiteID uint16, found bool)
	// Store records a newly negotiated full handshake's session under
	// sessionID for later resumption.
	Store(sessionID, masterSecret []byte, cipherSuiteID uint16)
	// Delete removes sessionID, called when a handshake using it fails.
	Delete(sessionID []byte)
}

// Random is the public-randomness collaborator used to draw server
// session ids (spec.md §4.4 step 2). Handshake Random fields are filled
// by handshake.Random.Populate from crypto/rand instead.
type Random interface {
	Read(buf []byte) error
}

// Credentials is the certificate and private-key collaborator the default
// SERVER_CERT, SERVER_CERT_STATUS, and SERVER_KEY handlers consult
// (handlers.go). Like the record layer and session cache, certificate
// material and private-key signing operations are treated as external to
// the driver itself.
type Credentials interface {
	// Certificates returns this side's certificate chain, leaf first, DER
	// encoded.
	Certificates() [][]byte
	// OCSPResponse returns the stapled response to send alongside
	// Certificates, or nil if none is configured.
	OCSPResponse() []byte
	// SignServerKeyExchange signs signedParams (RFC 4492 §5.4's
	// client_random || server_random || ServerECDHParams) with this
	// side's private key, reporting which SignatureScheme it used.
	SignServerKeyExchange(signedParams []byte) (scheme uint16, signature []byte, err error)
}

// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tlshandshake

import (
	"errors"
	"fmt"

	"github.com/coretls/tlshandshake/pkg/handshakefsm"
)

var (
	errNilConn                       = errors.New("tlshandshake: nil underlying net.Conn")
	errNoCertificateConfigured       = errors.New("tlshandshake: server Config must set Certificate")
	errEmptyCertificateChain         = errors.New("tlshandshake: Certificate.Chain must not be empty")
	errNoPrivateKeyConfigured        = errors.New("tlshandshake: Certificate.PrivateKey must not be nil")
	errUnsupportedCertificateKeyType = errors.New("tlshandshake: Certificate.PrivateKey's public key is neither RSA nor ECDSA")
	errHandshakeNotDone              = errors.New("tlshandshake: Read/Write called before Handshake completed")
)

var (
	errReadTimeout  = &timeoutError{msg: "tlshandshake: read deadline exceeded"}
	errWriteTimeout = &timeoutError{msg: "tlshandshake: write deadline exceeded"}
)

// timeoutError implements net.Error so callers that type-assert on
// Timeout() (the usual way to detect a deadline firing) see one.
type timeoutError struct{ msg string }

func (e *timeoutError) Error() string   { return e.msg }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

// ErrorKind mirrors handshakefsm.Kind at this package's API boundary, so
// callers can classify a HandshakeError without importing pkg/handshakefsm
// themselves.
type ErrorKind int

const (
	ErrorKindBadMessage ErrorKind = iota
	ErrorKindHandlerError
	ErrorKindProgrammerError
	ErrorKindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindBadMessage:
		return "BAD_MESSAGE"
	case ErrorKindHandlerError:
		return "HANDLER_ERROR"
	case ErrorKindProgrammerError:
		return "PROGRAMMER_ERROR"
	case ErrorKindTransport:
		return "TRANSPORT"
	default:
		return "UNKNOWN_ERROR_KIND"
	}
}

// HandshakeError is the error Handshake returns once the connection is
// unrecoverable, wrapping the inner cause the way the teacher's own
// HandshakeError wraps a DTLS alert.
type HandshakeError struct {
	Kind ErrorKind
	Err  error
}

func (e *HandshakeError) Error() string { return fmt.Sprintf("tlshandshake: %s: %v", e.Kind, e.Err) }
func (e *HandshakeError) Unwrap() error { return e.Err }

// wrapHandshakeError classifies a Negotiate error into the public
// ErrorKind taxonomy, falling back to ErrorKindTransport for anything
// that didn't originate from pkg/handshakefsm (a raw I/O error from the
// underlying net.Conn, for instance).
func wrapHandshakeError(err error) error {
	var fsmErr *handshakefsm.Error
	if errors.As(err, &fsmErr) {
		kind := ErrorKindProgrammerError
		switch fsmErr.Kind {
		case handshakefsm.ErrBadMessage:
			kind = ErrorKindBadMessage
		case handshakefsm.ErrHandlerError:
			kind = ErrorKindHandlerError
		case handshakefsm.ErrProgrammerError:
			kind = ErrorKindProgrammerError
		}
		return &HandshakeError{Kind: kind, Err: fsmErr}
	}
	return &HandshakeError{Kind: ErrorKindTransport, Err: err}
}

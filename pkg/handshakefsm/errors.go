// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshakefsm

import "fmt"

// Kind classifies why the driver failed, per spec.md §7's error table.
type Kind int

const (
	// ErrBadMessage covers handshake length out of range, wrong slot
	// type, a malformed CCS, application data mid-handshake, or an
	// SSLv2 ClientHello arriving anywhere but the first slot.
	ErrBadMessage Kind = iota
	// ErrHandlerError covers a per-slot handler rejecting a message
	// (bad version, bad signature, and so on).
	ErrHandlerError
	// ErrProgrammerError covers an invalid handshake_type bitmask or an
	// attempt to invoke a null handler; it must not occur in a correct
	// implementation.
	ErrProgrammerError
)

func (k Kind) String() string {
	switch k {
	case ErrBadMessage:
		return "BAD_MESSAGE"
	case ErrHandlerError:
		return "HANDLER_ERROR"
	case ErrProgrammerError:
		return "PROGRAMMER_ERROR"
	default:
		return "UNKNOWN_ERROR_KIND"
	}
}

// Error is the fatal error type the driver returns from Negotiate once a
// failure is not BLOCKED (spec.md §7). BLOCKED conditions are reported
// through the Blocked return value, never through Error.
type Error struct {
	Kind    Kind
	Slot    Slot
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("handshakefsm: %s at %s: %s: %v", e.Kind, e.Slot, e.Message, e.Err)
	}
	return fmt.Sprintf("handshakefsm: %s at %s: %s", e.Kind, e.Slot, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

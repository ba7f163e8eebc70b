// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshakefsm

import (
	"github.com/coretls/tlshandshake/pkg/crypto/transcript"
	"github.com/pion/logging"
)

// Blocked is the tri-state indicator the negotiation loop surfaces to
// its caller (spec.md §4.8, §5): the sole signal by which the driver
// communicates that further progress needs the caller to wait on the
// transport.
type Blocked int

const (
	NotBlocked Blocked = iota
	BlockedOnRead
	BlockedOnWrite
)

func (b Blocked) String() string {
	switch b {
	case NotBlocked:
		return "NOT_BLOCKED"
	case BlockedOnRead:
		return "BLOCKED_ON_READ"
	case BlockedOnWrite:
		return "BLOCKED_ON_WRITE"
	default:
		return "UNKNOWN_BLOCKED"
	}
}

// scratchBuffer is the per-connection "io" buffer of spec.md §3: exactly
// one in-flight handshake message survives across blocked I/O
// resumptions here. wiped distinguishes "never filled for the current
// slot" from "drained by a prior read/write pass", which is what makes
// both the framer's write path and read path idempotent under retry
// (spec.md §9).
type scratchBuffer struct {
	buf   []byte
	wiped bool
}

func newScratchBuffer() scratchBuffer {
	return scratchBuffer{wiped: true}
}

func (s *scratchBuffer) wipe() {
	s.buf = s.buf[:0]
	s.wiped = true
}

func (s *scratchBuffer) len() int { return len(s.buf) }

// Driver holds the connection-level handshake state: where the handshake
// is in its shape, the scratch buffer for the in-flight message, the
// transcript hashes, and the collaborators the spec treats as external
// (record layer, socket cork, session cache, randomness). One Driver
// governs exactly one connection's handshake (spec.md §3's "Ownership").
type Driver struct {
	IsServer bool

	RecordLayer RecordLayer
	SocketCork  SocketCork
	Cache       SessionCache
	Rand        Random
	Log         logging.LeveledLogger
	Alerts      AlertHandler
	Creds       Credentials

	// CorkingEnabled mirrors spec.md §4.5 step 2's "optimized I/O
	// enabled" gate; CallerSocketWasCorked mirrors "the caller
	// originally supplied a socket that was already corked" — in both
	// cases the state advancer skips cork/uncork requests entirely.
	CorkingEnabled        bool
	CallerSocketWasCorked bool

	handshakeType HandshakeType
	messageNumber int
	io            scratchBuffer

	Transcript *transcript.Hasher

	// PreMessageTranscript is a snapshot of Transcript taken immediately
	// before the current message's own bytes are fed into it — the
	// state Finished's verify_data must be computed and checked against
	// (RFC 5246 §7.4.9: "up to but not including this message").
	PreMessageTranscript *transcript.Hasher

	SessionID []byte

	// killed marks the connection unrecoverable after a HANDLER_ERROR or
	// BAD_MESSAGE (spec.md §5's cancellation policy): subsequent calls
	// to Negotiate must fail immediately.
	killed    bool
	killedErr error

	// Exchange carries the in-progress handshake's negotiated values
	// (randoms, cipher suite, key shares, certificates) between the
	// default per-slot handlers in handlers.go. Apart from the handlers,
	// only the handshake-type resolver reads it.
	Exchange Exchange
}

// NewDriver returns a Driver positioned at the start of the handshake
// (handshake_type = INITIAL, message_number = 0), per spec.md §3.
func NewDriver(isServer bool, rl RecordLayer, cork SocketCork, cache SessionCache, rnd Random, log logging.LeveledLogger) *Driver {
	return &Driver{
		IsServer:       isServer,
		RecordLayer:    rl,
		SocketCork:     cork,
		Cache:          cache,
		Rand:           rnd,
		Log:            log,
		CorkingEnabled: cork != nil,
		io:             newScratchBuffer(),
		Transcript:     transcript.New(),
	}
}

// role reports this side's writer tag ('C' or 'S'), used throughout the
// negotiation loop and state advancer.
func (d *Driver) role() Writer {
	if d.IsServer {
		return WriterServer
	}
	return WriterClient
}

// ActiveSlot returns shapes[handshake_type][message_number].
func (d *Driver) ActiveSlot() (Slot, error) {
	return activeSlot(d.handshakeType, d.messageNumber)
}

// GetCurrentMessageType returns ActiveSlot, exposed for tests per
// spec.md §6's driver API.
func (d *Driver) GetCurrentMessageType() (Slot, error) {
	return d.ActiveSlot()
}

func (d *Driver) previousSlot() (Slot, error) {
	return previousSlot(d.handshakeType, d.messageNumber)
}

func (d *Driver) action(s Slot) *Action {
	return &actionTable[s]
}

func (d *Driver) kill(err error) error {
	if !d.killed {
		d.killed = true
		d.killedErr = err
	}
	return err
}

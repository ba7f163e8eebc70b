// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package handshakefsm is the handshake driver: it sequences handshake
// messages between client and server roles, drives the record layer,
// maintains the running transcript hashes, and coordinates cork/uncork
// for throughput. Cryptographic primitives, the record layer itself, and
// per-message wire encoders live in sibling packages; this package wires
// them together according to a precomputed, variant-selected state
// machine over handshake message orderings.
package handshakefsm

import "github.com/coretls/tlshandshake/pkg/protocol"

// Slot is a logical position in a handshake ordering: which message is
// expected next. The enumeration is closed; slots for features this
// driver does not implement (client certificates) are declared but never
// appear in any shape.
type Slot int

const (
	SlotClientHello Slot = iota
	SlotServerHello
	SlotServerCert
	SlotServerCertStatus
	SlotServerKey
	SlotServerCertReq // unimplemented: null handlers, never scheduled
	SlotServerHelloDone
	SlotClientCert // unimplemented: null handlers, never scheduled
	SlotClientKey
	SlotClientCertVerify // unimplemented: null handlers, never scheduled
	SlotClientCCS
	SlotClientFinished
	SlotServerCCS
	SlotServerFinished
	SlotAppData // terminal sentinel, writer 'B'
)

// String names a slot for logging and test failure messages.
func (s Slot) String() string {
	switch s {
	case SlotClientHello:
		return "CLIENT_HELLO"
	case SlotServerHello:
		return "SERVER_HELLO"
	case SlotServerCert:
		return "SERVER_CERT"
	case SlotServerCertStatus:
		return "SERVER_CERT_STATUS"
	case SlotServerKey:
		return "SERVER_KEY"
	case SlotServerCertReq:
		return "SERVER_CERT_REQ"
	case SlotServerHelloDone:
		return "SERVER_HELLO_DONE"
	case SlotClientCert:
		return "CLIENT_CERT"
	case SlotClientKey:
		return "CLIENT_KEY"
	case SlotClientCertVerify:
		return "CLIENT_CERT_VERIFY"
	case SlotClientCCS:
		return "CLIENT_CCS"
	case SlotClientFinished:
		return "CLIENT_FINISHED"
	case SlotServerCCS:
		return "SERVER_CCS"
	case SlotServerFinished:
		return "SERVER_FINISHED"
	case SlotAppData:
		return "APPDATA"
	default:
		return "UNKNOWN_SLOT"
	}
}

// Writer identifies which role emits a slot's message.
type Writer byte

const (
	WriterClient Writer = 'C'
	WriterServer Writer = 'S'
	WriterBoth   Writer = 'B' // APPDATA sentinel only; marks termination
)

// Action is the static, per-slot description the spec calls an "action
// record": its record type, handshake message type byte, writer, and the
// pair of role handlers invoked when the driver reaches it.
type Action struct {
	RecordType  protocol.ContentType
	MessageType byte // meaningful only when RecordType == ContentTypeHandshake
	Writer      Writer
	ServerRole  HandlerFunc
	ClientRole  HandlerFunc
}

// actionTable is process-wide state; handlers.go's init populates every
// slot's ServerRole/ClientRole before any Driver is constructed. The
// slots for unimplemented features keep nil handlers, matching the
// "null handlers, never scheduled" note above.
var actionTable = [...]Action{
	SlotClientHello:      {RecordType: protocol.ContentTypeHandshake, MessageType: 1, Writer: WriterClient},
	SlotServerHello:      {RecordType: protocol.ContentTypeHandshake, MessageType: 2, Writer: WriterServer},
	SlotServerCert:       {RecordType: protocol.ContentTypeHandshake, MessageType: 11, Writer: WriterServer},
	SlotServerCertStatus: {RecordType: protocol.ContentTypeHandshake, MessageType: 22, Writer: WriterServer},
	SlotServerKey:        {RecordType: protocol.ContentTypeHandshake, MessageType: 12, Writer: WriterServer},
	SlotServerCertReq:    {RecordType: protocol.ContentTypeHandshake, MessageType: 13, Writer: WriterServer},
	SlotServerHelloDone:  {RecordType: protocol.ContentTypeHandshake, MessageType: 14, Writer: WriterServer},
	SlotClientCert:       {RecordType: protocol.ContentTypeHandshake, MessageType: 11, Writer: WriterClient},
	SlotClientKey:        {RecordType: protocol.ContentTypeHandshake, MessageType: 16, Writer: WriterClient},
	SlotClientCertVerify: {RecordType: protocol.ContentTypeHandshake, MessageType: 15, Writer: WriterClient},
	SlotClientCCS:        {RecordType: protocol.ContentTypeChangeCipherSpec, Writer: WriterClient},
	SlotClientFinished:   {RecordType: protocol.ContentTypeHandshake, MessageType: 20, Writer: WriterClient},
	SlotServerCCS:        {RecordType: protocol.ContentTypeChangeCipherSpec, Writer: WriterServer},
	SlotServerFinished:   {RecordType: protocol.ContentTypeHandshake, MessageType: 20, Writer: WriterServer},
	SlotAppData:          {RecordType: protocol.ContentTypeApplicationData, Writer: WriterBoth},
}

// HandshakeType is the bitmask negotiated after ServerHello, selecting
// which of the six defined shapes governs the rest of the handshake.
type HandshakeType uint8

const (
	Negotiated           HandshakeType = 1 << 0
	FullHandshake        HandshakeType = 1 << 1
	PerfectForwardSecrecy HandshakeType = 1 << 2
	OCSPStatus           HandshakeType = 1 << 3
)

// shapeTable is indexed by HandshakeType bitmask. Resumption is modelled
// as NEGOTIATED alone (FULL_HANDSHAKE bit absent) rather than an explicit
// RESUME bit — see DESIGN.md's record of the open question in spec §9
// branch (a). Looking up any bitmask not listed here is a programmer
// error (§7 PROGRAMMER_ERROR) and must fail fast via shapeFor.
var shapeTable = map[HandshakeType][]Slot{
	0: {SlotClientHello, SlotServerHello},

	Negotiated: { // resumption: NEGOTIATED without FULL_HANDSHAKE
		SlotClientHello, SlotServerHello,
		SlotServerCCS, SlotServerFinished,
		SlotClientCCS, SlotClientFinished,
		SlotAppData,
	},

	Negotiated | FullHandshake: {
		SlotClientHello, SlotServerHello,
		SlotServerCert, SlotServerHelloDone,
		SlotClientKey, SlotClientCCS, SlotClientFinished,
		SlotServerCCS, SlotServerFinished,
		SlotAppData,
	},

	Negotiated | FullHandshake | PerfectForwardSecrecy: {
		SlotClientHello, SlotServerHello,
		SlotServerCert, SlotServerKey, SlotServerHelloDone,
		SlotClientKey, SlotClientCCS, SlotClientFinished,
		SlotServerCCS, SlotServerFinished,
		SlotAppData,
	},

	Negotiated | FullHandshake | OCSPStatus: {
		SlotClientHello, SlotServerHello,
		SlotServerCert, SlotServerCertStatus, SlotServerHelloDone,
		SlotClientKey, SlotClientCCS, SlotClientFinished,
		SlotServerCCS, SlotServerFinished,
		SlotAppData,
	},

	Negotiated | FullHandshake | PerfectForwardSecrecy | OCSPStatus: {
		SlotClientHello, SlotServerHello,
		SlotServerCert, SlotServerCertStatus, SlotServerKey, SlotServerHelloDone,
		SlotClientKey, SlotClientCCS, SlotClientFinished,
		SlotServerCCS, SlotServerFinished,
		SlotAppData,
	},
}

// shapeFor looks up the slot sequence for a handshake-type bitmask,
// failing fast (PROGRAMMER_ERROR) on any value outside the six defined
// shapes.
func shapeFor(ht HandshakeType) ([]Slot, error) {
	shape, ok := shapeTable[ht]
	if !ok {
		return nil, &Error{Kind: ErrProgrammerError, Message: "undefined handshake shape for bitmask"}
	}
	return shape, nil
}

// activeSlot returns shapes[handshakeType][messageNumber].
func activeSlot(ht HandshakeType, messageNumber int) (Slot, error) {
	shape, err := shapeFor(ht)
	if err != nil {
		return 0, err
	}
	if messageNumber < 0 || messageNumber >= len(shape) {
		return 0, &Error{Kind: ErrProgrammerError, Message: "message_number out of range for shape"}
	}
	return shape[messageNumber], nil
}

// previousSlot returns shapes[handshakeType][messageNumber-1]; valid only
// when messageNumber >= 1.
func previousSlot(ht HandshakeType, messageNumber int) (Slot, error) {
	return activeSlot(ht, messageNumber-1)
}

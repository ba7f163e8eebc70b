// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshakefsm

import (
	"errors"

	"github.com/coretls/tlshandshake/pkg/protocol"
	"github.com/coretls/tlshandshake/pkg/protocol/handshake"
	"github.com/coretls/tlshandshake/pkg/protocol/recordlayer"
)

// MaxHandshakeMessageLength is the driver-defined upper bound on a single
// handshake message's declared length (spec.md §6); it matches the
// 24-bit wire length field's own maximum, since nothing below the driver
// further restricts message size (large certificate chains legitimately
// approach it).
const MaxHandshakeMessageLength = handshake.MaxMessageLength

// writeCurrent implements the write path of spec.md §4.3.1.
func writeCurrent(d *Driver) (Blocked, error) {
	slot, err := d.ActiveSlot()
	if err != nil {
		return NotBlocked, err
	}
	action := d.action(slot)

	if d.io.wiped {
		if err := produceMessage(d, slot, action); err != nil {
			return NotBlocked, err
		}
	}

	maxPayload := d.RecordLayer.MaxWritePayloadSize()
	for d.io.len() > 0 {
		chunkLen := d.io.len()
		if chunkLen > maxPayload {
			chunkLen = maxPayload
		}
		chunk := d.io.buf[:chunkLen]
		if err := d.RecordLayer.WriteRecord(action.RecordType, chunk); err != nil {
			return NotBlocked, err
		}
		if action.RecordType == protocol.ContentTypeHandshake {
			d.Transcript.Write(chunk)
		}
		d.io.buf = d.io.buf[chunkLen:]

		if err := d.RecordLayer.Flush(); err != nil {
			if errors.Is(err, recordlayer.ErrWouldBlock) {
				return BlockedOnWrite, nil
			}
			return NotBlocked, err
		}
	}

	d.io.wipe()
	if err := advanceMessage(d); err != nil {
		return NotBlocked, err
	}
	return NotBlocked, nil
}

// produceMessage implements step 1 of spec.md §4.3.1: build the full
// message into d.io exactly once per slot, even across blocked retries
// (guarded by the wiped flag in the caller).
func produceMessage(d *Driver, slot Slot, action *Action) error {
	handler := action.roleHandler(d.role())
	if handler == nil {
		return &Error{Kind: ErrProgrammerError, Slot: slot, Message: "null handler for this role/slot"}
	}

	switch action.RecordType {
	case protocol.ContentTypeHandshake:
		d.io.buf = make([]byte, handshake.HeaderLength, handshake.HeaderLength+64)
		d.PreMessageTranscript = d.Transcript.Clone()
		if err := handler(d); err != nil {
			return &Error{Kind: ErrHandlerError, Slot: slot, Err: err}
		}
		payloadLen := len(d.io.buf) - handshake.HeaderLength
		hdr := handshake.Header{Type: handshake.Type(action.MessageType), Length: uint32(payloadLen)}
		raw, err := hdr.Marshal()
		if err != nil {
			return err
		}
		copy(d.io.buf[:handshake.HeaderLength], raw)

	case protocol.ContentTypeChangeCipherSpec:
		d.io.buf = d.io.buf[:0]
		if err := handler(d); err != nil {
			return &Error{Kind: ErrHandlerError, Slot: slot, Err: err}
		}

	default:
		return &Error{Kind: ErrProgrammerError, Slot: slot, Message: "unsupported record type in write path"}
	}

	d.io.wiped = false
	return nil
}

// AppendPayload lets a per-slot handler append encoded bytes to the
// in-flight message without reaching into Driver's internals.
func (d *Driver) AppendPayload(b []byte) {
	d.io.buf = append(d.io.buf, b...)
}

// Payload exposes the bytes already accumulated in the scratch buffer,
// for a read-side handler to decode. For a TLS_HANDSHAKE slot this
// includes the 4-byte header; callers index past handshake.HeaderLength.
func (d *Driver) Payload() []byte {
	return d.io.buf
}

func (a *Action) roleHandler(w Writer) HandlerFunc {
	if w == WriterServer {
		return a.ServerRole
	}
	return a.ClientRole
}

// readOne implements the read path of spec.md §4.3.2. in is the
// remaining unread bytes of the record currently being processed;
// readOne consumes a prefix of it (possibly all of it) and reports how
// many bytes it took, so the caller can continue processing any
// remaining back-to-back messages in the same record.
func readOne(d *Driver, in []byte) (consumed int, done bool, messageType byte, err error) {
	const headerLen = handshake.HeaderLength

	if d.io.len() < headerLen {
		take := min(headerLen-d.io.len(), len(in))
		d.io.buf = append(d.io.buf, in[:take]...)
		d.io.wiped = false
		consumed += take
		in = in[take:]
		if d.io.len() < headerLen {
			return consumed, false, 0, nil
		}
	}

	var hdr handshake.Header
	if err := hdr.Unmarshal(d.io.buf[:headerLen]); err != nil {
		return consumed, false, 0, &Error{Kind: ErrBadMessage, Message: "malformed handshake header", Err: err}
	}
	if hdr.Length > MaxHandshakeMessageLength {
		return consumed, false, 0, &Error{Kind: ErrBadMessage, Message: "handshake message exceeds MaxHandshakeMessageLength"}
	}

	total := headerLen + int(hdr.Length)
	if d.io.len() < total {
		take := min(total-d.io.len(), len(in))
		d.io.buf = append(d.io.buf, in[:take]...)
		consumed += take
	}
	if d.io.len() < total {
		return consumed, false, 0, nil
	}

	d.PreMessageTranscript = d.Transcript.Clone()
	d.Transcript.Write(d.io.buf[:total])
	return consumed, true, byte(hdr.Type), nil
}

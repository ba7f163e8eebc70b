// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshakefsm

import (
	"errors"

	"github.com/coretls/tlshandshake/pkg/protocol"
	"github.com/coretls/tlshandshake/pkg/protocol/alert"
	"github.com/coretls/tlshandshake/pkg/protocol/recordlayer"
)

// AlertHandler processes an inbound alert fragment (spec.md §4.6 step 5).
// It is the one per-connection collaborator this package does not
// otherwise model, since alert semantics (e.g. closing the connection)
// live above the handshake driver.
type AlertHandler interface {
	HandleAlert(a alert.Alert) error
}

// handshakeWriteIO is the write sub-driver (spec.md §4.7): it delegates
// entirely to the framer's write path.
func handshakeWriteIO(d *Driver) (Blocked, error) {
	return writeCurrent(d)
}

// handshakeReadIO is the read sub-driver (spec.md §4.6).
func handshakeReadIO(d *Driver) (Blocked, error) { //nolint:gocognit
	contentType, payload, isSSLv2, err := d.RecordLayer.ReadRecord()
	if err != nil {
		if errors.Is(err, recordlayer.ErrWouldBlock) {
			return BlockedOnRead, nil
		}
		return NotBlocked, err
	}

	if isSSLv2 {
		return NotBlocked, d.handleSSLv2ClientHello(payload)
	}

	switch contentType {
	case protocol.ContentTypeApplicationData:
		return NotBlocked, &Error{Kind: ErrBadMessage, Message: "application data before APPDATA sentinel"}

	case protocol.ContentTypeChangeCipherSpec:
		return NotBlocked, d.handleCCSRecord(payload)

	case protocol.ContentTypeAlert:
		return NotBlocked, d.handleAlertRecord(payload)

	case protocol.ContentTypeHandshake:
		return d.handleHandshakeRecord(payload)

	default:
		// Unknown content type: silently discard, no slot advance.
		return NotBlocked, nil
	}
}

func (d *Driver) handleSSLv2ClientHello(payload []byte) error {
	slot, err := d.ActiveSlot()
	if err != nil {
		return err
	}
	if slot != SlotClientHello {
		return &Error{Kind: ErrBadMessage, Slot: slot, Message: "SSLv2-compat ClientHello outside the first slot"}
	}

	header := d.RecordLayer.SSLv2HeaderBytes()
	d.Transcript.Write(header[:])
	d.Transcript.Write(payload)

	d.io.buf = append(d.io.buf[:0], payload...)
	d.io.wiped = false

	action := d.action(slot)
	handler := action.roleHandler(d.role())
	if handler == nil {
		return &Error{Kind: ErrProgrammerError, Slot: slot, Message: "null handler for SSLv2 ClientHello"}
	}
	if err := handler(d); err != nil {
		return d.kill(&Error{Kind: ErrHandlerError, Slot: slot, Err: err})
	}
	d.io.wipe()
	return advanceMessage(d)
}

func (d *Driver) handleCCSRecord(payload []byte) error {
	if len(payload) != 1 {
		return &Error{Kind: ErrBadMessage, Message: "ChangeCipherSpec payload is not exactly 1 byte"}
	}
	slot, err := d.ActiveSlot()
	if err != nil {
		return err
	}
	action := d.action(slot)
	if action.RecordType != protocol.ContentTypeChangeCipherSpec {
		return &Error{Kind: ErrBadMessage, Slot: slot, Message: "unexpected ChangeCipherSpec"}
	}

	d.io.buf = append(d.io.buf[:0], payload...)
	d.io.wiped = false

	handler := action.roleHandler(d.role())
	if handler == nil {
		return &Error{Kind: ErrProgrammerError, Slot: slot, Message: "null handler for ChangeCipherSpec"}
	}
	if err := handler(d); err != nil {
		return d.kill(&Error{Kind: ErrHandlerError, Slot: slot, Err: err})
	}
	d.io.wipe()
	return advanceMessage(d)
}

func (d *Driver) handleAlertRecord(payload []byte) error {
	var a alert.Alert
	if err := a.Unmarshal(payload); err != nil {
		return &Error{Kind: ErrBadMessage, Message: "malformed alert", Err: err}
	}
	if d.Alerts != nil {
		return d.Alerts.HandleAlert(a)
	}
	if a.IsFatalOrCloseNotify() {
		return d.kill(&Error{Kind: ErrHandlerError, Message: "peer sent fatal alert: " + a.String()})
	}
	return nil
}

// handleHandshakeRecord implements spec.md §4.6 step 7: loop while the
// record has unread bytes, since one record may carry several back-to-back
// handshake messages.
func (d *Driver) handleHandshakeRecord(payload []byte) (Blocked, error) {
	for len(payload) > 0 {
		slot, err := d.ActiveSlot()
		if err != nil {
			return NotBlocked, err
		}
		action := d.action(slot)

		consumed, done, messageType, err := readOne(d, payload)
		payload = payload[consumed:]
		if err != nil {
			return NotBlocked, d.kill(err)
		}
		if !done {
			return NotBlocked, nil
		}
		if messageType != action.MessageType {
			return NotBlocked, d.kill(&Error{Kind: ErrBadMessage, Slot: slot, Message: "unexpected handshake message type"})
		}

		handler := action.roleHandler(d.role())
		if handler == nil {
			return NotBlocked, d.kill(&Error{Kind: ErrProgrammerError, Slot: slot, Message: "null handler invoked"})
		}
		if err := handler(d); err != nil {
			d.io.wipe()
			return NotBlocked, d.kill(&Error{Kind: ErrHandlerError, Slot: slot, Err: err})
		}
		d.io.wipe()

		if err := advanceMessage(d); err != nil {
			return NotBlocked, err
		}
	}
	return NotBlocked, nil
}

// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"bytes"
	"errors"
	"io"

	"github.com/pion/logging"

	"github.com/coretls/tlshandshake/pkg/protocol"
)

// ReadWriter is the minimal non-blocking transport the record layer needs.
// Read and Write behave like io.Reader/io.Writer except that either may
// return ErrWouldBlock (wrapped or bare) to mean "no further progress is
// possible without waiting on the transport right now; call again later".
// internal/ioloop adapts a real net.Conn to this shape: reads drain a
// buffer filled by a background reader goroutine, and writes use a short
// write-deadline probe.
type ReadWriter interface {
	io.Reader
	io.Writer
}

// Conn is the concrete RecordLayer collaborator the handshake driver in
// pkg/handshakefsm consumes. It owns exactly the record framing described
// in spec.md §6: read_full_record, write_record, flush,
// max_write_payload_size — nothing about handshake semantics.
type Conn struct {
	transport ReadWriter
	log       logging.LeveledLogger

	version protocol.Version

	// read side: a partially received header/payload survives across
	// ErrWouldBlock returns exactly like the driver's own io buffer does.
	headerBuf    [HeaderSize]byte
	headerFilled int
	payloadBuf   []byte
	payloadWant  int
	payloadGot   int
	curType      protocol.ContentType

	allowSSLv2Detect bool // only true before the very first record is read

	// write side
	outbound bytes.Buffer
}

// NewConn wraps transport for use by the handshake driver. version is the
// record-layer version field this side stamps on outgoing records before
// the negotiated version is known (ClientHello uses the highest version
// offered; later records use the version actually agreed).
func NewConn(transport ReadWriter, version protocol.Version, log logging.LeveledLogger) (*Conn, error) {
	if transport == nil {
		return nil, errNilConn
	}
	return &Conn{
		transport:        transport,
		log:              log,
		version:          version,
		allowSSLv2Detect: true,
	}, nil
}

// SetVersion updates the version this side stamps on outgoing record
// headers, called once the negotiated version is fixed.
func (c *Conn) SetVersion(v protocol.Version) {
	c.version = v
}

// MaxWritePayloadSize returns the largest payload a single WriteRecord call
// should be handed, per spec.md §4.3.1 step 2.
func (c *Conn) MaxWritePayloadSize() int {
	return MaxPlaintextRecordLength
}

// WriteRecord buffers one record (header + payload) for the next Flush. It
// never itself blocks: buffering is pure memory growth.
func (c *Conn) WriteRecord(contentType protocol.ContentType, payload []byte) error {
	if len(payload) > MaxPlaintextRecordLength {
		return errRecordTooLarge
	}
	h := Header{ContentType: contentType, Version: c.version, Length: uint16(len(payload))}
	raw, err := h.Marshal()
	if err != nil {
		return err
	}
	c.outbound.Write(raw)
	c.outbound.Write(payload)
	return nil
}

// Flush writes any buffered outbound bytes to the transport. A short,
// blocked write leaves the unwritten remainder buffered and returns
// ErrWouldBlock; the caller (the negotiation loop) re-enters and Flush
// resumes where it left off.
func (c *Conn) Flush() error {
	for c.outbound.Len() > 0 {
		n, err := c.transport.Write(c.outbound.Bytes())
		if n > 0 {
			c.outbound.Next(n)
		}
		if err != nil {
			if errors.Is(err, ErrWouldBlock) {
				return ErrWouldBlock
			}
			return err
		}
		if n == 0 {
			// Transport made no progress without an error: treat as blocked
			// rather than spin.
			return ErrWouldBlock
		}
	}
	return nil
}

// ReadRecord reads one full record, or reports ErrWouldBlock if the
// transport has no more bytes to offer right now. isSSLv2 is set only when
// the very first bytes read form an SSLv2-compatible ClientHello header
// (spec.md §4.6 step 2); after the first successful read, SSLv2 detection
// is permanently disabled, matching the spec's "accepted on initial read
// only".
func (c *Conn) ReadRecord() (contentType protocol.ContentType, payload []byte, isSSLv2 bool, err error) {
	if c.headerFilled < HeaderSize {
		n, err := c.fill(c.headerBuf[c.headerFilled:HeaderSize])
		c.headerFilled += n
		if err != nil {
			return 0, nil, false, err
		}
		if c.headerFilled < HeaderSize {
			return 0, nil, false, ErrWouldBlock
		}

		if c.allowSSLv2Detect && c.headerBuf[0]&0x80 != 0 {
			return c.readSSLv2ClientHello()
		}
		c.allowSSLv2Detect = false

		var h Header
		if err := h.Unmarshal(c.headerBuf[:]); err != nil {
			return 0, nil, false, err
		}
		if int(h.Length) > MaxPlaintextRecordLength {
			return 0, nil, false, errRecordTooLarge
		}
		c.curType = h.ContentType
		c.payloadBuf = make([]byte, h.Length)
		c.payloadWant = int(h.Length)
		c.payloadGot = 0
	}

	if c.payloadGot < c.payloadWant {
		n, err := c.fill(c.payloadBuf[c.payloadGot:c.payloadWant])
		c.payloadGot += n
		if err != nil {
			return 0, nil, false, err
		}
		if c.payloadGot < c.payloadWant {
			return 0, nil, false, ErrWouldBlock
		}
	}

	out := c.payloadBuf
	ct := c.curType
	// A body pendingSSLv2Body stashed completes here: SSLv2 detection is
	// still enabled and the header still carries the SSLv2 length bit.
	isSSLv2 = c.allowSSLv2Detect && c.headerBuf[0]&0x80 != 0
	if isSSLv2 {
		ct = protocol.ContentTypeHandshake
	}
	c.resetReadState()
	c.allowSSLv2Detect = false
	return ct, out, isSSLv2, nil
}

// readSSLv2ClientHello handles the legacy 2-byte-length, 1-byte-type
// SSLv2-compatible ClientHello record framing. The 5 bytes already in
// headerBuf are the 2-byte SSLv2 length followed by the message type and
// the 2-byte client version; spec.md §4.6 step 2 requires header bytes
// [2:5) (not the usual 5-byte header) to reach the transcript hasher. The
// isSSLv2 flag's contract: payload is the rest of the message *excluding*
// those 3 bytes, and the caller is responsible for feeding
// SSLv2HeaderBytes (header bytes [2:5)) ahead of it.
func (c *Conn) readSSLv2ClientHello() (protocol.ContentType, []byte, bool, error) {
	length := int(c.headerBuf[0]&0x7f)<<8 | int(c.headerBuf[1])
	msgType := c.headerBuf[2]
	if msgType != 1 { // only a ClientHello may arrive this way
		return 0, nil, false, errNotSSLv2ClientHello
	}

	// The 2-byte length field counts the message type byte plus the
	// remaining body; three bytes of it are already consumed
	// (headerBuf[2:5]).
	remaining := length - sslv2HeaderPeekSize
	if remaining < 0 {
		return 0, nil, false, errRecordTooLarge
	}

	body := make([]byte, remaining)
	got := 0
	for got < remaining {
		n, err := c.fill(body[got:])
		got += n
		if err != nil {
			// Stash partial progress so the next ReadRecord call resumes
			// the same copy instead of re-reading the header.
			c.pendingSSLv2Body(body, got)
			return 0, nil, false, err
		}
	}

	c.resetReadState()
	return protocol.ContentTypeHandshake, body, true, nil
}

// pendingSSLv2Body stashes partial SSLv2 ClientHello body progress across
// an ErrWouldBlock return, reusing payloadBuf/payloadGot/payloadWant so the
// next ReadRecord call finishes the body through its ordinary payload path
// (which reports it as isSSLv2) instead of re-reading the header.
func (c *Conn) pendingSSLv2Body(body []byte, got int) {
	c.payloadBuf = body
	c.payloadGot = got
	c.payloadWant = len(body)
}

func (c *Conn) resetReadState() {
	c.headerFilled = 0
	c.payloadBuf = nil
	c.payloadWant = 0
	c.payloadGot = 0
}

// fill reads as many bytes as are currently available into buf, returning
// the count read and ErrWouldBlock if buf was not fully filled because the
// transport had no more to offer.
func (c *Conn) fill(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := c.transport.Read(buf[total:])
		total += n
		if err != nil {
			if errors.Is(err, ErrWouldBlock) {
				return total, ErrWouldBlock
			}
			return total, err
		}
		if n == 0 {
			return total, ErrWouldBlock
		}
	}
	return total, nil
}

// SSLv2HeaderBytes returns header bytes [2:5) (message type and client
// version) of the SSLv2-compatible ClientHello read by the most recent
// isSSLv2 ReadRecord call, for the caller to feed into the transcript
// hasher ahead of the payload (spec.md §4.6 step 2).
func (c *Conn) SSLv2HeaderBytes() [sslv2HeaderPeekSize]byte {
	var out [sslv2HeaderPeekSize]byte
	copy(out[:], c.headerBuf[2:2+sslv2HeaderPeekSize])
	return out
}

var errNotSSLv2ClientHello = errors.New("recordlayer: sslv2-framed record is not a ClientHello")

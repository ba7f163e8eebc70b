// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package ioloop adapts a blocking net.Conn into the non-blocking
// recordlayer.ReadWriter contract the handshake driver's re-entrant
// negotiate() loop expects, and gives the convenience blocking
// Conn.Handshake wrapper a way to sleep between negotiate() calls instead
// of busy-polling. The split mirrors the teacher's own two-goroutine
// design: a background reader goroutine feeds a buffer the foreground
// side drains without blocking.
package ioloop

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/coretls/tlshandshake/pkg/protocol/recordlayer"
)

// NonBlockingConn wraps a net.Conn so that Read never blocks the caller:
// a background goroutine performs the real, blocking net.Conn.Read calls
// and accumulates bytes in an internal buffer; Read and Write implement
// recordlayer.ReadWriter by draining/feeding that buffer and the
// underlying connection directly for writes (writes use a short
// SetWriteDeadline probe, since net.Conn write buffers rarely fill under
// TLS record sizes).
type NonBlockingConn struct {
	conn net.Conn

	mu       sync.Mutex
	buf      bytes.Buffer
	readErr  error
	readable chan struct{} // closed and replaced each time new data/err arrives

	closeOnce sync.Once
	closed    chan struct{}
}

// Wrap starts a background reader over conn and returns the adapter.
func Wrap(conn net.Conn) *NonBlockingConn {
	n := &NonBlockingConn{
		conn:     conn,
		readable: make(chan struct{}),
		closed:   make(chan struct{}),
	}
	go n.readLoop()
	return n
}

func (n *NonBlockingConn) readLoop() {
	chunk := make([]byte, 16*1024)
	for {
		size, err := n.conn.Read(chunk)
		n.mu.Lock()
		if size > 0 {
			n.buf.Write(chunk[:size])
		}
		if err != nil && n.readErr == nil {
			n.readErr = err
		}
		closed := n.signalReadableLocked()
		n.mu.Unlock()
		if closed || err != nil {
			return
		}
	}
}

// signalReadableLocked wakes any WaitReadable callers. Must hold n.mu.
func (n *NonBlockingConn) signalReadableLocked() bool {
	select {
	case <-n.closed:
		return true
	default:
	}
	close(n.readable)
	n.readable = make(chan struct{})
	return false
}

// Read implements recordlayer.ReadWriter: it drains already-buffered
// bytes without blocking, returning recordlayer.ErrWouldBlock when none
// are available yet and the background reader has not failed.
func (n *NonBlockingConn) Read(p []byte) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.buf.Len() > 0 {
		return n.buf.Read(p)
	}
	if n.readErr != nil {
		return 0, n.readErr
	}
	return 0, recordlayer.ErrWouldBlock
}

// Write implements recordlayer.ReadWriter using a short write deadline as
// a non-blocking probe: a write that cannot complete within
// writeProbeTimeout reports recordlayer.ErrWouldBlock along with however
// many bytes it did manage to send.
func (n *NonBlockingConn) Write(p []byte) (int, error) {
	// A deadline of time.Now() fails every write before any byte is sent,
	// so the probe gives the transport a brief moment to accept p.
	const writeProbeTimeout = 10 * time.Millisecond
	if err := n.conn.SetWriteDeadline(time.Now().Add(writeProbeTimeout)); err != nil {
		return 0, err
	}
	c, err := n.conn.Write(p)
	if isTimeout(err) {
		return c, recordlayer.ErrWouldBlock
	}
	return c, err
}

// WaitReadable blocks until the connection has buffered data, the
// background reader has failed, or ctx is done. The root Conn uses it
// between re-entrant calls into the core negotiate() driver during
// Handshake, and while Read waits for the next record; the driver itself
// never calls it.
func (n *NonBlockingConn) WaitReadable(ctx context.Context) error {
	n.mu.Lock()
	if n.buf.Len() > 0 || n.readErr != nil {
		n.mu.Unlock()
		return nil
	}
	ch := n.readable
	n.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-n.closed:
		return io.ErrClosedPipe
	}
}

// Close stops the background reader and closes the underlying connection.
func (n *NonBlockingConn) Close() error {
	n.closeOnce.Do(func() { close(n.closed) })
	return n.conn.Close()
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

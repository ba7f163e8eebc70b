// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package tlshandshake drives a TLS 1.0/1.1/1.2 handshake over a stream
// net.Conn. pkg/handshakefsm implements the re-entrant handshake state
// machine itself (spec.md §4.8); Conn is the ordinary blocking net.Conn
// wrapper built on top of it, the same division of labor the teacher's
// DTLS Conn kept between its handshakeFSM and its own two-goroutine
// Handshake/Read/Write surface.
package tlshandshake

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/pion/transport/v3/deadline"

	"github.com/coretls/tlshandshake/internal/closer"
	"github.com/coretls/tlshandshake/internal/corksocket"
	"github.com/coretls/tlshandshake/internal/ioloop"
	"github.com/coretls/tlshandshake/pkg/crypto/ciphersuite"
	"github.com/coretls/tlshandshake/pkg/handshakefsm"
	"github.com/coretls/tlshandshake/pkg/handshakelog"
	"github.com/coretls/tlshandshake/pkg/protocol"
	"github.com/coretls/tlshandshake/pkg/protocol/recordlayer"
	"github.com/coretls/tlshandshake/pkg/sni"
	zctls "github.com/zmap/zcrypto/tls"
)

// Conn is the blocking, net.Conn-shaped wrapper around a *handshakefsm.Driver.
// A background reader goroutine (internal/ioloop.NonBlockingConn) adapts
// the caller's net.Conn into the non-blocking transport the driver's
// re-entrant negotiate() loop expects; internal/corksocket batches flight
// writes the same way the teacher's cork/uncork handling does; a
// closer.Closer coordinates shutdown. None of DTLS's cookie exchange,
// flight retransmission, or epoch/connection-ID bookkeeping survives here
// — there is exactly one ordered byte stream, so none of it applies.
type Conn struct {
	raw  net.Conn
	nb   *ioloop.NonBlockingConn
	rl   *recordlayer.Conn
	cork corksocket.Corker

	closed *closer.Closer

	driver   *handshakefsm.Driver
	isClient bool
	config   *Config

	readDeadline  *deadline.Deadline
	writeDeadline *deadline.Deadline

	handshakeMu   sync.Mutex
	handshakeDone bool
	handshakeErr  error
}

// Client returns a Conn that will perform the client side of a handshake
// over rawConn once Handshake is called.
func Client(rawConn net.Conn, config *Config) (*Conn, error) {
	return newConn(rawConn, config, true)
}

// Server returns a Conn that will perform the server side of a handshake
// over rawConn once Handshake is called.
func Server(rawConn net.Conn, config *Config) (*Conn, error) {
	return newConn(rawConn, config, false)
}

// Dial opens a TCP connection to addr and returns a client Conn over it,
// matching crypto/tls.Dial's convenience shape. config.ServerName is
// filled in from addr's host when left empty.
func Dial(network, addr string, config *Config) (*Conn, error) {
	raw, err := net.Dial(network, addr)
	if err != nil {
		return nil, err
	}
	if config == nil || config.ServerName == "" {
		if host, _, splitErr := net.SplitHostPort(addr); splitErr == nil {
			cfg := Config{}
			if config != nil {
				cfg = *config
			}
			cfg.ServerName = host
			config = &cfg
		}
	}
	c, err := Client(raw, config)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return c, nil
}

func newConn(rawConn net.Conn, config *Config, isClient bool) (*Conn, error) {
	if rawConn == nil {
		return nil, errNilConn
	}
	if err := validateConfig(config, isClient); err != nil {
		return nil, err
	}

	logger := config.loggerFactory().NewLogger("tlshandshake")

	nb := ioloop.Wrap(rawConn)
	rl, err := recordlayer.NewConn(nb, protocol.Version12, logger)
	if err != nil {
		nb.Close()
		return nil, err
	}

	var cork corksocket.Corker = corksocket.ForConn(rawConn)
	if config != nil && config.DisableCorking {
		cork = noopCork{}
	}

	driver := handshakefsm.NewDriver(!isClient, rl, cork, config.sessionCache(), cryptoRandRandom{}, logger)
	if isClient {
		driver.Exchange.ServerName = sni.Normalize(configServerName(config))
	}
	if !isClient && config != nil && config.Certificate != nil {
		driver.Creds = newCredentials(*config.Certificate)
	}

	return &Conn{
		raw:           rawConn,
		nb:            nb,
		rl:            rl,
		cork:          cork,
		closed:        closer.NewCloser(),
		driver:        driver,
		isClient:      isClient,
		config:        config,
		readDeadline:  deadline.New(),
		writeDeadline: deadline.New(),
	}, nil
}

func configServerName(config *Config) string {
	if config == nil {
		return ""
	}
	return config.ServerName
}

type noopCork struct{}

func (noopCork) Cork(bool) error { return nil }

// Handshake drives the handshake to completion, blocking until it
// finishes, fails, or ctx (plus any Config.HandshakeTimeout) expires. It
// is the convenience layer spec.md §5 anticipates on top of the
// re-entrant, resumable handshakefsm.Negotiate: a BlockedOnRead result
// waits on the background reader via WaitReadable; BlockedOnWrite retries
// after a short pause, since internal/ioloop has no writable-wait signal
// to block on (TLS handshake messages are small enough that a real
// socket's write buffer essentially never stays full for long). Calling
// Handshake again after it has returned replays the same result.
func (c *Conn) Handshake(ctx context.Context) error {
	c.handshakeMu.Lock()
	defer c.handshakeMu.Unlock()

	if c.handshakeDone {
		return c.handshakeErr
	}

	if c.config != nil && c.config.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.HandshakeTimeout)
		defer cancel()
	}

	for {
		blocked, err := handshakefsm.Negotiate(c.driver)
		if err != nil {
			return c.finishHandshake(wrapHandshakeError(err))
		}

		switch blocked {
		case handshakefsm.NotBlocked:
			c.rl.SetVersion(protocol.Version12)
			return c.finishHandshake(nil)

		case handshakefsm.BlockedOnRead:
			if err := c.nb.WaitReadable(ctx); err != nil {
				return c.finishHandshake(err)
			}

		case handshakefsm.BlockedOnWrite:
			select {
			case <-time.After(time.Millisecond):
			case <-ctx.Done():
				return c.finishHandshake(ctx.Err())
			}
		}
	}
}

func (c *Conn) finishHandshake(err error) error {
	c.handshakeDone = true
	c.handshakeErr = err
	return err
}

func (c *Conn) handshakeReady() bool {
	c.handshakeMu.Lock()
	defer c.handshakeMu.Unlock()
	return c.handshakeDone && c.handshakeErr == nil
}

// Write encrypts b under the negotiated AEAD and sends it as one or more
// application_data records. handlers.go's ChangeCipherSpec handlers are
// structural only (Exchange's doc comment); Conn encrypts only the
// application_data records it sends and receives once Handshake has
// finished. Handshake records, Finished included, travel unencrypted.
func (c *Conn) Write(b []byte) (int, error) {
	if !c.handshakeReady() {
		return 0, errHandshakeNotDone
	}

	aead := c.writeAEAD()
	// gcmExplicitNonceLength accounts for GCM.Encrypt's 8-byte explicit
	// nonce prefix, which TagLength's own doc comment calls out as an
	// overhead "beyond" the tag it reports; GCM is the only AEAD this
	// driver's ciphersuite registry ever constructs.
	const gcmExplicitNonceLength = 8
	chunk := c.rl.MaxWritePayloadSize() - aead.TagLength() - gcmExplicitNonceLength
	if chunk <= 0 {
		chunk = 1
	}

	total := 0
	for total < len(b) {
		end := total + chunk
		if end > len(b) {
			end = len(b)
		}
		ciphertext, err := aead.Encrypt(protocol.ContentTypeApplicationData, protocol.Version12, b[total:end])
		if err != nil {
			return total, err
		}
		if err := c.rl.WriteRecord(protocol.ContentTypeApplicationData, ciphertext); err != nil {
			return total, err
		}
		if err := c.flushBlocking(); err != nil {
			return total, err
		}
		total = end
	}
	return total, nil
}

func (c *Conn) flushBlocking() error {
	for {
		err := c.rl.Flush()
		if err == nil {
			return nil
		}
		if !errors.Is(err, recordlayer.ErrWouldBlock) {
			return err
		}
		select {
		case <-time.After(time.Millisecond):
		case <-c.writeDeadline.Done():
			return errWriteTimeout
		case <-c.closed.Done():
			return net.ErrClosed
		}
	}
}

// Read decrypts and returns the next application_data record's plaintext
// into b. Any alert or ChangeCipherSpec record arriving after the
// handshake completes is outside this driver's scope (spec.md's
// Non-goals exclude renegotiation) and is dropped rather than surfaced.
func (c *Conn) Read(b []byte) (int, error) {
	if !c.handshakeReady() {
		return 0, errHandshakeNotDone
	}

	for {
		ct, payload, _, err := c.rl.ReadRecord()
		if err == nil {
			if ct != protocol.ContentTypeApplicationData {
				continue
			}
			plaintext, decErr := c.readAEAD().Decrypt(ct, protocol.Version12, payload)
			if decErr != nil {
				return 0, decErr
			}
			return copy(b, plaintext), nil
		}
		if !errors.Is(err, recordlayer.ErrWouldBlock) {
			return 0, err
		}
		if err := c.waitReadable(); err != nil {
			return 0, err
		}
	}
}

// waitReadable blocks until the background reader has data, fails, or
// the configured read deadline elapses.
func (c *Conn) waitReadable() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-c.readDeadline.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	if err := c.nb.WaitReadable(ctx); err != nil {
		if ctx.Err() != nil {
			return errReadTimeout
		}
		return err
	}
	return nil
}

func (c *Conn) writeAEAD() ciphersuite.AEAD {
	if c.isClient {
		return c.driver.Exchange.Keys.ClientWriteAEAD
	}
	return c.driver.Exchange.Keys.ServerWriteAEAD
}

// readAEAD returns the same AEAD as writeAEAD: each one encrypts under its
// own side's write key and decrypts under the peer's (EncryptionMaterial).
func (c *Conn) readAEAD() ciphersuite.AEAD {
	if c.isClient {
		return c.driver.Exchange.Keys.ClientWriteAEAD
	}
	return c.driver.Exchange.Keys.ServerWriteAEAD
}

// Close shuts down the background reader and the underlying connection.
func (c *Conn) Close() error {
	c.closed.Close()
	return c.nb.Close()
}

func (c *Conn) LocalAddr() net.Addr  { return c.raw.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// SetReadDeadline arms a software deadline consulted by Read's
// WaitReadable wait; it does not touch the underlying net.Conn's own
// deadline, since internal/ioloop's background reader goroutine would
// exit permanently on the resulting timeout error rather than resuming
// when the deadline is later extended.
func (c *Conn) SetReadDeadline(t time.Time) error {
	c.readDeadline.Set(t)
	return nil
}

// SetWriteDeadline arms a software deadline consulted by Write's flush
// retry loop, for the same reason SetReadDeadline stays software-only.
func (c *Conn) SetWriteDeadline(t time.Time) error {
	c.writeDeadline.Set(t)
	return nil
}

// SetDeadline sets both the read and write deadlines.
func (c *Conn) SetDeadline(t time.Time) error {
	if err := c.SetReadDeadline(t); err != nil {
		return err
	}
	return c.SetWriteDeadline(t)
}

// ConnectionState reports the parameters negotiated by Handshake.
type ConnectionState struct {
	Version          protocol.Version
	CipherSuiteID    uint16
	ServerName       string
	PeerCertificates []*x509.Certificate
	Resumed          bool
	SessionID        []byte
}

func (c *Conn) ConnectionState() ConnectionState {
	e := &c.driver.Exchange
	var suiteID uint16
	if e.CipherSuite != nil {
		suiteID = e.CipherSuite.ID
	}
	return ConnectionState{
		Version:          protocol.Version12,
		CipherSuiteID:    suiteID,
		ServerName:       e.ServerName,
		PeerCertificates: e.PeerCertificates,
		Resumed:          e.IsResumption,
		SessionID:        c.driver.SessionID,
	}
}

// HandshakeLog returns the zcrypto scan-log projection of this
// connection's handshake, mirroring the teacher's own GetHandshakeLog.
func (c *Conn) HandshakeLog() *zctls.ServerHandshake {
	return handshakelog.Build(&c.driver.Exchange)
}

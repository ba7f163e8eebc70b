// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tlshandshake

import (
	"time"

	"github.com/pion/logging"

	"github.com/coretls/tlshandshake/pkg/handshakefsm"
	"github.com/coretls/tlshandshake/pkg/session"
)

// Config configures a Conn. It mirrors the teacher's own public
// Config/internal handshakeConfig split: these are the user-facing knobs,
// reduced once per connection (in newConn) into the driver fields a
// handshakefsm.Driver actually consults.
type Config struct {
	// ServerName is sent as the client's SNI extension value, normalized
	// with pkg/sni first; a server ignores it. Dial fills this in from the
	// dialed address when left empty.
	ServerName string

	// Certificate is this side's certificate chain and signing key.
	// Required when Config is used with Server; ignored by Client, since
	// this driver never requests client certificates (spec.md's
	// Non-goals).
	Certificate *Certificate

	// SessionCache enables resumption when non-nil. *session.MemoryCache
	// is the concrete implementation this module ships; both sides of a
	// connection may share or use separate caches.
	SessionCache *session.MemoryCache

	// LoggerFactory builds the LeveledLogger handed to the handshake
	// driver and record layer, which hold it but emit no log lines.
	// logging.NewDefaultLoggerFactory() is used when nil, matching the
	// teacher's own createConn.
	LoggerFactory logging.LoggerFactory

	// HandshakeTimeout bounds how long the blocking Handshake wrapper
	// waits for the peer; zero means bounded only by the context passed
	// to Handshake.
	HandshakeTimeout time.Duration

	// DisableCorking turns off internal/corksocket's TCP_CORK/TCP_NOPUSH
	// flight batching (spec.md §4.5's "optimized I/O enabled" gate).
	DisableCorking bool
}

func (c *Config) loggerFactory() logging.LoggerFactory {
	if c != nil && c.LoggerFactory != nil {
		return c.LoggerFactory
	}
	return logging.NewDefaultLoggerFactory()
}

func (c *Config) sessionCache() handshakefsm.SessionCache {
	if c == nil || c.SessionCache == nil {
		return nil
	}
	return c.SessionCache
}

// validateConfig checks the combination of config and role spec.md §6's
// Credentials collaborator requires before a handshake can even start.
func validateConfig(config *Config, isClient bool) error {
	if config == nil {
		if isClient {
			return nil
		}
		return errNoCertificateConfigured
	}
	if !isClient {
		if config.Certificate == nil {
			return errNoCertificateConfigured
		}
		if len(config.Certificate.Chain) == 0 {
			return errEmptyCertificateChain
		}
		if config.Certificate.PrivateKey == nil {
			return errNoPrivateKeyConfigured
		}
	}
	return nil
}

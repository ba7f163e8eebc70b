// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package corksocket lets the handshake driver batch several flight
// messages into a single outbound TCP segment (spec.md §4.5's cork/uncork
// around message_number advancement), using the platform's native
// TCP_CORK/TCP_NOPUSH socket option where available. On platforms without
// either, corking is a no-op: Flush already coalesces buffered records
// into one Write, so correctness never depends on the OS honoring cork.
package corksocket

import "net"

// Corker optionally corks and uncorks the write side of a connection.
// Cork(true) asks the kernel to withhold partial segments until enough
// data accumulates or Cork(false) releases them; Go's *net.TCPConn
// implements SyscallConn, which platform-specific files use to reach the
// raw file descriptor.
type Corker interface {
	Cork(on bool) error
}

// ForConn returns a Corker for conn if its concrete type exposes a raw
// file descriptor this package knows how to cork on the current platform,
// or a no-op Corker otherwise.
func ForConn(conn net.Conn) Corker {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return noopCorker{}
	}
	if c := newPlatformCorker(tcp); c != nil {
		return c
	}
	return noopCorker{}
}

type noopCorker struct{}

func (noopCorker) Cork(bool) error { return nil }

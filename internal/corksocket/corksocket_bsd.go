// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package corksocket

import (
	"net"

	"golang.org/x/sys/unix"
)

type bsdCorker struct {
	conn *net.TCPConn
}

func newPlatformCorker(conn *net.TCPConn) Corker {
	return &bsdCorker{conn: conn}
}

// Cork toggles TCP_NOPUSH, the BSD-family analogue of Linux's TCP_CORK.
// Unlike TCP_CORK, disabling TCP_NOPUSH does not itself force a flush, so
// the caller must still perform a normal Write after uncorking.
func (c *bsdCorker) Cork(on bool) error {
	raw, err := c.conn.SyscallConn()
	if err != nil {
		return err
	}
	val := 0
	if on {
		val = 1
	}
	var setErr error
	if err := raw.Control(func(fd uintptr) {
		setErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NOPUSH, val)
	}); err != nil {
		return err
	}
	return setErr
}

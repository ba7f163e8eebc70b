// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build linux

package corksocket

import (
	"net"

	"golang.org/x/sys/unix"
)

type linuxCorker struct {
	conn *net.TCPConn
}

func newPlatformCorker(conn *net.TCPConn) Corker {
	return &linuxCorker{conn: conn}
}

// Cork toggles TCP_CORK. Setting it off also flushes any data the kernel
// withheld while it was on, matching the semantics the driver's uncork
// step (spec.md §4.5) relies on.
func (c *linuxCorker) Cork(on bool) error {
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
		setErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_CORK, val)
	}); err != nil {
		return err
	}
	return setErr
}

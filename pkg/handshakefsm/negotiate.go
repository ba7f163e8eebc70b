// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshakefsm

import (
	"errors"

	"github.com/coretls/tlshandshake/pkg/protocol/recordlayer"
)

// Negotiate is the top-level, re-entrant negotiation loop (spec.md
// §4.8). It makes as much progress as possible and returns whenever
// further progress would block on the transport; the caller is expected
// to wait on readability/writability and call Negotiate again, which
// resumes exactly where the previous call left off.
//
// Once Negotiate returns a non-nil error that is not itself a blocked
// condition (blocked conditions are reported only through Blocked, never
// as an error), the connection is unrecoverable and every subsequent
// call returns the same error immediately.
func Negotiate(d *Driver) (Blocked, error) {
	if d.killed {
		return NotBlocked, d.killedErr
	}

	for {
		slot, err := d.ActiveSlot()
		if err != nil {
			return NotBlocked, d.kill(err)
		}
		if d.action(slot).Writer == WriterBoth {
			break
		}

		if err := d.RecordLayer.Flush(); err != nil {
			if isBlocked(err) {
				return BlockedOnWrite, nil
			}
			return NotBlocked, d.kill(err)
		}

		if d.action(slot).Writer == d.role() {
			blocked, err := handshakeWriteIO(d)
			if err != nil {
				return NotBlocked, d.onFatalError(err)
			}
			if blocked != NotBlocked {
				return blocked, nil
			}
		} else {
			blocked, err := handshakeReadIO(d)
			if err != nil {
				return NotBlocked, d.onFatalError(err)
			}
			if blocked != NotBlocked {
				return blocked, nil
			}
		}
	}

	d.io.buf = nil
	d.io.wiped = true
	return NotBlocked, nil
}

// onFatalError implements spec.md §4.8 and §7's single side effect on
// the way out of a non-blocked error: delete the current session id from
// the cache, if caching is enabled and one was in play.
func (d *Driver) onFatalError(err error) error {
	if d.Cache != nil && len(d.SessionID) > 0 {
		d.Cache.Delete(d.SessionID)
	}
	return d.kill(err)
}

func isBlocked(err error) bool {
	return errors.Is(err, recordlayer.ErrWouldBlock)
}

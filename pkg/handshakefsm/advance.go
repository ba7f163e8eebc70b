// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshakefsm

// advanceMessage implements the state advancer (spec.md §4.5): increments
// message_number, then — unless corking is disabled or the caller's
// socket was already corked coming in — requests cork or uncork on a
// writer-direction change.
func advanceMessage(d *Driver) error {
	prevSlot, prevErr := d.ActiveSlot() // current slot, about to become "previous"
	d.messageNumber++

	if !d.CorkingEnabled || d.CallerSocketWasCorked {
		return nil
	}

	newSlot, err := d.ActiveSlot()
	if err != nil {
		return err
	}
	if prevErr != nil {
		return prevErr
	}

	prevAction := d.action(prevSlot)
	newAction := d.action(newSlot)

	if newAction.Writer == prevAction.Writer {
		return nil
	}

	if newAction.Writer == d.role() {
		return d.SocketCork.Cork(true)
	}
	return d.SocketCork.Cork(false)
}

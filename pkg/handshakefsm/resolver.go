// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshakefsm

// SessionIDMaxLength is the fixed maximum length of a server-generated
// session id (spec.md §4.4 step 2).
const SessionIDMaxLength = 32

// SetHandshakeType is the handshake-type resolver (spec.md §4.4),
// invoked by the ServerHello handler immediately after both sides have
// agreed on cipher suite and resumption outcome.
func (d *Driver) SetHandshakeType() error {
	d.handshakeType = Negotiated

	if d.Cache != nil {
		if d.Exchange.IsResumption {
			// Resumption: NEGOTIATED without FULL_HANDSHAKE (spec.md §9
			// branch (a) — RESUME modelled as FULL_HANDSHAKE's absence).
			return nil
		}
		if d.IsServer && len(d.SessionID) == 0 {
			id := make([]byte, SessionIDMaxLength)
			if err := d.Rand.Read(id); err != nil {
				return err
			}
			d.SessionID = id
		}
	}

	d.handshakeType |= FullHandshake

	if d.Exchange.CipherSuite != nil && d.Exchange.CipherSuite.IsForwardSecret() {
		d.handshakeType |= PerfectForwardSecrecy
	}

	if d.serverCanSendOCSP() {
		d.handshakeType |= OCSPStatus
	}

	_, err := shapeFor(d.handshakeType)
	return err
}

// serverCanSendOCSP reports whether this side negotiated and holds an
// OCSP response to staple, mirroring spec.md §4.4 step 5's
// server_can_send_ocsp(conn).
func (d *Driver) serverCanSendOCSP() bool {
	return d.IsServer && len(d.Exchange.OCSPResponse) > 0
}

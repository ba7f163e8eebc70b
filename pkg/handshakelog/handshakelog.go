// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package handshakelog projects a completed handshake's Exchange into a
// zcrypto/tls.ServerHandshake, the same scan-log shape the teacher's own
// Conn.GetHandshakeLog produced for DTLS. MessageServerHello.MakeLog and
// MessageFinished.MakeLog already build the per-message pieces; this
// package only assembles them.
package handshakelog

import (
	"github.com/coretls/tlshandshake/pkg/handshakefsm"
	"github.com/zmap/zcrypto/tls"
)

// Build assembles the scan-log view of a finished (or in-progress, for a
// partial/aborted handshake) Exchange. Fields whose source message never
// ran — most commonly ServerFinished/ClientFinished on a connection that
// failed before completing — are left nil rather than zero-valued, so a
// caller can distinguish "never happened" from "happened with an empty
// verify_data".
func Build(e *handshakefsm.Exchange) *tls.ServerHandshake {
	out := &tls.ServerHandshake{
		ServerHello:    e.ServerHelloLog,
		ServerFinished: e.ServerFinishedLog,
		ClientFinished: e.ClientFinishedLog,
	}
	return out
}

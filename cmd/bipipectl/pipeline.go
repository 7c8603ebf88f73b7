// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"crypto/tls"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bassosimone/bipipe"
	"github.com/bassosimone/bipipe/stages/deflate"
	"github.com/bassosimone/bipipe/stages/framer"
	"github.com/bassosimone/bipipe/stages/tick"
	"github.com/bassosimone/bipipe/stages/tlsshake"
	"github.com/bassosimone/bipipe/stages/wsevents"
)

// buildPipeline composes the reference and domain stages into one Stage
// per cfg, top (application payloads) to bottom (wire bytes): an optional
// wsevents tap, an optional tick heartbeat, optional DEFLATE compression,
// the length-prefix framer, and an optional TLS handshake gate. Every
// layer shares the []byte/[]byte/[]byte/[]byte port shape, so composing
// them vertically never requires a type-changing adapter. The wsevents
// tap is wired via Parallel, not Vertical: Identity owns the command
// path untouched, wsevents.Stage owns the event path and its broadcast
// side effect, matching Parallel's "left owns commands, right owns
// events" split.
func buildPipeline(cfg *config, tlsConfig *tls.Config, connProvider tlsshake.ConnProvider,
	tickRedeliver tick.Redeliver, wsConn *websocket.Conn) bipipe.Stage[[]byte, []byte, []byte, []byte] {

	bottom := framer.Stage(uint32(cfg.MaxFrame))
	if cfg.TLS {
		gate := tlsshake.Stage(tlsConfig, connProvider, 30*time.Second)
		bottom = bipipe.Vertical[[]byte, []byte, []byte, []byte, []byte, []byte](bottom, gate)
	}

	var body bipipe.Stage[[]byte, []byte, []byte, []byte] = bottom
	if cfg.Deflate {
		body = bipipe.Vertical[[]byte, []byte, []byte, []byte, []byte, []byte](deflate.Stage(-1), body)
	}

	if cfg.TickInterval > 0 {
		heartbeat := tick.Stage[[]byte, []byte](time.Duration(cfg.TickInterval)*time.Second, tickRedeliver)
		body = bipipe.Vertical[[]byte, []byte, []byte, []byte, []byte, []byte](heartbeat, body)
	}

	if wsConn != nil {
		tap := bipipe.Parallel[[]byte, []byte](bipipe.Identity[[]byte, []byte](), wsevents.Stage(wsConn))
		body = bipipe.Vertical[[]byte, []byte, []byte, []byte, []byte, []byte](tap, body)
	}

	return body
}

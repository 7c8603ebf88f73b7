// SPDX-License-Identifier: GPL-3.0-or-later

// Package wsevents implements an illustrative tap stage: every UpEvent
// passing through is also broadcast over a gorilla/websocket connection
// for live tailing, while the command path is left untouched. Grounded on
// bgpipe's websocket stage, simplified to the single-connection,
// fire-and-forget broadcast this package's tap needs: the pipeline's
// normal event flow must never block or fail because a tailing client is
// slow or gone.
package wsevents

import (
	"github.com/gorilla/websocket"

	"github.com/bassosimone/bipipe"
)

// Stage returns a [bipipe.Stage] that forwards commands unchanged and taps
// every event to conn before forwarding it unchanged. conn may be nil, in
// which case the stage is a plain passthrough: useful for composing the
// tap conditionally without branching the pipeline shape.
func Stage(conn *websocket.Conn) bipipe.Stage[[]byte, []byte, []byte, []byte] {
	return stage{conn: conn}
}

type stage struct {
	conn *websocket.Conn
}

func (s stage) Apply(*bipipe.Context) bipipe.PipePair[[]byte, []byte, []byte, []byte] {
	return &pipePair{conn: s.conn}
}

type pipePair struct {
	conn *websocket.Conn
}

var _ bipipe.PipePair[[]byte, []byte, []byte, []byte] = (*pipePair)(nil)

// OnCommand passes commands through untouched: only the event path taps.
func (p *pipePair) OnCommand(_ *bipipe.Context, cmd []byte) (bipipe.Emission[[]byte, []byte], error) {
	return bipipe.Command[[]byte, []byte](cmd), nil
}

// OnEvent broadcasts evt to the tailing websocket connection, then
// forwards it unchanged. A broadcast failure is logged and otherwise
// ignored: a disconnected tailing client must never affect the pipeline
// it is observing.
func (p *pipePair) OnEvent(ctx *bipipe.Context, evt []byte) (bipipe.Emission[[]byte, []byte], error) {
	if p.conn != nil {
		if err := p.conn.WriteMessage(websocket.BinaryMessage, evt); err != nil {
			ctx.Logger.Debug("wsevents: broadcast failed", "err", err)
		}
	}
	return bipipe.Event[[]byte, []byte](evt), nil
}

// OnManagement declines every message: the tap has no out-of-band
// behavior.
func (p *pipePair) OnManagement(*bipipe.Context, bipipe.Management) (bipipe.Emission[[]byte, []byte], error) {
	return bipipe.Nothing[[]byte, []byte](), nil
}

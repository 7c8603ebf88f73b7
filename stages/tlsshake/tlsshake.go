// SPDX-License-Identifier: GPL-3.0-or-later

// Package tlsshake implements a management-triggered TLS handshake stage,
// grounded on package transport's TLSHandshakeFunc. Ordinary command/event
// traffic is byte-for-byte passthrough; the interesting behavior lives in
// the management port, which performs the handshake over a connection
// supplied by the pipeline builder and gates outgoing commands until it
// completes.
package tlsshake

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/bassosimone/bipipe"
	"github.com/bassosimone/bipipe/transport"
)

// Message is the distinguished management value that triggers the
// handshake. Any other management message is declined.
const Message bipipe.Management = "tlsshake.StartHandshake"

// ConnProvider returns the connection the handshake should run over. It is
// supplied at stage-construction time, the same out-of-band
// capability-injection idiom stages/tick uses for its Redeliver callback:
// the Stage factory has no access to anything beyond the Context it is
// given, so connection acquisition is the builder's responsibility.
type ConnProvider func() (net.Conn, error)

// Stage returns a [bipipe.Stage] that performs one TLS handshake on
// [Message] and otherwise passes bytes through unchanged. Timeout bounds
// the handshake; a non-positive value means no deadline.
func Stage(tlsConfig *tls.Config, conn ConnProvider, timeout time.Duration) bipipe.Stage[[]byte, []byte, []byte, []byte] {
	return stage{tlsConfig: tlsConfig, connProvider: conn, timeout: timeout}
}

type stage struct {
	tlsConfig    *tls.Config
	connProvider ConnProvider
	timeout      time.Duration
}

func (s stage) Apply(ctx *bipipe.Context) bipipe.PipePair[[]byte, []byte, []byte, []byte] {
	return &pipePair{
		handshake: transport.NewTLSHandshakeFunc(transport.NewConfig(), s.tlsConfig, ctx.Logger),
		conn:      s.connProvider,
		timeout:   s.timeout,
	}
}

// pipePair holds per-pipeline handshake state: whether it has completed
// yet, and the commands accumulated while it hasn't.
type pipePair struct {
	handshake *transport.TLSHandshakeFunc
	conn      ConnProvider
	timeout   time.Duration

	done    bool
	pending [][]byte
}

var _ bipipe.PipePair[[]byte, []byte, []byte, []byte] = (*pipePair)(nil)

// OnCommand buffers payload until the handshake completes, after which it
// passes bytes through unchanged. Buffering (rather than the framer's
// silent-drop-on-overflow asymmetry) is required here: dropping
// already-accepted application data would violate ordering for anything
// injected before the handshake finishes.
func (p *pipePair) OnCommand(_ *bipipe.Context, payload []byte) (bipipe.Emission[[]byte, []byte], error) {
	if !p.done {
		p.pending = append(p.pending, payload)
		return bipipe.Nothing[[]byte, []byte](), nil
	}
	return bipipe.Command[[]byte, []byte](payload), nil
}

// OnEvent passes events through unchanged; record-layer encryption and
// decryption happen on the connection itself, outside this stage's ports.
func (p *pipePair) OnEvent(_ *bipipe.Context, evt []byte) (bipipe.Emission[[]byte, []byte], error) {
	return bipipe.Event[[]byte, []byte](evt), nil
}

// OnManagement runs the handshake on [Message] and declines everything
// else. On success it flushes every buffered command ahead of a summary
// UpEvent describing the negotiated connection; on failure the error
// propagates to the caller, per the core's management error-handling rule.
func (p *pipePair) OnManagement(_ *bipipe.Context, msg bipipe.Management) (bipipe.Emission[[]byte, []byte], error) {
	if msg != Message {
		return bipipe.Nothing[[]byte, []byte](), nil
	}

	conn, err := p.conn()
	if err != nil {
		return bipipe.Nothing[[]byte, []byte](), fmt.Errorf("tlsshake: acquire connection: %w", err)
	}

	hctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(hctx, p.timeout)
		defer cancel()
	}

	tconn, err := p.handshake.Call(hctx, conn)
	if err != nil {
		return bipipe.Nothing[[]byte, []byte](), fmt.Errorf("tlsshake: handshake: %w", err)
	}
	state := tconn.ConnectionState()

	p.done = true
	items := make([]bipipe.Item[[]byte, []byte], 0, len(p.pending)+1)
	for _, payload := range p.pending {
		items = append(items, bipipe.DownCommand[[]byte, []byte](payload))
	}
	p.pending = nil
	summary := fmt.Sprintf("tls:%s:%s", tls.VersionName(state.Version), tls.CipherSuiteName(state.CipherSuite))
	items = append(items, bipipe.UpEvent[[]byte, []byte]([]byte(summary)))

	return bipipe.Many(items...), nil
}

// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"context"
	"net"
)

// NewCancelWatchFunc returns a new [*CancelWatchFunc].
func NewCancelWatchFunc() *CancelWatchFunc {
	return &CancelWatchFunc{}
}

// CancelWatchFunc closes a dialed connection the moment the context passed
// to Call ends (in bipipectl, the 30-second timeout context root.go runs
// the dial chain under), so a blocked read or write fails immediately
// instead of waiting to notice on its own.
//
// The connection returned by Call wraps the input; closing it stops
// watching the context before closing the underlying connection, so a
// normal shutdown never races a late cancellation into a double close.
type CancelWatchFunc struct{}

var _ Func[net.Conn, net.Conn] = &CancelWatchFunc{}

// Call arms a [context.AfterFunc] that closes conn once ctx is done and
// returns a [net.Conn] whose Close disarms that watcher first.
func (op *CancelWatchFunc) Call(ctx context.Context, conn net.Conn) (net.Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	return &ctxWatchedConn{Conn: conn, stop: stop}, nil
}

// ctxWatchedConn pairs a [net.Conn] with the stop function of the
// [context.AfterFunc] watching it.
type ctxWatchedConn struct {
	net.Conn
	stop func() bool
}

// Close disarms the context watcher before closing the underlying conn.
func (c *ctxWatchedConn) Close() error {
	c.stop()
	return c.Conn.Close()
}

// SPDX-License-Identifier: GPL-3.0-or-later

// Package tick implements a reference consumer of package bipipe: a
// symmetric passthrough for ordinary traffic whose management port turns
// a distinguished Tick message into a recurring heartbeat via the
// Context's [bipipe.Scheduler] capability.
package tick

import (
	"time"

	"github.com/bassosimone/bipipe"
)

// Message is the distinguished management value this stage reacts to. Any
// other management message is declined (empty emission).
const Message bipipe.Management = "tick.Tick"

// Redeliver re-injects a management message into the pipeline the tick
// stage is part of. A caller wires this to an [*bipipe.Injector]'s
// Management method once the pipeline has been built; the stage itself
// has no way to reach the injector that will eventually own it.
type Redeliver func(bipipe.Management)

// Stage returns a [bipipe.Stage] that forwards commands and events
// unchanged and, on receiving [Message], schedules its own redelivery
// after interval. A nil redeliver makes the heartbeat inert: management
// still declines cleanly, but nothing is ever rescheduled.
func Stage[C, E any](interval time.Duration, redeliver Redeliver) bipipe.Stage[C, C, E, E] {
	return stage[C, E]{interval: interval, redeliver: redeliver}
}

type stage[C, E any] struct {
	interval  time.Duration
	redeliver Redeliver
}

func (s stage[C, E]) Apply(*bipipe.Context) bipipe.PipePair[C, C, E, E] {
	return &pipePair[C, E]{interval: s.interval, redeliver: s.redeliver}
}

type pipePair[C, E any] struct {
	interval  time.Duration
	redeliver Redeliver
}

var _ bipipe.PipePair[any, any, any, any] = (*pipePair[any, any])(nil)

func (p *pipePair[C, E]) OnCommand(_ *bipipe.Context, cmd C) (bipipe.Emission[C, E], error) {
	return bipipe.Command[C, E](cmd), nil
}

func (p *pipePair[C, E]) OnEvent(_ *bipipe.Context, evt E) (bipipe.Emission[C, E], error) {
	return bipipe.Event[C, E](evt), nil
}

// OnManagement schedules a redelivery of [Message] after interval and
// otherwise declines. The response to Tick itself is always empty: the
// heartbeat's effect is the rescheduled delivery, not this call's return
// value.
func (p *pipePair[C, E]) OnManagement(ctx *bipipe.Context, msg bipipe.Management) (bipipe.Emission[C, E], error) {
	if msg != Message {
		return bipipe.Nothing[C, E](), nil
	}
	if p.redeliver != nil {
		ctx.Scheduler.Schedule(p.interval, func() {
			p.redeliver(Message)
		})
	}
	return bipipe.Nothing[C, E](), nil
}

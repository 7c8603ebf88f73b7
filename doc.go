// SPDX-License-Identifier: GPL-3.0-or-later

// Package bipipe provides a bidirectional protocol pipeline engine: a
// framework for composing layered protocol stages (framing, encoding,
// timers, encryption) into a single unit that transforms a stream of
// commands flowing downward, toward the wire, and a stream of events
// flowing upward, toward the application.
//
// # Core Abstraction
//
// Every stage implements [PipePair], produced by a [Stage] factory:
//
//	type PipePair[CA, CB, EA, EB any] interface {
//		OnCommand(ctx *Context, cmd CA) (Emission[CB, EA], error)
//		OnEvent(ctx *Context, evt EB) (Emission[CB, EA], error)
//		OnManagement(ctx *Context, msg Management) (Emission[CB, EA], error)
//	}
//
// CA/EA are the ports facing the stage above; CB/EB face the stage below.
// [Emission] is the ordered, possibly-empty sequence of [Item]s a call
// returns, each tagged [Up] (an event bound for the stage above) or
// [Down] (a command bound for the stage below).
//
// # Composition
//
// [Vertical] stacks two stages so one's downward output feeds the other's
// downward input, and symmetrically for events upward; [Parallel] combines
// two stages sharing all four port types by taking one's command pipeline
// and the other's event pipeline. Both preserve item ordering and fan out
// management messages to every constituent stage exactly once.
//
// # Fast Path
//
// Returning one item is the overwhelming common case for a protocol
// stage, so [Command] and [Event] build an [Emission] that holds its
// single payload inline, with no backing slice and no heap-allocated
// tagged union. [Dealias] exists for API fidelity with the composition
// algebra's description but is a no-op under this representation; see
// [Emission] for the Open Question this resolves.
//
// # External Interface
//
// [New] builds an [*Injector] from a root [Stage], a [*Context], and a
// [Sink] that receives terminal commands (exiting the bottom) and events
// (exiting the top). Callers drive the pipeline with
// [Injector.InjectCommand], [Injector.InjectEvent], and
// [Injector.Management].
//
// # Reference Stages
//
// Package stages/framer and stages/tick are the two reference consumers
// that pin down the stage contract; stages/deflate, stages/tlsshake, and
// stages/wsevents are additional illustrative consumers layered on top,
// not part of the core. None of logging, configuration, actor hosting,
// periodic-tick scheduling, or wire codecs live in this package: they are
// external collaborators the core plugs into via [Context].
package bipipe

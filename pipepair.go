// SPDX-License-Identifier: GPL-3.0-or-later

package bipipe

// PipePair is the instantiated, stateful runtime of a [Stage]. Its three
// methods may freely mutate state private to the stage that produced it,
// but must never mutate state owned by another stage; a PipePair is
// single-threaded by contract and must not retain references to input
// values beyond the call that received them.
//
// CA/EA are the "above" ports (command-in, event-out); CB/EB are the
// "below" ports (command-out, event-in). A PipePair's emissions carry
// CB as the DownCommand payload and EA as the UpEvent payload: a
// call arriving from one direction may answer with traffic in either
// direction.
type PipePair[CA, CB, EA, EB any] interface {
	// OnCommand transforms a command arriving from above.
	OnCommand(ctx *Context, cmd CA) (Emission[CB, EA], error)

	// OnEvent transforms an event arriving from below.
	OnEvent(ctx *Context, evt EB) (Emission[CB, EA], error)

	// OnManagement answers an out-of-band management message. A stage that
	// has nothing to say returns [Nothing] and a nil error; this method is
	// total, not partial.
	OnManagement(ctx *Context, msg Management) (Emission[CB, EA], error)
}

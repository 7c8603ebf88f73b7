// SPDX-License-Identifier: GPL-3.0-or-later

package bipipe

// Sink receives the terminal items leaving a pipeline: commands exiting
// the bottom and events exiting the top. Sink methods are invoked
// synchronously, in emission order, before the triggering Injector call
// returns.
type Sink[D, U any] interface {
	OnCommand(cmd D)
	OnCommandFailure(err error)
	OnEvent(evt U)
	OnEventFailure(err error)
}

// Injector is the external handle for feeding commands, events, and
// management messages into a built pipeline. It is built once by [New]
// and is not safe for concurrent use, matching the
// single-threaded contract of the [Context] it was built against.
type Injector[CA, CB, EA, EB any] struct {
	ctx  *Context
	root PipePair[CA, CB, EA, EB]
	sink Sink[CB, EA]
}

// New instantiates root against ctx exactly once and returns an [Injector]
// that dispatches root's terminal emissions to sink. It returns
// [ErrNilStage] if root is nil.
func New[CA, CB, EA, EB any](root Stage[CA, CB, EA, EB], ctx *Context, sink Sink[CB, EA]) (*Injector[CA, CB, EA, EB], error) {
	if root == nil {
		return nil, ErrNilStage
	}
	return &Injector[CA, CB, EA, EB]{
		ctx:  ctx,
		root: root.Apply(ctx),
		sink: sink,
	}, nil
}

// InjectCommand feeds cmd into the root stage's command pipeline. On
// success, terminal items are dispatched to the sink in emission order:
// UpEvent to [Sink.OnEvent], DownCommand to [Sink.OnCommand]. On failure,
// the error is delivered to [Sink.OnCommandFailure] and no items from this
// injection reach any sink.
func (inj *Injector[CA, CB, EA, EB]) InjectCommand(cmd CA) {
	inj.ctx.Metrics.incCommandIn()
	em, err := inj.root.OnCommand(inj.ctx, cmd)
	if err != nil {
		inj.ctx.Metrics.incFailure()
		inj.sink.OnCommandFailure(err)
		return
	}
	inj.dispatch(em)
}

// InjectEvent is the symmetric counterpart of [Injector.InjectCommand]:
// failures route to [Sink.OnEventFailure].
func (inj *Injector[CA, CB, EA, EB]) InjectEvent(evt EB) {
	inj.ctx.Metrics.incEventIn()
	em, err := inj.root.OnEvent(inj.ctx, evt)
	if err != nil {
		inj.ctx.Metrics.incFailure()
		inj.sink.OnEventFailure(err)
		return
	}
	inj.dispatch(em)
}

// Management invokes the root stage's management path. Unlike
// [Injector.InjectCommand]/[Injector.InjectEvent], an error here is not
// caught: it is returned directly to the caller instead of routed to a
// sink method.
func (inj *Injector[CA, CB, EA, EB]) Management(msg Management) error {
	inj.ctx.Metrics.incManagement()
	em, err := inj.root.OnManagement(inj.ctx, msg)
	if err != nil {
		return err
	}
	inj.dispatch(em)
	return nil
}

// dispatch delivers every item of em to the matching sink method, in
// order, recognizing the fast-path kinds so that a 1-item terminal
// emission never needs [Emission.Items] to materialize a slice.
func (inj *Injector[CA, CB, EA, EB]) dispatch(em Emission[CB, EA]) {
	switch em.Kind() {
	case KindEmpty:
		return
	case KindCommand:
		inj.ctx.Metrics.incCommandOut()
		inj.sink.OnCommand(em.cmd)
	case KindEvent:
		inj.ctx.Metrics.incEventOut()
		inj.sink.OnEvent(em.evt)
	default:
		for _, it := range em.many {
			switch it.Dir {
			case Down:
				inj.ctx.Metrics.incCommandOut()
				inj.sink.OnCommand(it.Cmd)
			case Up:
				inj.ctx.Metrics.incEventOut()
				inj.sink.OnEvent(it.Evt)
			}
		}
	}
}

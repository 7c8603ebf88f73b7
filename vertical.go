// SPDX-License-Identifier: GPL-3.0-or-later

package bipipe

// Vertical composes L : Stage[CA,CB,EA,EB] over R : Stage[CB,CBB,EB,EBB]
// into a single Stage[CA,CBB,EA,EBB]. L's downward output feeds R's
// command input; R's upward output feeds L's event input; the inner
// ports CB/EB become internal wiring, invisible at the composed boundary.
func Vertical[CA, CB, CBB, EA, EB, EBB any](
	l Stage[CA, CB, EA, EB],
	r Stage[CB, CBB, EB, EBB],
) Stage[CA, CBB, EA, EBB] {
	return &verticalStage[CA, CB, CBB, EA, EB, EBB]{l: l, r: r}
}

type verticalStage[CA, CB, CBB, EA, EB, EBB any] struct {
	l Stage[CA, CB, EA, EB]
	r Stage[CB, CBB, EB, EBB]
}

func (s *verticalStage[CA, CB, CBB, EA, EB, EBB]) Apply(ctx *Context) PipePair[CA, CBB, EA, EBB] {
	return &verticalPair[CA, CB, CBB, EA, EB, EBB]{
		l: s.l.Apply(ctx),
		r: s.r.Apply(ctx),
	}
}

// verticalPair is the reentrant dispatch core of vertical composition:
// the two child PipePairs and nothing else, no buffering between them.
type verticalPair[CA, CB, CBB, EA, EB, EBB any] struct {
	l PipePair[CA, CB, EA, EB]
	r PipePair[CB, CBB, EB, EBB]
}

// OnCommand implements the command path: compute L's emission, then run
// loopLeft over it.
func (p *verticalPair[CA, CB, CBB, EA, EB, EBB]) OnCommand(ctx *Context, a CA) (Emission[CBB, EA], error) {
	em, err := p.l.OnCommand(ctx, a)
	if err != nil {
		var zero Emission[CBB, EA]
		return zero, err
	}
	return p.loopLeft(ctx, em)
}

// OnEvent implements the event path, mirrored: compute R's emission, then
// run loopRight over it.
func (p *verticalPair[CA, CB, CBB, EA, EB, EBB]) OnEvent(ctx *Context, b EBB) (Emission[CBB, EA], error) {
	em, err := p.r.OnEvent(ctx, b)
	if err != nil {
		var zero Emission[CBB, EA]
		return zero, err
	}
	return p.loopRight(ctx, em)
}

// OnManagement fans the message out to both children: L's reply is routed
// through loopLeft, R's through loopRight, and the left result is
// concatenated before the right result. An error from either child aborts
// the fan-out without delivering the other side's output: no partial
// output delivery.
func (p *verticalPair[CA, CB, CBB, EA, EB, EBB]) OnManagement(ctx *Context, msg Management) (Emission[CBB, EA], error) {
	var zero Emission[CBB, EA]

	lem, err := p.l.OnManagement(ctx, msg)
	if err != nil {
		return zero, err
	}
	left, err := p.loopLeft(ctx, lem)
	if err != nil {
		return zero, err
	}

	rem, err := p.r.OnManagement(ctx, msg)
	if err != nil {
		return zero, err
	}
	right, err := p.loopRight(ctx, rem)
	if err != nil {
		return zero, err
	}

	return concat(Dealias(left), Dealias(right)), nil
}

// loopLeft processes an Emission produced (directly or via recursion) by
// L: DownCommand items re-enter R via loopRight; UpEvent items exit
// upward unchanged, without re-entering L. An UpEvent produced in the
// middle of a command traversal never re-enters L.
func (p *verticalPair[CA, CB, CBB, EA, EB, EBB]) loopLeft(ctx *Context, em Emission[CB, EA]) (Emission[CBB, EA], error) {
	switch em.Kind() {
	case KindEmpty:
		return Nothing[CBB, EA](), nil

	case KindCommand:
		sub, err := p.r.OnCommand(ctx, em.cmd)
		if err != nil {
			var zero Emission[CBB, EA]
			return zero, err
		}
		return p.loopRight(ctx, sub)

	case KindEvent:
		// Propagated upward unchanged and allocation-free.
		return Event[CBB, EA](em.evt), nil

	default:
		var out []Item[CBB, EA]
		for _, it := range em.many {
			switch it.Dir {
			case Down:
				sub, err := p.r.OnCommand(ctx, it.Cmd)
				if err != nil {
					var zero Emission[CBB, EA]
					return zero, err
				}
				routed, err := p.loopRight(ctx, sub)
				if err != nil {
					var zero Emission[CBB, EA]
					return zero, err
				}
				Dealias(routed).ForEach(func(ri Item[CBB, EA]) { out = append(out, ri) })
			case Up:
				out = append(out, UpEvent[CBB, EA](it.Evt))
			}
		}
		return Many(out...), nil
	}
}

// loopRight processes an Emission produced (directly or via recursion) by
// R: DownCommand items pass straight through, since nothing sits below R
// in this composed pair; UpEvent items re-enter L via OnEvent, which may
// in turn produce more downward traffic for R, so loopRight calls back
// into loopLeft to keep dispatching that traffic, reentering itself
// recursively as needed.
func (p *verticalPair[CA, CB, CBB, EA, EB, EBB]) loopRight(ctx *Context, em Emission[CBB, EB]) (Emission[CBB, EA], error) {
	switch em.Kind() {
	case KindEmpty:
		return Nothing[CBB, EA](), nil

	case KindCommand:
		return Command[CBB, EA](em.cmd), nil

	case KindEvent:
		sub, err := p.l.OnEvent(ctx, em.evt)
		if err != nil {
			var zero Emission[CBB, EA]
			return zero, err
		}
		return p.loopLeft(ctx, sub)

	default:
		var out []Item[CBB, EA]
		for _, it := range em.many {
			switch it.Dir {
			case Down:
				out = append(out, DownCommand[CBB, EA](it.Cmd))
			case Up:
				sub, err := p.l.OnEvent(ctx, it.Evt)
				if err != nil {
					var zero Emission[CBB, EA]
					return zero, err
				}
				routed, err := p.loopLeft(ctx, sub)
				if err != nil {
					var zero Emission[CBB, EA]
					return zero, err
				}
				Dealias(routed).ForEach(func(ri Item[CBB, EA]) { out = append(out, ri) })
			}
		}
		return Many(out...), nil
	}
}

// SPDX-License-Identifier: GPL-3.0-or-later

package bipipe

// Parallel composes two Stages sharing all four port types into one stage
// of the same type: the composed command path delegates entirely to the
// left stage, the composed event path entirely to the right stage.
// Management is applied to both and concatenated, left before right. No
// dispatch wiring exists between the two children: the event output of
// the left stage and the command output of the right stage are
// unreachable by construction.
func Parallel[C, E any](left, right Stage[C, C, E, E]) Stage[C, C, E, E] {
	return &parallelStage[C, E]{left: left, right: right}
}

type parallelStage[C, E any] struct {
	left, right Stage[C, C, E, E]
}

func (s *parallelStage[C, E]) Apply(ctx *Context) PipePair[C, C, E, E] {
	return &parallelPair[C, E]{
		left:  s.left.Apply(ctx),
		right: s.right.Apply(ctx),
	}
}

type parallelPair[C, E any] struct {
	left, right PipePair[C, C, E, E]
}

func (p *parallelPair[C, E]) OnCommand(ctx *Context, cmd C) (Emission[C, E], error) {
	return p.left.OnCommand(ctx, cmd)
}

func (p *parallelPair[C, E]) OnEvent(ctx *Context, evt E) (Emission[C, E], error) {
	return p.right.OnEvent(ctx, evt)
}

func (p *parallelPair[C, E]) OnManagement(ctx *Context, msg Management) (Emission[C, E], error) {
	var zero Emission[C, E]

	lem, err := p.left.OnManagement(ctx, msg)
	if err != nil {
		return zero, err
	}
	rem, err := p.right.OnManagement(ctx, msg)
	if err != nil {
		return zero, err
	}
	return concat(Dealias(lem), Dealias(rem)), nil
}

// SPDX-License-Identifier: GPL-3.0-or-later

package bipipe

// Stage is a factory that, given a [Context], produces exactly one
// [PipePair]. A Stage is polymorphic over four ports:
// CA (command-above), CB (command-below), EA (event-above), EB
// (event-below). The factory is the point at which stage-local state (a
// receive buffer, a handshake state machine, ...) is allocated; calling
// Apply twice against two different Contexts must produce two independent
// pipelines that share no mutable state.
type Stage[CA, CB, EA, EB any] interface {
	// Apply instantiates the stage against ctx. It is invoked exactly once
	// per pipeline instantiation, by [New] for a root stage or by a
	// composed stage's own Apply for a child stage.
	Apply(ctx *Context) PipePair[CA, CB, EA, EB]
}

// StageFunc adapts three callbacks into a [Stage], for stages that need no
// constructor-time configuration beyond closures. Any field left nil
// behaves as if it returned [Nothing] and a nil error.
type StageFunc[CA, CB, EA, EB any] struct {
	OnCommandFunc    func(ctx *Context, cmd CA) (Emission[CB, EA], error)
	OnEventFunc      func(ctx *Context, evt EB) (Emission[CB, EA], error)
	OnManagementFunc func(ctx *Context, msg Management) (Emission[CB, EA], error)
}

// Apply implements [Stage]. StageFunc's PipePair is itself, since it holds
// no per-Apply mutable state; stages that need isolated per-pipeline state
// must allocate that state inside Apply, not reuse a shared StageFunc.
func (s StageFunc[CA, CB, EA, EB]) Apply(*Context) PipePair[CA, CB, EA, EB] {
	return funcPipePair[CA, CB, EA, EB](s)
}

type funcPipePair[CA, CB, EA, EB any] StageFunc[CA, CB, EA, EB]

func (p funcPipePair[CA, CB, EA, EB]) OnCommand(ctx *Context, cmd CA) (Emission[CB, EA], error) {
	if p.OnCommandFunc == nil {
		return Nothing[CB, EA](), nil
	}
	return p.OnCommandFunc(ctx, cmd)
}

func (p funcPipePair[CA, CB, EA, EB]) OnEvent(ctx *Context, evt EB) (Emission[CB, EA], error) {
	if p.OnEventFunc == nil {
		return Nothing[CB, EA](), nil
	}
	return p.OnEventFunc(ctx, evt)
}

func (p funcPipePair[CA, CB, EA, EB]) OnManagement(ctx *Context, msg Management) (Emission[CB, EA], error) {
	if p.OnManagementFunc == nil {
		return Nothing[CB, EA](), nil
	}
	return p.OnManagementFunc(ctx, msg)
}

// Identity returns a [Stage] whose PipePair forwards commands and events
// unchanged using the allocation-free fast path.
func Identity[C, E any]() Stage[C, C, E, E] {
	return StageFunc[C, C, E, E]{
		OnCommandFunc: func(_ *Context, cmd C) (Emission[C, E], error) {
			return Command[C, E](cmd), nil
		},
		OnEventFunc: func(_ *Context, evt E) (Emission[C, E], error) {
			return Event[C, E](evt), nil
		},
	}
}

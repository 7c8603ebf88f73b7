// SPDX-License-Identifier: GPL-3.0-or-later

package bipipe

// Kind identifies which shape an [Emission] holds.
type Kind int

const (
	// KindEmpty is the empty emission: no items.
	KindEmpty Kind = iota
	// KindCommand is the allocation-free single-DownCommand emission.
	KindCommand
	// KindEvent is the allocation-free single-UpEvent emission.
	KindEvent
	// KindMany is a materialized, ordered list of items.
	KindMany
)

// Direction names the two variants an [Item] can hold: the core never
// uses generic "left/right" names for these in its public surface.
type Direction int

const (
	// Up names an UpEvent item, delivered toward the stage above.
	Up Direction = iota
	// Down names a DownCommand item, delivered toward the stage below.
	Down
)

// Item is one element of an [Emission]: either an UpEvent carrying an U, or
// a DownCommand carrying a D. Exactly one of the two fields is meaningful,
// selected by Dir.
type Item[D, U any] struct {
	Dir Direction
	Cmd D
	Evt U
}

// DownCommand builds an [Item] carrying a command bound for the stage below.
func DownCommand[D, U any](c D) Item[D, U] {
	return Item[D, U]{Dir: Down, Cmd: c}
}

// UpEvent builds an [Item] carrying an event bound for the stage above.
func UpEvent[D, U any](e U) Item[D, U] {
	return Item[D, U]{Dir: Up, Evt: e}
}

// Emission is the ordered sequence of items a stage callback returns per
// call. Its fast path avoids identity-compared sentinel slots entirely:
// [KindCommand] and [KindEvent] hold their single payload inline, so
// returning one item never allocates a backing slice or a tagged union
// on the heap.
//
// The zero value of Emission is [KindEmpty] and thus a valid, common return
// on its own — callers do not need [Nothing] merely to get an empty value,
// though Nothing reads more clearly at call sites.
type Emission[D, U any] struct {
	kind Kind
	cmd  D
	evt  U
	many []Item[D, U]
}

// Nothing returns the empty [Emission]: a stage declining to emit anything.
func Nothing[D, U any]() Emission[D, U] {
	return Emission[D, U]{kind: KindEmpty}
}

// Command returns the fast-path [Emission] for "exactly one DownCommand".
func Command[D, U any](c D) Emission[D, U] {
	return Emission[D, U]{kind: KindCommand, cmd: c}
}

// Event returns the fast-path [Emission] for "exactly one UpEvent".
func Event[D, U any](e U) Emission[D, U] {
	return Emission[D, U]{kind: KindEvent, evt: e}
}

// Many returns a materialized [Emission] holding items in order. Passing
// zero or one items is legal but [Nothing], [Command], and [Event] are the
// idiomatic spellings for those cases.
func Many[D, U any](items ...Item[D, U]) Emission[D, U] {
	if len(items) == 0 {
		return Nothing[D, U]()
	}
	return Emission[D, U]{kind: KindMany, many: items}
}

// Kind reports which shape the emission holds.
func (e Emission[D, U]) Kind() Kind {
	return e.kind
}

// IsEmpty reports whether the emission carries zero items.
func (e Emission[D, U]) IsEmpty() bool {
	return e.kind == KindEmpty
}

// Len reports how many items the emission carries, without materializing
// [KindCommand] or [KindEvent] into a slice.
func (e Emission[D, U]) Len() int {
	switch e.kind {
	case KindEmpty:
		return 0
	case KindCommand, KindEvent:
		return 1
	default:
		return len(e.many)
	}
}

// Dealias returns e unchanged. Under this representation a fast-path
// emission holds its payload inline and no slot is ever aliased, so there
// is nothing to materialize: Dealias is a documented no-op kept for API
// symmetry with composition call sites, and it does not convert
// [KindCommand] or [KindEvent] into [KindMany]. It is safe to call on any
// emission.
func Dealias[D, U any](e Emission[D, U]) Emission[D, U] {
	return e
}

// Items returns the emission's items in order. For [KindCommand] and
// [KindEvent] this allocates a one-element slice; prefer [Emission.ForEach]
// on hot paths that only need to iterate.
func (e Emission[D, U]) Items() []Item[D, U] {
	switch e.kind {
	case KindEmpty:
		return nil
	case KindCommand:
		return []Item[D, U]{DownCommand[D, U](e.cmd)}
	case KindEvent:
		return []Item[D, U]{UpEvent[D, U](e.evt)}
	default:
		return e.many
	}
}

// ForEach calls fn for every item in order, without allocating for the
// [KindCommand] and [KindEvent] cases.
func (e Emission[D, U]) ForEach(fn func(Item[D, U])) {
	switch e.kind {
	case KindEmpty:
		return
	case KindCommand:
		fn(DownCommand[D, U](e.cmd))
	case KindEvent:
		fn(UpEvent[D, U](e.evt))
	default:
		for _, it := range e.many {
			fn(it)
		}
	}
}

// concat appends b's items after a's items, producing a new [KindMany]
// emission unless one side is empty, in which case the other side is
// returned unchanged (preserving its fast path).
func concat[D, U any](a, b Emission[D, U]) Emission[D, U] {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	items := make([]Item[D, U], 0, a.Len()+b.Len())
	a.ForEach(func(it Item[D, U]) { items = append(items, it) })
	b.ForEach(func(it Item[D, U]) { items = append(items, it) })
	return Many(items...)
}

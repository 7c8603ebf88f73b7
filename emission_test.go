// SPDX-License-Identifier: GPL-3.0-or-later

package bipipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmissionFastPath(t *testing.T) {
	t.Run("Nothing is empty", func(t *testing.T) {
		em := Nothing[string, int]()
		assert.True(t, em.IsEmpty())
		assert.Equal(t, KindEmpty, em.Kind())
		assert.Equal(t, 0, em.Len())
		assert.Nil(t, em.Items())
	})

	t.Run("Command holds one item without Many", func(t *testing.T) {
		em := Command[string, int]("X")
		require.Equal(t, KindCommand, em.Kind())
		assert.Equal(t, 1, em.Len())
		items := em.Items()
		require.Len(t, items, 1)
		assert.Equal(t, Down, items[0].Dir)
		assert.Equal(t, "X", items[0].Cmd)
	})

	t.Run("Event holds one item without Many", func(t *testing.T) {
		em := Event[string, int](42)
		require.Equal(t, KindEvent, em.Kind())
		items := em.Items()
		require.Len(t, items, 1)
		assert.Equal(t, Up, items[0].Dir)
		assert.Equal(t, 42, items[0].Evt)
	})

	t.Run("Many with zero items is Nothing", func(t *testing.T) {
		em := Many[string, int]()
		assert.True(t, em.IsEmpty())
	})

	t.Run("Many preserves order", func(t *testing.T) {
		em := Many(
			DownCommand[string, int]("a"),
			UpEvent[string, int](1),
			DownCommand[string, int]("b"),
		)
		var got []string
		em.ForEach(func(it Item[string, int]) {
			if it.Dir == Down {
				got = append(got, it.Cmd)
			} else {
				got = append(got, "evt")
			}
		})
		assert.Equal(t, []string{"a", "evt", "b"}, got)
	})
}

func TestDealiasIsNoOp(t *testing.T) {
	// Fast-path equivalence (spec §8): replacing single_command/single_event
	// with an equivalent materialized Many must yield the same observations.
	fast := Command[string, int]("X")
	materialized := Many(DownCommand[string, int]("X"))

	assert.Equal(t, Dealias(fast).Items(), Dealias(materialized).Items())
}

func TestConcat(t *testing.T) {
	t.Run("empty left returns right unchanged", func(t *testing.T) {
		right := Command[string, int]("X")
		got := concat(Nothing[string, int](), right)
		assert.Equal(t, KindCommand, got.Kind())
	})

	t.Run("empty right returns left unchanged", func(t *testing.T) {
		left := Event[string, int](7)
		got := concat(left, Nothing[string, int]())
		assert.Equal(t, KindEvent, got.Kind())
	})

	t.Run("both non-empty concatenate in order", func(t *testing.T) {
		left := Command[string, int]("a")
		right := Event[string, int](1)
		got := concat(left, right)
		require.Equal(t, KindMany, got.Kind())
		items := got.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "a", items[0].Cmd)
		assert.Equal(t, 1, items[1].Evt)
	})
}

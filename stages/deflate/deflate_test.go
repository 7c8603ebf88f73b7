// SPDX-License-Identifier: GPL-3.0-or-later

package deflate

import (
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/bipipe"
)

func TestRoundTrip(t *testing.T) {
	ctx := bipipe.NewContext()
	enc := Stage(flate.BestSpeed).Apply(ctx)
	dec := Stage(flate.BestSpeed).Apply(ctx)

	payload := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly")
	em, err := enc.OnCommand(ctx, payload)
	require.NoError(t, err)
	require.Equal(t, bipipe.KindCommand, em.Kind())
	compressed := em.Items()[0].Cmd
	assert.Less(t, len(compressed), len(payload))

	em, err = dec.OnEvent(ctx, compressed)
	require.NoError(t, err)
	require.Equal(t, bipipe.KindEvent, em.Kind())
	assert.Equal(t, payload, em.Items()[0].Evt)
}

func TestInvalidLevelClampsToDefault(t *testing.T) {
	ctx := bipipe.NewContext()
	pp := Stage(1000).Apply(ctx)

	em, err := pp.OnCommand(ctx, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, bipipe.KindCommand, em.Kind())
}

func TestDecompressMalformedStreamFails(t *testing.T) {
	ctx := bipipe.NewContext()
	pp := Stage(flate.DefaultCompression).Apply(ctx)

	_, err := pp.OnEvent(ctx, []byte{0xFF, 0xFF, 0xFF, 0xFF})
	assert.Error(t, err)
}

func TestOnManagementDeclines(t *testing.T) {
	ctx := bipipe.NewContext()
	pp := Stage(flate.DefaultCompression).Apply(ctx)

	em, err := pp.OnManagement(ctx, "anything")
	require.NoError(t, err)
	assert.True(t, bipipe.Declines(em))
}

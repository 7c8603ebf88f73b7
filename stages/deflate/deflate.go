// SPDX-License-Identifier: GPL-3.0-or-later

// Package deflate implements a DEFLATE compression stage: a symmetric,
// byte-sequence stage that compresses outgoing commands and decompresses
// incoming events using github.com/klauspost/compress/flate. Like the
// length-prefix framer, it treats each call as one complete, independently
// decodable unit: commands are compressed payload-by-payload, and events
// are expected to carry one complete compressed stream each (typically
// because an upstream stage such as stages/framer already delimits
// messages on the wire).
package deflate

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/bassosimone/bipipe"
)

// Stage returns a [bipipe.Stage] that DEFLATE-compresses commands at level
// and inflates events. Levels outside flate's accepted range
// (flate.HuffmanOnly..flate.BestCompression) are clamped to
// flate.DefaultCompression, since a Stage factory cannot itself fail.
func Stage(level int) bipipe.Stage[[]byte, []byte, []byte, []byte] {
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		level = flate.DefaultCompression
	}
	return stage{level: level}
}

type stage struct {
	level int
}

func (s stage) Apply(*bipipe.Context) bipipe.PipePair[[]byte, []byte, []byte, []byte] {
	return &pipePair{level: s.level}
}

type pipePair struct {
	level int
}

var _ bipipe.PipePair[[]byte, []byte, []byte, []byte] = (*pipePair)(nil)

// OnCommand compresses payload. Unlike the framer's oversize write path,
// compression has no failure mode short of an invalid level, which Stage
// already rules out, so this never drops traffic.
func (p *pipePair) OnCommand(_ *bipipe.Context, payload []byte) (bipipe.Emission[[]byte, []byte], error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, p.level)
	if err != nil {
		return bipipe.Nothing[[]byte, []byte](), fmt.Errorf("deflate: compress: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return bipipe.Nothing[[]byte, []byte](), fmt.Errorf("deflate: compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return bipipe.Nothing[[]byte, []byte](), fmt.Errorf("deflate: compress: %w", err)
	}
	return bipipe.Command[[]byte, []byte](buf.Bytes()), nil
}

// OnEvent inflates chunk, a complete compressed stream. Inflation failure
// is fatal, matching the framer's read-path strictness: a malformed or
// truncated stream is a protocol error, not something to recover from
// silently.
func (p *pipePair) OnEvent(_ *bipipe.Context, chunk []byte) (bipipe.Emission[[]byte, []byte], error) {
	r := flate.NewReader(bytes.NewReader(chunk))
	defer r.Close()

	payload, err := io.ReadAll(r)
	if err != nil {
		return bipipe.Nothing[[]byte, []byte](), fmt.Errorf("deflate: inflate: %w", err)
	}
	return bipipe.Event[[]byte, []byte](payload), nil
}

// OnManagement declines every message: the stage has no out-of-band
// behavior.
func (p *pipePair) OnManagement(*bipipe.Context, bipipe.Management) (bipipe.Emission[[]byte, []byte], error) {
	return bipipe.Nothing[[]byte, []byte](), nil
}

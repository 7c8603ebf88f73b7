// SPDX-License-Identifier: GPL-3.0-or-later

// Package framer implements a length-prefix framer as a reference
// consumer of package bipipe: a symmetric, byte-sequence stage that
// prepends a 4-byte big-endian length to outgoing payloads and peels
// complete frames off an incoming byte stream.
package framer

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bassosimone/bipipe"
)

// ErrFrameTooLarge is returned by OnEvent when a frame's declared length
// exceeds Max. The same condition on the write path is a silent drop,
// not an error — read and write are deliberately asymmetric.
var ErrFrameTooLarge = errors.New("framer: frame exceeds maximum length")

// headerLen is the size, in bytes, of the big-endian length prefix. The
// prefix counts itself: a frame carrying n bytes of payload has a header
// value of n + headerLen.
const headerLen = 4

// Stage returns a [bipipe.Stage] for the length-prefix framer. Max bounds
// the total frame length (header included) that OnCommand will emit or
// OnEvent will accept.
func Stage(max uint32) bipipe.Stage[[]byte, []byte, []byte, []byte] {
	return stage{max: max}
}

type stage struct {
	max uint32
}

func (s stage) Apply(*bipipe.Context) bipipe.PipePair[[]byte, []byte, []byte, []byte] {
	return &pipePair{max: s.max}
}

// pipePair holds the per-pipeline receive buffer: state allocated once per
// [bipipe.Stage.Apply] call.
type pipePair struct {
	max uint32
	buf []byte
}

var _ bipipe.PipePair[[]byte, []byte, []byte, []byte] = (*pipePair)(nil)

// OnCommand frames payload for the wire. If the resulting frame would
// exceed Max, the command is silently dropped: write-side best-effort,
// deliberately asymmetric with the strict read side.
func (p *pipePair) OnCommand(ctx *bipipe.Context, payload []byte) (bipipe.Emission[[]byte, []byte], error) {
	total := uint32(len(payload)) + headerLen
	if total > p.max {
		ctx.Logger.Debug("framer: dropping oversize write", "len", total, "max", p.max)
		return bipipe.Nothing[[]byte, []byte](), nil
	}

	frame := make([]byte, headerLen, total)
	binary.BigEndian.PutUint32(frame, total)
	frame = append(frame, payload...)
	return bipipe.Command[[]byte, []byte](frame), nil
}

// OnEvent appends incoming bytes to the receive buffer, then repeatedly
// peels complete frames off the front of it, emitting each payload as an
// UpEvent in order. A declared frame length exceeding Max is fatal: the
// read side is strict where the write side is best-effort.
func (p *pipePair) OnEvent(ctx *bipipe.Context, chunk []byte) (bipipe.Emission[[]byte, []byte], error) {
	p.buf = append(p.buf, chunk...)

	var payloads [][]byte
	for {
		if len(p.buf) < headerLen {
			break
		}
		total := binary.BigEndian.Uint32(p.buf)
		if total > p.max {
			return bipipe.Nothing[[]byte, []byte](), fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, total, p.max)
		}
		if uint32(len(p.buf)) < total {
			break // incomplete frame, wait for more bytes
		}
		payload := make([]byte, total-headerLen)
		copy(payload, p.buf[headerLen:total])
		payloads = append(payloads, payload)
		p.buf = p.buf[total:]
	}

	switch len(payloads) {
	case 0:
		return bipipe.Nothing[[]byte, []byte](), nil
	case 1:
		return bipipe.Event[[]byte, []byte](payloads[0]), nil
	default:
		items := make([]bipipe.Item[[]byte, []byte], len(payloads))
		for i, pl := range payloads {
			items[i] = bipipe.UpEvent[[]byte, []byte](pl)
		}
		return bipipe.Many(items...), nil
	}
}

// OnManagement declines every message: the framer has no out-of-band
// behavior.
func (p *pipePair) OnManagement(*bipipe.Context, bipipe.Management) (bipipe.Emission[[]byte, []byte], error) {
	return bipipe.Nothing[[]byte, []byte](), nil
}

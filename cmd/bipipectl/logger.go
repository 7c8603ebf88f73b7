// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"github.com/rs/zerolog"

	"github.com/bassosimone/bipipe"
	"github.com/bassosimone/bipipe/transport"
)

// zlogAdapter implements both [bipipe.SLogger] and [transport.SLogger] on
// top of a [zerolog.Logger], so the core and the dial chain share one
// logging backend and one set of CLI flags controlling its verbosity.
type zlogAdapter struct {
	logger zerolog.Logger
}

var (
	_ bipipe.SLogger    = zlogAdapter{}
	_ transport.SLogger = zlogAdapter{}
)

func (a zlogAdapter) Debug(msg string, args ...any) { a.event(a.logger.Debug(), args).Msg(msg) }
func (a zlogAdapter) Info(msg string, args ...any)  { a.event(a.logger.Info(), args).Msg(msg) }
func (a zlogAdapter) Error(msg string, args ...any) { a.event(a.logger.Error(), args).Msg(msg) }

// event attaches args, interpreted as alternating key/value pairs following
// slog's convention, to ev.
func (a zlogAdapter) event(ev *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, args[i+1])
	}
	return ev
}

// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"net"
	"os"

	"github.com/fatih/color"
)

// consoleSink is the terminal [bipipe.Sink] for the built pipeline: outgoing
// wire bytes are written to conn, incoming decoded payloads are printed to
// stdout, and failures on either side are reported to stderr in red.
type consoleSink struct {
	conn net.Conn
}

func (s *consoleSink) OnCommand(cmd []byte) {
	if _, err := s.conn.Write(cmd); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

func (s *consoleSink) OnCommandFailure(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "command failed: %v\n", err)
}

func (s *consoleSink) OnEvent(evt []byte) {
	color.New(color.FgGreen).Fprintf(os.Stdout, "%s\n", string(evt))
}

func (s *consoleSink) OnEventFailure(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "event failed: %v\n", err)
}

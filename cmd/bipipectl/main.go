// SPDX-License-Identifier: GPL-3.0-or-later

// Command bipipectl is a demo client that dials a TCP endpoint, optionally
// TLS-handshakes and DEFLATE-compresses traffic, frames it with the
// length-prefix framer, and drives the resulting pipeline from stdin/stdout
// while tailing events over a websocket and exposing Prometheus counters.
// It exists to give every stage and the transport dial chain a concrete,
// runnable caller; it is not part of the bipipe module's public surface.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

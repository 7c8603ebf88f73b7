// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// config holds every bipipectl knob, loaded from CLI flags via koanf's
// posflag provider: pflag owns parsing and usage text, koanf owns the
// merged, typed view of the result.
type config struct {
	Addr          string `koanf:"addr"`
	TLS           bool   `koanf:"tls"`
	Insecure      bool   `koanf:"insecure"`
	Deflate       bool   `koanf:"deflate"`
	MaxFrame      int    `koanf:"max-frame"`
	TickInterval  int    `koanf:"tick-seconds"`
	WSListen      string `koanf:"ws-listen"`
	MetricsListen string `koanf:"metrics-listen"`
	LogLevel      string `koanf:"log-level"`
}

func newFlagSet() *pflag.FlagSet {
	f := pflag.NewFlagSet("bipipectl", pflag.ContinueOnError)
	f.String("addr", "", "host:port to dial (required)")
	f.Bool("tls", false, "TLS-handshake the connection before framing traffic")
	f.Bool("insecure", false, "skip TLS certificate verification")
	f.Bool("deflate", false, "DEFLATE-compress framed payloads")
	f.Int("max-frame", 1<<20, "maximum frame length in bytes")
	f.Int("tick-seconds", 0, "heartbeat interval in seconds, 0 disables it")
	f.String("ws-listen", "", "address to serve a tailing websocket on, empty disables it")
	f.String("metrics-listen", "", "address to serve Prometheus /metrics on, empty disables it")
	f.String("log-level", "info", "log level (debug/info/warn/error/disabled)")
	return f
}

func loadConfig(f *pflag.FlagSet) (*config, error) {
	k := koanf.New(".")
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, err
	}
	cfg := &config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SPDX-License-Identifier: GPL-3.0-or-later

package bipipe

import "github.com/VictoriaMetrics/metrics"

// Metrics wraps a [*metrics.Set] with the handful of counters the core
// itself is willing to maintain on a pipeline's behalf. It is optional:
// every method is nil-safe, so a [Context] built without [WithMetrics]
// pays no cost and requires no special-casing in callers.
type Metrics struct {
	set            *metrics.Set
	commandsIn     *metrics.Counter
	eventsIn       *metrics.Counter
	commandsOut    *metrics.Counter
	eventsOut      *metrics.Counter
	failures       *metrics.Counter
	managementFans *metrics.Counter
}

// NewMetrics creates a [*Metrics] backed by a fresh [*metrics.Set]
// registered under the given name prefix, in the shape
// bgpipe's stages register their own VictoriaMetrics counters.
func NewMetrics(namePrefix string) *Metrics {
	set := metrics.NewSet()
	m := &Metrics{
		set:            set,
		commandsIn:     set.NewCounter(namePrefix + `_commands_in_total`),
		eventsIn:       set.NewCounter(namePrefix + `_events_in_total`),
		commandsOut:    set.NewCounter(namePrefix + `_commands_out_total`),
		eventsOut:      set.NewCounter(namePrefix + `_events_out_total`),
		failures:       set.NewCounter(namePrefix + `_failures_total`),
		managementFans: set.NewCounter(namePrefix + `_management_total`),
	}
	metrics.RegisterSet(set)
	return m
}

// Set returns the underlying [*metrics.Set] so a caller (see
// cmd/bipipectl) can expose it over an HTTP /metrics endpoint via
// [metrics.Set.WritePrometheus]. Returns nil if m is nil.
func (m *Metrics) Set() *metrics.Set {
	if m == nil {
		return nil
	}
	return m.set
}

func (m *Metrics) incCommandIn()    { if m != nil { m.commandsIn.Inc() } }
func (m *Metrics) incEventIn()      { if m != nil { m.eventsIn.Inc() } }
func (m *Metrics) incCommandOut()   { if m != nil { m.commandsOut.Inc() } }
func (m *Metrics) incEventOut()     { if m != nil { m.eventsOut.Inc() } }
func (m *Metrics) incFailure()      { if m != nil { m.failures.Inc() } }
func (m *Metrics) incManagement()   { if m != nil { m.managementFans.Inc() } }

// SPDX-License-Identifier: GPL-3.0-or-later

package bipipe

import (
	"time"

	"github.com/google/uuid"
)

// SLogger abstracts structured logging for stages. It is satisfied by
// [*slog.Logger], so callers may pass one directly; the abstraction exists
// so stages can be unit tested without wiring a real logger.
type SLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// DefaultSLogger returns the no-op [SLogger] used when a [Context] is built
// without an explicit logger. Following library convention, the core never
// writes to stdout/stderr unless a caller opts in.
func DefaultSLogger() SLogger {
	return discardSLogger{}
}

type discardSLogger struct{}

var _ SLogger = discardSLogger{}

func (discardSLogger) Debug(string, ...any) {}
func (discardSLogger) Info(string, ...any)  {}
func (discardSLogger) Error(string, ...any) {}

// Scheduler is the capability a [Context] offers to stages (such as the
// tick stage in package stages/tick) that need to re-deliver a message
// after a delay. It is the Context's sole concession to time: the core
// itself never schedules anything.
type Scheduler interface {
	// Schedule arranges for fn to run after d elapses and returns a cancel
	// function; calling cancel before fn has run prevents it from running.
	Schedule(d time.Duration, fn func()) (cancel func())
}

// NoScheduler is a [Scheduler] that never fires. It is the zero-value
// default so that building a [Context] without timer-based stages never
// panics; stages requiring real scheduling must be given one explicitly.
type NoScheduler struct{}

func (NoScheduler) Schedule(time.Duration, func()) (cancel func()) {
	return func() {}
}

// Context is the per-pipeline mutable scratch and capability bag: created
// once per pipeline instance, mutated only by the single logical goroutine
// driving injections, and destroyed when the pipeline handle is released.
// Sharing one Context across pipelines, or across goroutines without
// external serialization, is a usage error the core does not detect.
//
// [Emission] itself is a small tagged sum, so Context carries no
// CmdSlot/EvtSlot of its own. What remains is the set of capabilities
// stages are allowed to depend on: a struct of fields with sensible
// defaults, built by a constructor, freely readable by stage code handed
// the pointer.
type Context struct {
	// Logger is the ambient [SLogger] every stage may use. Defaults to
	// [DefaultSLogger].
	Logger SLogger

	// Scheduler is the timer capability required by stages like
	// stages/tick. Defaults to [NoScheduler].
	Scheduler Scheduler

	// Metrics is an optional counters sink; nil is valid and every method
	// on it is safe to call on a nil receiver (see metrics.go).
	Metrics *Metrics

	// Now returns the current time. Defaults to [time.Now]; tests override
	// it for determinism.
	Now func() time.Time

	// SpanID is a per-pipeline correlation id (a UUIDv7 string) generated
	// at construction time and available to stage code. The core and the
	// stages in this module do not add it to their log lines.
	SpanID string
}

// ContextOption configures a [Context] built by [NewContext].
type ContextOption func(*Context)

// WithLogger overrides the [Context]'s [SLogger].
func WithLogger(l SLogger) ContextOption {
	return func(c *Context) { c.Logger = l }
}

// WithScheduler overrides the [Context]'s [Scheduler].
func WithScheduler(s Scheduler) ContextOption {
	return func(c *Context) { c.Scheduler = s }
}

// WithMetrics overrides the [Context]'s [*Metrics].
func WithMetrics(m *Metrics) ContextOption {
	return func(c *Context) { c.Metrics = m }
}

// WithNow overrides the [Context]'s clock, for deterministic tests.
func WithNow(now func() time.Time) ContextOption {
	return func(c *Context) { c.Now = now }
}

// NewContext builds a [Context] with sensible defaults: every field is set
// to a safe default, and options override individual fields.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		Logger:    DefaultSLogger(),
		Scheduler: NoScheduler{},
		Metrics:   nil,
		Now:       time.Now,
		SpanID:    uuid.Must(uuid.NewV7()).String(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

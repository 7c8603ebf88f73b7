// SPDX-License-Identifier: GPL-3.0-or-later

package main

import "time"

// realScheduler implements [bipipe.Scheduler] on top of [time.AfterFunc].
// The core ships no concrete scheduler, keeping scheduling external to the
// dispatch engine; a real pipeline needs one to drive stages/tick.
type realScheduler struct{}

func (realScheduler) Schedule(d time.Duration, fn func()) (cancel func()) {
	timer := time.AfterFunc(d, fn)
	return func() { timer.Stop() }
}

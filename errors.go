// SPDX-License-Identifier: GPL-3.0-or-later

package bipipe

import "errors"

var (
	// ErrNilStage is returned by [New] when given a nil root stage.
	ErrNilStage = errors.New("bipipe: nil root stage")

	// ErrAlreadyApplied is returned if a [Stage] implementation's Apply is
	// called a second time against the same receiver in a way that would
	// alias state between two pipelines. The core itself never triggers
	// this; it is made available for stage authors who want to guard
	// against that misuse.
	ErrAlreadyApplied = errors.New("bipipe: stage already applied to a pipeline")
)

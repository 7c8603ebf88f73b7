// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import "github.com/bassosimone/errclass"

// ErrClassifier classifies errors into categorical strings for analysis.
//
// Implementations map errors to short, descriptive labels (e.g., "ETIMEDOUT",
// "ECONNRESET") that facilitate systematic analysis of network measurement results.
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
//
// This allows using simple functions as classifiers:
//
//	op.ErrClassifier = ErrClassifierFunc(errclass.New)
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// DefaultErrClassifier classifies dial, handshake, and I/O errors using
// [errclass.New], so log lines and metrics carry a stable, platform-
// independent label (e.g. "ETIMEDOUT", "ECONNREFUSED") instead of a raw
// error string that differs across kernels.
var DefaultErrClassifier = ErrClassifierFunc(errclass.New)

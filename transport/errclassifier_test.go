// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/bassosimone/errclass"
	"github.com/stretchr/testify/assert"
)

// TestDefaultErrClassifier pins the three outcomes the dial chain's logging
// and metrics actually depend on: a nil error classifies as empty, a
// recognized error gets errclass's stable label, and anything else falls
// back to EGENERIC rather than leaking a raw error string.
func TestDefaultErrClassifier(t *testing.T) {
	assert.Equal(t, "", DefaultErrClassifier.Classify(nil))
	assert.Equal(t, errclass.ETIMEDOUT, DefaultErrClassifier.Classify(context.DeadlineExceeded))
	assert.Equal(t, errclass.EGENERIC, DefaultErrClassifier.Classify(errors.New("boom")))
}

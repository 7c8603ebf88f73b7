// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"context"
	"testing"
	"time"

	"github.com/bassosimone/netstub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCancelWatchFuncClosesOnCancel checks the behavior bipipectl's dial
// chain relies on: the end of the context (its timeout, in the real CLI)
// closes the underlying connection without the caller having to watch
// the context itself.
func TestCancelWatchFuncClosesOnCancel(t *testing.T) {
	fn := NewCancelWatchFunc()

	done := make(chan bool, 1)
	mockConn := &netstub.FuncConn{
		CloseFunc: func() error {
			done <- true
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	wrapped, err := fn.Call(ctx, mockConn)
	require.NoError(t, err)
	require.NotNil(t, wrapped)

	select {
	case <-done:
		t.Fatal("connection should not be closed before cancellation")
	default:
	}

	cancel()

	assert.Eventually(t, func() bool { return <-done }, time.Second, 10*time.Millisecond)
}

// TestCancelWatchFuncCloseUnregistersWatcher checks that closing the
// wrapper directly (the normal shutdown path, not cancellation) doesn't
// leave a dangling watcher that double-closes the connection once the
// context later ends.
func TestCancelWatchFuncCloseUnregistersWatcher(t *testing.T) {
	fn := NewCancelWatchFunc()

	closeCount := 0
	mockConn := &netstub.FuncConn{
		CloseFunc: func() error {
			closeCount++
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := fn.Call(ctx, mockConn)
	require.NoError(t, err)
	require.NoError(t, result.Close())
	assert.Equal(t, 1, closeCount)

	cancel()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, closeCount)
}

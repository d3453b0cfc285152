// Package testutil holds polling helpers for tests that wait on state owned
// by other goroutines, such as worker pools draining or counters settling.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"
)

const (
	// DefaultTimeout bounds how long tests wait for asynchronous state.
	DefaultTimeout = 5 * time.Second
	// DefaultInterval is the polling period used alongside DefaultTimeout.
	DefaultInterval = time.Millisecond
)

// Poll checks condition every interval until it holds, timeout elapses or
// ctx is done.
func Poll(ctx context.Context, condition func() bool, timeout time.Duration, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if condition() {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("timeout waiting for condition (threshold: %v)", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitForState polls getter until predicate accepts its value, which is
// returned. On timeout or cancellation the zero value is returned with the
// error.
func WaitForState[T any](ctx context.Context, getter func() T, predicate func(T) bool, timeout time.Duration, interval time.Duration) (T, error) {
	var state T
	err := Poll(ctx, func() bool {
		state = getter()
		return predicate(state)
	}, timeout, interval)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("waiting for %T: %w", zero, err)
	}
	return state, nil
}

// RequireEventually fails the test unless condition holds within
// DefaultTimeout.
func RequireEventually(t testing.TB, condition func() bool, msg string) {
	t.Helper()
	if err := Poll(context.Background(), condition, DefaultTimeout, DefaultInterval); err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// RequireState is RequireEventually for WaitForState.
func RequireState[T any](t testing.TB, getter func() T, predicate func(T) bool, msg string) T {
	t.Helper()
	state, err := WaitForState(context.Background(), getter, predicate, DefaultTimeout, DefaultInterval)
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
	return state
}

package jobs

import (
	"context"
	"runtime"
	"sync/atomic"
)

// noCopy may be embedded into structs which must not be copied after first
// use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Handle receives the result of one submitted task.
//
// The result is written exactly once. Readers that observe HasResult
// returning true always see the complete result.
type Handle[R any] struct {
	noCopy  noCopy
	result  R
	err     error
	written atomic.Bool
	ready   atomic.Bool
	// help makes forward progress on behalf of a waiter, normally by running
	// one queued task on the waiting goroutine.
	help func()
}

func newHandle[R any](help func()) *Handle[R] {
	if help == nil {
		help = runtime.Gosched
	}
	return &Handle[R]{help: help}
}

// HasResult reports whether the task has finished. Once true it stays true.
func (h *Handle[R]) HasResult() bool {
	return h.ready.Load()
}

// Wait blocks until the task has finished and returns its result. While
// waiting the calling goroutine runs other queued tasks.
func (h *Handle[R]) Wait() (R, error) {
	for !h.ready.Load() {
		h.help()
	}
	return h.result, h.err
}

// WaitContext is Wait with cancellation. The task itself keeps running when
// ctx is done; only the wait is abandoned.
func (h *Handle[R]) WaitContext(ctx context.Context) (R, error) {
	for !h.ready.Load() {
		if err := ctx.Err(); err != nil {
			var zero R
			return zero, err
		}
		h.help()
	}
	return h.result, h.err
}

// set publishes the result. A second call is a broken invariant and panics.
func (h *Handle[R]) set(result R, err error) {
	if !h.written.CompareAndSwap(false, true) {
		panic("jobs: handle result written twice")
	}
	h.result = result
	h.err = err
	h.ready.Store(true)
}

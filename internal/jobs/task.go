package jobs

import (
	"runtime/debug"
	"weak"
)

// task is a unit of work with its result type erased.
type task interface {
	// run invokes the body exactly once and delivers the outcome. delivered
	// is false when the submitter had already dropped the handle.
	run() (delivered bool, panicked *PanicError)
}

type funcTask[R any] struct {
	fn func() (R, error)
	// The submitter owns the handle. A discarded handle is collected and
	// its result dropped.
	handle weak.Pointer[Handle[R]]
}

func newFuncTask[R any](h *Handle[R], fn func() (R, error)) *funcTask[R] {
	return &funcTask[R]{fn: fn, handle: weak.Make(h)}
}

func (t *funcTask[R]) run() (delivered bool, panicked *PanicError) {
	result, err := t.call()
	if pe, ok := err.(*PanicError); ok {
		panicked = pe
	}
	h := t.handle.Value()
	if h == nil {
		return false, panicked
	}
	h.set(result, err)
	return true, panicked
}

func (t *funcTask[R]) call() (result R, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return t.fn()
}

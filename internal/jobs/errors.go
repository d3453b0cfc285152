package jobs

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskPanicked matches the error stored in a handle whose task body
	// panicked. The concrete error is a *PanicError.
	ErrTaskPanicked = errors.New("jobs: task panicked")

	// ErrManagerClosed is stored in handles submitted after Shutdown.
	ErrManagerClosed = errors.New("jobs: manager closed")
)

// PanicError carries a recovered task panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("jobs: task panicked: %v", e.Value)
}

func (e *PanicError) Is(target error) bool {
	return target == ErrTaskPanicked
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

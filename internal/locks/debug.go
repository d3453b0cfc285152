package locks

import (
	"fmt"
	"sync/atomic"
)

var _ Locker = (*DebugLock)(nil)

// DebugLock marks a region that is expected to be entered by one goroutine at
// a time without any real exclusion. Contention is a bug and panics.
type DebugLock struct {
	noCopy noCopy
	label
	held atomic.Bool
}

// NewDebugLock returns a DebugLock with a diagnostic name.
func NewDebugLock(name string) *DebugLock {
	l := new(DebugLock)
	l.SetName(name)
	return l
}

// TryAcquire always returns true, or panics if the lock is already held.
func (l *DebugLock) TryAcquire() bool {
	if !l.held.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("locks: %s entered concurrently", l))
	}
	return true
}

func (l *DebugLock) Acquire() {
	l.TryAcquire()
}

func (l *DebugLock) Release() {
	if !l.held.CompareAndSwap(true, false) {
		panic(fmt.Sprintf("locks: %s released while not held", l))
	}
}

func (l *DebugLock) String() string {
	return describe("DebugLock", l, l.Name())
}

package locks

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

var _ Locker = (*SpinLock)(nil)

// SpinLock is a test-and-set lock over a single atomic flag. It is not
// reentrant: acquiring it twice from the same goroutine deadlocks.
//
// The zero value is an unlocked, unnamed lock.
type SpinLock struct {
	noCopy noCopy
	label
	locked atomic.Bool
	_      cpu.CacheLinePad
}

// NewSpinLock returns an unlocked SpinLock with a diagnostic name.
func NewSpinLock(name string) *SpinLock {
	l := new(SpinLock)
	l.SetName(name)
	return l
}

func (l *SpinLock) TryAcquire() bool {
	return l.locked.CompareAndSwap(false, true)
}

func (l *SpinLock) Acquire() {
	for !l.TryAcquire() {
		runtime.Gosched()
	}
}

func (l *SpinLock) Release() {
	l.locked.Store(false)
}

// Locked reports whether the lock is currently held by anyone.
func (l *SpinLock) Locked() bool {
	return l.locked.Load()
}

func (l *SpinLock) String() string {
	return describe("SpinLock", l, l.Name())
}

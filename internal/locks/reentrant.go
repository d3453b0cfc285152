package locks

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/joeycumines/goapjobs/internal/goroutineid"
)

var _ Locker = (*ReentrantLock)(nil)

// ReentrantLock may be acquired repeatedly by the goroutine that holds it.
// Each Acquire or successful TryAcquire must be matched by one Release; the
// lock is only given up when the count returns to zero.
//
// Ownership is tracked per goroutine, so the lock must be released on the
// goroutine that acquired it.
type ReentrantLock struct {
	noCopy noCopy
	label
	owner atomic.Int64
	count atomic.Int32
}

// NewReentrantLock returns an unlocked ReentrantLock with a diagnostic name.
func NewReentrantLock(name string) *ReentrantLock {
	l := new(ReentrantLock)
	l.SetName(name)
	return l
}

func (l *ReentrantLock) TryAcquire() bool {
	id := goroutineid.Get()
	if l.count.CompareAndSwap(0, 1) {
		l.owner.Store(id)
		return true
	}
	if l.owner.Load() == id {
		l.count.Add(1)
		return true
	}
	return false
}

func (l *ReentrantLock) Acquire() {
	for !l.TryAcquire() {
		runtime.Gosched()
	}
}

// Release panics if the calling goroutine does not hold the lock.
func (l *ReentrantLock) Release() {
	id := goroutineid.Get()
	count := l.count.Load()
	if count <= 0 || l.owner.Load() != id {
		panic(fmt.Sprintf("locks: %s released by goroutine %d which does not hold it", l, id))
	}
	if count > 1 {
		l.count.Add(-1)
		return
	}
	l.owner.Store(0)
	l.count.Store(0)
}

// Depth returns the current recursion count, zero when unlocked.
func (l *ReentrantLock) Depth() int {
	return int(l.count.Load())
}

// Owner returns the goroutine id holding the lock, or 0.
func (l *ReentrantLock) Owner() int64 {
	if l.count.Load() == 0 {
		return 0
	}
	return l.owner.Load()
}

func (l *ReentrantLock) String() string {
	return describe("ReentrantLock", l, l.Name())
}

// Package locks provides the small mutual-exclusion primitives used by the
// task engine: a spin lock, a goroutine-reentrant lock and a debug lock that
// asserts it is never contended.
//
// All locks share the Locker contract. None of them is fair, and none may be
// copied after first use; every lock embeds a noCopy marker so that go vet's
// copylocks check reports accidental copies.
package locks

import (
	"fmt"
)

// Locker is the acquire/release contract shared by every lock in this package.
type Locker interface {
	// TryAcquire attempts to take the lock without blocking, reporting
	// whether it succeeded.
	TryAcquire() bool
	// Acquire blocks until the lock is held by the caller.
	Acquire()
	// Release gives the lock up.
	Release()
}

// noCopy may be embedded into structs which must not be copied after first
// use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

const unnamed = "Unnamed"

// label is the diagnostic name shared by all lock kinds.
type label struct {
	name string
}

func (l *label) SetName(name string) { l.name = name }

func (l *label) Name() string {
	if l.name == "" {
		return unnamed
	}
	return l.name
}

func describe(kind string, lock any, name string) string {
	return fmt.Sprintf("%s[%p] %s", kind, lock, name)
}

// Guard acquires l and returns the function releasing it, for use with defer:
//
//	defer locks.Guard(&mu)()
func Guard(l Locker) (release func()) {
	l.Acquire()
	return l.Release
}

// TryGuard is the non-blocking form of Guard. When ok is false the lock was
// not taken and release is a no-op.
func TryGuard(l Locker) (release func(), ok bool) {
	if !l.TryAcquire() {
		return func() {}, false
	}
	return l.Release, true
}

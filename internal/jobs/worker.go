package jobs

import (
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/joeycumines/goapjobs/internal/goroutineid"
)

// worker is one pool goroutine. It runs the task it was spawned with, then
// keeps pulling queued tasks, parking on assigned when the queues are empty.
type worker struct {
	m *Manager
	// assigned has room for exactly one task. The manager only sends to a
	// worker it has just removed from the free list, so sends never block.
	// A nil task wakes the worker without giving it work.
	assigned chan task
	stopping atomic.Bool
	done     chan struct{}
	id       atomic.Int64
}

func newWorker(m *Manager) *worker {
	return &worker{
		m:        m,
		assigned: make(chan task, 1),
		done:     make(chan struct{}),
	}
}

// Name identifies the worker in diagnostics as worker-<goroutine id>.
func (w *worker) Name() string {
	id := w.id.Load()
	if id == 0 {
		return "worker-pending"
	}
	return "worker-" + strconv.FormatInt(id, 10)
}

func (w *worker) loop(first task) {
	if w.m.cfg.LockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	w.id.Store(goroutineid.Get())
	defer close(w.done)

	log := w.m.logger.With("worker", w.Name())
	log.Debug("worker started")
	defer log.Debug("worker stopped")

	w.m.execute(first, false)

	for !w.stopping.Load() {
		if t := w.m.nextTask(); t != nil {
			w.m.execute(t, false)
			continue
		}
		if !w.m.addFreeWorker(w) {
			runtime.Gosched()
			continue
		}
		if t := <-w.assigned; t != nil {
			w.m.execute(t, false)
		}
	}
}

// markStopped asks the loop to exit after its current task.
func (w *worker) markStopped() {
	w.stopping.Store(true)
}

// waitForStop reports whether the worker exited within timeout. A
// non-positive timeout waits indefinitely.
func (w *worker) waitForStop(timeout time.Duration) bool {
	if timeout <= 0 {
		<-w.done
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-w.done:
		return true
	case <-timer.C:
		return false
	}
}

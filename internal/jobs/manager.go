package jobs

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/cpu"

	"github.com/joeycumines/goapjobs/internal/locks"
)

// DefaultStopTimeout bounds how long Shutdown waits for each worker.
const DefaultStopTimeout = 5 * time.Second

// Config configures a Manager.
type Config struct {
	// MaxWorkers caps the pool. Zero means DefaultMaxWorkers().
	MaxWorkers int
	// StopTimeout bounds the per-worker wait in Shutdown. Zero or less
	// waits indefinitely.
	StopTimeout time.Duration
	// LockOSThread pins every worker goroutine to its own OS thread.
	LockOSThread bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultMaxWorkers is the number of hardware threads, or 4 if that cannot
// be determined.
func DefaultMaxWorkers() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 4
}

// DefaultConfig returns the configuration used by Default.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:  DefaultMaxWorkers(),
		StopTimeout: DefaultStopTimeout,
	}
}

type bucket struct {
	lock  locks.SpinLock
	tasks []task
	_     cpu.CacheLinePad
}

// pop removes the newest task. Callers hold b.lock.
func (b *bucket) pop() task {
	n := len(b.tasks)
	if n == 0 {
		return nil
	}
	t := b.tasks[n-1]
	b.tasks[n-1] = nil
	b.tasks = b.tasks[:n-1]
	return t
}

// Manager owns a worker pool and the priority queues feeding it.
//
// Lock order is poolLock before any bucket lock.
type Manager struct {
	noCopy noCopy
	cfg    Config
	logger *slog.Logger

	buckets [numPriorities]bucket
	// pending counts queued tasks across all buckets.
	pending atomic.Int64

	// poolLock guards workers, free and closed transitions.
	poolLock locks.SpinLock
	workers  []*worker
	free     []*worker
	closed   atomic.Bool

	counters counters
}

type counters struct {
	submitted atomic.Uint64
	direct    atomic.Uint64
	spawned   atomic.Uint64
	queued    atomic.Uint64
	executed  atomic.Uint64
	helped    atomic.Uint64
	panics    atomic.Uint64
	dropped   atomic.Uint64
}

// New returns a Manager with no workers. Workers are spawned on demand.
func New(cfg Config) *Manager {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	m := &Manager{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "jobs"),
	}
	m.poolLock.SetName("jobs.pool")
	for _, p := range Priorities() {
		m.buckets[p.index()].lock.SetName("jobs.bucket." + p.String())
	}
	return m
}

var defaultManager = sync.OnceValue(func() *Manager {
	return New(DefaultConfig())
})

// Default returns a lazily created process-wide Manager. It is never shut
// down; code that needs a lifecycle should construct its own with New.
func Default() *Manager {
	return defaultManager()
}

// MaxWorkers returns the pool limit in effect.
func (m *Manager) MaxWorkers() int {
	return m.cfg.MaxWorkers
}

// submit hands t to an idle worker, spawns a worker for it, or queues it,
// in that order of preference. It reports false once the manager is closed.
func (m *Manager) submit(p Priority, t task) bool {
	m.counters.submitted.Add(1)

	defer locks.Guard(&m.poolLock)()

	if m.closed.Load() {
		return false
	}

	if n := len(m.free); n > 0 {
		w := m.free[n-1]
		m.free[n-1] = nil
		m.free = m.free[:n-1]
		w.assigned <- t
		m.counters.direct.Add(1)
		return true
	}

	if len(m.workers) < m.cfg.MaxWorkers {
		w := newWorker(m)
		m.workers = append(m.workers, w)
		m.counters.spawned.Add(1)
		go w.loop(t)
		return true
	}

	// Pushing under poolLock means a worker cannot register as free between
	// finding the queues empty and this task landing in one.
	b := &m.buckets[p.index()]
	b.lock.Acquire()
	b.tasks = append(b.tasks, t)
	m.pending.Add(1)
	b.lock.Release()
	m.counters.queued.Add(1)
	return true
}

// nextTask pops the newest task from the highest priority bucket it can lock
// without blocking. Contended buckets are skipped.
func (m *Manager) nextTask() task {
	for i := range m.buckets {
		b := &m.buckets[i]
		if !b.lock.TryAcquire() {
			continue
		}
		t := b.pop()
		if t != nil {
			m.pending.Add(-1)
		}
		b.lock.Release()
		if t != nil {
			return t
		}
	}
	return nil
}

// addFreeWorker registers w as idle. It never blocks: when the pool lock is
// contended, the manager is stopping w, or work is still queued, it reports
// false and the worker goes round its loop again.
func (m *Manager) addFreeWorker(w *worker) bool {
	release, ok := locks.TryGuard(&m.poolLock)
	if !ok {
		return false
	}
	defer release()
	if w.stopping.Load() || m.pending.Load() > 0 {
		return false
	}
	m.free = append(m.free, w)
	return true
}

// help runs one queued task on the calling goroutine, or yields when there
// is none. Handles call it while waiting.
func (m *Manager) help() {
	if t := m.nextTask(); t != nil {
		m.execute(t, true)
		return
	}
	runtime.Gosched()
}

func (m *Manager) execute(t task, helper bool) {
	delivered, panicked := t.run()
	m.counters.executed.Add(1)
	if helper {
		m.counters.helped.Add(1)
	}
	if !delivered {
		m.counters.dropped.Add(1)
	}
	if panicked != nil {
		m.counters.panics.Add(1)
		m.logger.Error("task panicked",
			"value", panicked.Value,
			"helper", helper,
			"stack", string(panicked.Stack))
	}
}

// Shutdown stops every worker and waits for each up to StopTimeout. Workers
// finish the task they are running; tasks still queued stay queued and can
// be drained by waiters. A worker that does not stop in time is logged and
// left behind. Submissions after Shutdown fail with ErrManagerClosed.
//
// Shutdown is idempotent.
func (m *Manager) Shutdown() {
	workers, ok := m.close()
	if !ok {
		return
	}
	for _, w := range workers {
		if !w.waitForStop(m.cfg.StopTimeout) {
			m.logger.Error("worker did not stop",
				"worker", w.Name(),
				"timeout", m.cfg.StopTimeout)
		}
	}
	m.logger.Debug("manager shut down", "workers", len(workers), "pending", m.pending.Load())
}

// close flips the closed flag, marks every worker stopped and wakes the idle
// ones. It returns the workers to wait for, and false if already closed.
func (m *Manager) close() ([]*worker, bool) {
	defer locks.Guard(&m.poolLock)()
	if m.closed.Swap(true) {
		return nil, false
	}
	workers := m.workers
	for _, w := range workers {
		w.markStopped()
	}
	for _, w := range m.free {
		w.assigned <- nil
	}
	m.free = nil
	m.workers = nil
	return workers, true
}

// Closed reports whether Shutdown has been called.
func (m *Manager) Closed() bool {
	return m.closed.Load()
}

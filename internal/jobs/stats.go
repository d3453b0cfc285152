package jobs

import (
	"log/slog"

	"github.com/joeycumines/goapjobs/internal/locks"
)

// Stats is a point in time snapshot of a Manager's counters.
type Stats struct {
	// Submitted counts every submission, including rejected ones.
	Submitted uint64
	// Direct counts tasks handed straight to an idle worker.
	Direct uint64
	// Spawned counts workers started.
	Spawned uint64
	// Queued counts tasks pushed onto a priority bucket.
	Queued uint64
	// Executed counts finished task bodies; Helped is the subset run by
	// waiters rather than workers.
	Executed uint64
	Helped   uint64
	Panics   uint64
	// Dropped counts results discarded because the handle was released.
	Dropped uint64

	Workers     int
	FreeWorkers int
	Pending     map[Priority]int
}

func (m *Manager) Stats() Stats {
	s := Stats{
		Submitted: m.counters.submitted.Load(),
		Direct:    m.counters.direct.Load(),
		Spawned:   m.counters.spawned.Load(),
		Queued:    m.counters.queued.Load(),
		Executed:  m.counters.executed.Load(),
		Helped:    m.counters.helped.Load(),
		Panics:    m.counters.panics.Load(),
		Dropped:   m.counters.dropped.Load(),
		Pending:   make(map[Priority]int, numPriorities),
	}

	s.Workers, s.FreeWorkers = m.poolSize()

	for _, p := range Priorities() {
		b := &m.buckets[p.index()]
		b.lock.Acquire()
		s.Pending[p] = len(b.tasks)
		b.lock.Release()
	}
	return s
}

func (m *Manager) poolSize() (workers, free int) {
	defer locks.Guard(&m.poolLock)()
	return len(m.workers), len(m.free)
}

// TotalPending sums Pending.
func (s Stats) TotalPending() int {
	var n int
	for _, v := range s.Pending {
		n += v
	}
	return n
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("submitted", s.Submitted),
		slog.Uint64("direct", s.Direct),
		slog.Uint64("spawned", s.Spawned),
		slog.Uint64("queued", s.Queued),
		slog.Uint64("executed", s.Executed),
		slog.Uint64("helped", s.Helped),
		slog.Uint64("panics", s.Panics),
		slog.Uint64("dropped", s.Dropped),
		slog.Int("workers", s.Workers),
		slog.Int("free", s.FreeWorkers),
		slog.Int("pending", s.TotalPending()),
	)
}

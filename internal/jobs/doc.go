// Package jobs is a priority-aware task engine.
//
// A Manager owns a bounded pool of worker goroutines and five priority
// buckets. Submitting work returns a Handle immediately; the work runs on an
// idle worker, on a newly spawned worker while the pool is below its limit,
// or is queued. Queued work is drained by workers and by callers blocked in
// Handle.Wait, which run queued tasks themselves instead of idling. That keeps
// task bodies that wait on other tasks from exhausting the pool.
//
// Priorities are a scheduling hint. Within a bucket tasks run newest first;
// buckets whose lock is momentarily contended are skipped; work handed
// straight to an idle worker always beats queued work. Tasks cannot be
// cancelled once submitted.
package jobs

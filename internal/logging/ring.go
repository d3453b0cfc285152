package logging

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// Entry is one record captured by a RingHandler.
type Entry struct {
	Time    time.Time         `json:"time"`
	Level   slog.Level        `json:"level"`
	Message string            `json:"message"`
	Attrs   map[string]string `json:"attrs"`
}

// RingHandler is a slog.Handler that keeps the most recent records in memory.
// It backs the simulate command's summary and is handy for asserting on logs
// in tests.
type RingHandler struct {
	ring  *ring
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// ring is a circular buffer; once full, head is the oldest entry.
type ring struct {
	mu      sync.RWMutex
	entries []Entry
	head    int
	max     int
}

func (r *ring) add(e Entry) {
	if len(r.entries) < r.max {
		r.entries = append(r.entries, e)
		return
	}
	r.entries[r.head] = e
	r.head = (r.head + 1) % r.max
}

// ordered copies the newest n entries, oldest first. Callers hold mu.
func (r *ring) ordered(n int) []Entry {
	out := make([]Entry, 0, n)
	out = append(out, r.entries[r.head:]...)
	out = append(out, r.entries[:r.head]...)
	return out[len(out)-n:]
}

var _ slog.Handler = (*RingHandler)(nil)

// NewRingHandler keeps at most size entries (1000 if size <= 0) at or above
// level.
func NewRingHandler(size int, level slog.Leveler) *RingHandler {
	if size <= 0 {
		size = 1000
	}
	if level == nil {
		level = slog.LevelDebug
	}
	return &RingHandler{
		ring:  &ring{entries: make([]Entry, 0, size), max: size},
		level: level,
	}
}

func (h *RingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *RingHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]string, len(h.attrs)+record.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.String()
	}
	record.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		attrs[key] = a.Value.String()
		return true
	})

	r := h.ring
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(Entry{
		Time:    record.Time,
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
	})
	return nil
}

func (h *RingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Clip(h.attrs)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *RingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// Entries returns a copy of every retained entry, oldest first.
func (h *RingHandler) Entries() []Entry {
	h.ring.mu.RLock()
	defer h.ring.mu.RUnlock()
	return h.ring.ordered(len(h.ring.entries))
}

// Recent returns up to n of the newest entries, oldest first.
func (h *RingHandler) Recent(n int) []Entry {
	h.ring.mu.RLock()
	defer h.ring.mu.RUnlock()
	if n <= 0 || n > len(h.ring.entries) {
		n = len(h.ring.entries)
	}
	return h.ring.ordered(n)
}

// Search returns entries whose message or attributes contain query,
// case-insensitively.
func (h *RingHandler) Search(query string) []Entry {
	query = strings.ToLower(query)
	var matches []Entry
	for _, e := range h.Entries() {
		if strings.Contains(strings.ToLower(e.Message), query) {
			matches = append(matches, e)
			continue
		}
		for k, v := range e.Attrs {
			if strings.Contains(strings.ToLower(k), query) || strings.Contains(strings.ToLower(v), query) {
				matches = append(matches, e)
				break
			}
		}
	}
	return matches
}

// Len returns the number of retained entries.
func (h *RingHandler) Len() int {
	h.ring.mu.RLock()
	defer h.ring.mu.RUnlock()
	return len(h.ring.entries)
}

// Clear drops every retained entry.
func (h *RingHandler) Clear() {
	h.ring.mu.Lock()
	defer h.ring.mu.Unlock()
	h.ring.entries = h.ring.entries[:0]
	h.ring.head = 0
}

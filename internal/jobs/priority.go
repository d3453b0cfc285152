package jobs

import (
	"strconv"
)

// Priority orders queued work. The zero value is Normal.
type Priority int8

const (
	VeryHigh Priority = iota - 2
	High
	Normal
	Low
	VeryLow
)

const numPriorities = int(VeryLow-VeryHigh) + 1

// Priorities lists every priority in dequeue order.
func Priorities() []Priority {
	return []Priority{VeryHigh, High, Normal, Low, VeryLow}
}

// index maps p onto a bucket, clamping out of range values.
func (p Priority) index() int {
	return int(min(max(p, VeryHigh), VeryLow) - VeryHigh)
}

func (p Priority) String() string {
	switch p {
	case VeryHigh:
		return "very-high"
	case High:
		return "high"
	case Normal:
		return "normal"
	case Low:
		return "low"
	case VeryLow:
		return "very-low"
	default:
		return "priority(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParsePriority is the inverse of Priority.String.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range Priorities() {
		if p.String() == s {
			return p, true
		}
	}
	return Normal, false
}

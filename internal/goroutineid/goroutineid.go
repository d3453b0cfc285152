// Package goroutineid resolves the id of the calling goroutine.
//
// The id is used to record lock ownership and to name task workers. It is only
// meaningful for the lifetime of the goroutine it was read from.
package goroutineid

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// The first line of a trace is "goroutine N [status]:", which always fits.
const headerSize = 64

var stackBufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, headerSize)
		return &buf
	},
}

var goroutinePrefix = []byte("goroutine ")

// Get returns the id of the calling goroutine, or 0 if the runtime trace
// header could not be parsed.
func Get() int64 {
	buf := stackBufPool.Get().(*[]byte)
	defer stackBufPool.Put(buf)
	n := runtime.Stack(*buf, false)
	return parseHeader((*buf)[:n])
}

// Name returns "<prefix>-<id>" for the calling goroutine.
func Name(prefix string) string {
	return prefix + "-" + strconv.FormatInt(Get(), 10)
}

// parseHeader extracts the id from a "goroutine N [...]" trace header without
// allocating. Returns 0 on any malformed input.
func parseHeader(stack []byte) int64 {
	if !bytes.HasPrefix(stack, goroutinePrefix) {
		return 0
	}
	var id int64
	digits := 0
	for _, b := range stack[len(goroutinePrefix):] {
		if b < '0' || b > '9' {
			break
		}
		id = id*10 + int64(b-'0')
		digits++
	}
	if digits == 0 {
		return 0
	}
	return id
}

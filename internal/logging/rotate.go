package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
)

var _ io.WriteCloser = (*RotatingFile)(nil)

// RotatingFile is an append-only log file that rolls over by size. When a
// write would push the file past its limit, the file is renamed to <path>.1,
// existing backups shift up by one, and backups beyond the retention count
// are removed. A single write is never split across files.
//
// Safe for concurrent use.
type RotatingFile struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	maxFiles int
	size     int64
	file     *os.File
}

// NewRotatingFile opens path for appending, creating it and its directory as
// needed. maxSizeMB is clamped to at least 1; maxFiles to at least 0, where 0
// keeps no backups.
func NewRotatingFile(path string, maxSizeMB, maxFiles int) (*RotatingFile, error) {
	maxSizeMB = max(maxSizeMB, 1)
	maxFiles = max(maxFiles, 0)

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logging: mkdir %s: %w", dir, err)
		}
	}

	f, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("logging: stat %s: %w", path, err)
	}

	return &RotatingFile{
		path:     path,
		maxBytes: int64(maxSizeMB) << 20,
		maxFiles: maxFiles,
		size:     info.Size(),
		file:     f,
	}, nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", path, err)
	}
	return f, nil
}

func (w *RotatingFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}
	if w.size > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.roll(); err != nil {
			return 0, fmt.Errorf("logging: rotate %s: %w", w.path, err)
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotatingFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// roll must be called with w.mu held.
func (w *RotatingFile) roll() error {
	if err := w.file.Close(); err != nil {
		return err
	}

	backups := w.backups()
	// highest first, so renames never clobber a backup that still has to move
	slices.Reverse(backups)
	for _, n := range backups {
		if n >= w.maxFiles {
			_ = os.Remove(w.backup(n))
			continue
		}
		_ = os.Rename(w.backup(n), w.backup(n+1))
	}
	if w.maxFiles > 0 {
		_ = os.Rename(w.path, w.backup(1))
	} else {
		_ = os.Remove(w.path)
	}

	f, err := openAppend(w.path)
	if err != nil {
		return err
	}
	w.file = f
	w.size = 0
	return nil
}

func (w *RotatingFile) backup(n int) string {
	return w.path + "." + strconv.Itoa(n)
}

// backups lists existing backup numbers in ascending order.
func (w *RotatingFile) backups() []int {
	entries, err := os.ReadDir(filepath.Dir(w.path))
	if err != nil {
		return nil
	}
	prefix := filepath.Base(w.path) + "."
	var nums []int
	for _, e := range entries {
		suffix, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n >= 1 {
			nums = append(nums, n)
		}
	}
	slices.Sort(nums)
	return nums
}

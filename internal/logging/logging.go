// Package logging configures the log/slog loggers used by the engine and the
// command line tool.
//
// Library packages never build loggers themselves; they accept a
// *slog.Logger and fall back to slog.Default(). This package is where the
// command line decides handler, level and destination.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format selects the slog handler.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options describes where and how to log.
type Options struct {
	// Level is the minimum level emitted.
	Level slog.Level
	// Format defaults to FormatAuto: text on a terminal, JSON otherwise.
	Format Format
	// Output defaults to os.Stderr. Ignored when File is set.
	Output io.Writer
	// File, when set, sends JSON logs to a size-rotated file.
	File string
	// MaxSizeMB and MaxFiles configure rotation of File.
	MaxSizeMB int
	MaxFiles  int
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to a level.
// The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// New builds a logger from opts. The returned closer releases the log file,
// if any, and is never nil.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	if opts.File != "" {
		w, err := NewRotatingFile(opts.File, opts.MaxSizeMB, opts.MaxFiles)
		if err != nil {
			return nil, nopCloser{}, fmt.Errorf("failed to open log file %s: %w", opts.File, err)
		}
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), w, nil
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	format := opts.Format
	if format == "" || format == FormatAuto {
		format = FormatJSON
		if isTerminal(out) {
			format = FormatText
		}
	}

	switch format {
	case FormatText:
		return slog.New(slog.NewTextHandler(out, handlerOpts)), nopCloser{}, nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(out, handlerOpts)), nopCloser{}, nil
	default:
		return nil, nopCloser{}, fmt.Errorf("invalid log format: %s", format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

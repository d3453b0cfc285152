package command

import (
	"io"
	"log/slog"

	"github.com/joeycumines/goapjobs/internal/config"
	"github.com/joeycumines/goapjobs/internal/logging"
)

// Logs is the logger the commands write to. Every record at or above the
// configured level also lands in Ring.
type Logs struct {
	Logger *slog.Logger
	Ring   *logging.RingHandler
}

// SetupLogging builds Logs from the log.* options of cfg. Output goes to
// stderr unless log.file is set. The returned closer is never nil.
func SetupLogging(cfg *config.Config, stderr io.Writer) (*Logs, io.Closer, error) {
	opts, err := cfg.LoggingOptions()
	if err != nil {
		return nil, io.NopCloser(nil), err
	}
	opts.Output = stderr

	size, err := cfg.BufferSize()
	if err != nil {
		return nil, io.NopCloser(nil), err
	}

	base, closer, err := logging.New(opts)
	if err != nil {
		return nil, closer, err
	}
	ring := logging.NewRingHandler(size, opts.Level)

	return &Logs{
		Logger: slog.New(logging.Tee(base.Handler(), ring)),
		Ring:   ring,
	}, closer, nil
}

// DiscardLogs returns Logs that only record to the ring.
func DiscardLogs() *Logs {
	ring := logging.NewRingHandler(0, slog.LevelDebug)
	return &Logs{Logger: slog.New(ring), Ring: ring}
}

func (l *Logs) logger() *slog.Logger {
	if l == nil || l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"Error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	} {
		got, err := ParseLevel(tc.in)
		if tc.err {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNew_nonTerminalDefaultsToJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: slog.LevelInfo, Output: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("shown", "k", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.EqualValues(t, 1, rec["k"])
}

func TestNew_text(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, _, err := New(Options{Format: FormatText, Output: &buf})
	require.NoError(t, err)
	logger.Info("hello", "who", "world")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "who=world")
}

func TestNew_badFormat(t *testing.T) {
	t.Parallel()
	_, closer, err := New(Options{Format: "xml", Output: &bytes.Buffer{}})
	require.Error(t, err)
	require.NotNil(t, closer)
}

func TestNew_file(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	logger, closer, err := New(Options{File: path, MaxSizeMB: 1, MaxFiles: 2})
	require.NoError(t, err)
	logger.Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestRingHandler(t *testing.T) {
	t.Parallel()
	h := NewRingHandler(3, slog.LevelInfo)
	logger := slog.New(h).With("component", "test")

	logger.Debug("dropped")
	for i := range 5 {
		logger.Info("message", "i", i)
	}
	logger.WithGroup("g").Warn("grouped", "x", "y")

	require.Equal(t, 3, h.Len())
	entries := h.Entries()
	assert.Equal(t, "3", entries[0].Attrs["i"])
	assert.Equal(t, "test", entries[0].Attrs["component"])
	assert.Equal(t, "y", entries[2].Attrs["g.x"])
	assert.Equal(t, slog.LevelWarn, entries[2].Level)

	recent := h.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "grouped", recent[0].Message)
	assert.Len(t, h.Recent(0), 3)

	assert.Len(t, h.Search("GROUPED"), 1)
	assert.Len(t, h.Search("4"), 1)
	assert.Len(t, h.Search("test"), 3)

	h.Clear()
	assert.Zero(t, h.Len())
}

func TestRingHandler_groupedAttrs(t *testing.T) {
	t.Parallel()
	h := NewRingHandler(10, nil)
	slog.New(h).With("outer", 1).WithGroup("g").With("k", "v").WithGroup("h").Info("m", "x", "y")

	entries := h.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]string{"outer": "1", "g.k": "v", "g.h.x": "y"}, entries[0].Attrs)
}

func TestRingHandler_wraps(t *testing.T) {
	t.Parallel()
	h := NewRingHandler(4, nil)
	logger := slog.New(h)
	for i := range 11 {
		logger.Info(strconv.Itoa(i))
	}

	var got []string
	for _, e := range h.Entries() {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"7", "8", "9", "10"}, got)
	recent := h.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "9", recent[0].Message)
	assert.Equal(t, "10", recent[1].Message)

	h.Clear()
	logger.Info("after")
	entries := h.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "after", entries[0].Message)
}

func TestRotatingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "rot.log")
	w, err := NewRotatingFile(path, 1, 2)
	require.NoError(t, err)
	defer w.Close()

	chunk := bytes.Repeat([]byte("x"), 700<<10)
	for range 4 {
		n, err := w.Write(chunk)
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Equal(t, int64(len(chunk)), info.Size(), p)
	}
	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, w.Close())
	_, err = w.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestRotatingFile_noBackups(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "rot.log")
	w, err := NewRotatingFile(path, 1, 0)
	require.NoError(t, err)
	defer w.Close()

	chunk := bytes.Repeat([]byte("y"), 600<<10)
	_, err = w.Write(chunk)
	require.NoError(t, err)
	_, err = w.Write(chunk)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(chunk)), info.Size())
	_, err = os.Stat(path + ".1")
	assert.True(t, os.IsNotExist(err))
}

func TestTee(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	text := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	ring := NewRingHandler(10, slog.LevelDebug)

	logger := slog.New(Tee(text, ring)).With("component", "test")
	logger.Debug("quiet")
	logger.Warn("loud", "n", 1)

	assert.Equal(t, 2, ring.Len())
	assert.Equal(t, "test", ring.Recent(1)[0].Attrs["component"])
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "msg=loud")
	assert.Contains(t, buf.String(), "component=test")

	off := slog.New(Tee(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError})))
	assert.False(t, off.Enabled(context.Background(), slog.LevelWarn))
}

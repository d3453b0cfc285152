package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/goapjobs/internal/config"
)

func newRegistry(cfg *config.Config, configPath string) *Registry {
	logs := DiscardLogs()
	r := NewRegistry()
	r.Register(NewHelpCommand(r))
	r.Register(NewVersionCommand("1.2.3"))
	r.Register(NewConfigCommand(cfg, configPath))
	r.Register(NewPlanCommand(cfg, logs))
	r.Register(NewSimulateCommand(cfg, logs))
	r.Register(NewStressCommand(cfg, logs))
	return r
}

func run(t *testing.T, r *Registry, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := r.Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	r := newRegistry(config.NewConfig(), "")

	assert.Equal(t, []string{"config", "help", "plan", "simulate", "stress", "version"}, r.List())

	cmd, err := r.Get("plan")
	require.NoError(t, err)
	assert.Equal(t, "plan", cmd.Name())

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestRunDispatch(t *testing.T) {
	t.Parallel()
	r := newRegistry(config.NewConfig(), "")

	for _, args := range [][]string{nil, {"-h"}, {"--help"}, {"help"}} {
		stdout, _, err := run(t, r, args...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Available commands:")
		assert.Contains(t, stdout, "stress")
	}

	_, stderr, err := run(t, r, "bogus")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, stderr, "Unknown command: bogus")

	_, stderr, err = run(t, r, "stress", "-h")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Usage: goapjobs stress [options]")

	_, _, err = run(t, r, "stress", "-bogus")
	assert.Error(t, err)
}

func TestHelpForCommand(t *testing.T) {
	t.Parallel()
	r := newRegistry(config.NewConfig(), "")

	stdout, _, err := run(t, r, "help", "plan")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Command: plan")
	assert.Contains(t, stdout, "Usage: goapjobs plan [options] <scenario.yaml>")
	assert.Contains(t, stdout, "-priority")

	stdout, _, err = run(t, r, "help", "version")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Flags:")

	_, _, err = run(t, r, "help", "nope")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()
	r := newRegistry(config.NewConfig(), "")

	stdout, _, err := run(t, r, "version")
	require.NoError(t, err)
	assert.Equal(t, "goapjobs version 1.2.3\n", stdout)

	_, _, err = run(t, r, "version", "extra")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	cfg := config.NewConfig()
	r := newRegistry(cfg, path)

	stdout, _, err := run(t, r, "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration management:")

	stdout, _, err = run(t, r, "config", "planner.heuristic")
	require.NoError(t, err)
	assert.Equal(t, "planner.heuristic: distance\n", stdout)

	stdout, _, err = run(t, r, "config", "jobs.max-workers", "3")
	require.NoError(t, err)
	assert.Equal(t, "Set configuration: jobs.max-workers = 3\n", stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[jobs]\nmax-workers 3\n", string(data))

	jc, err := cfg.JobsConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, jc.MaxWorkers)

	stdout, _, err = run(t, r, "config", "nope")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration key 'nope' not found")

	stdout, _, err = run(t, r, "config", "validate")
	require.NoError(t, err)
	assert.Equal(t, "Configuration is valid.\n", stdout)

	_, stderr, err := run(t, r, "config", "planner.max-nodes", "lots")
	require.NoError(t, err)
	assert.Contains(t, stderr, `expected int, got "lots"`)

	stdout, _, err = run(t, r, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration has 1 issue(s):")

	stdout, _, err = run(t, r, "config", "schema")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[planner] Options:")

	stdout, _, err = run(t, r, "config", "-all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stress.tasks")
	assert.Contains(t, stdout, "planner.max-nodes")

	_, _, err = run(t, r, "config", "a", "b", "c")
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	t.Setenv("GOAPJOBS_LOG_LEVEL", "debug")
	path := filepath.Join(t.TempDir(), "goapjobs.log")
	t.Setenv("GOAPJOBS_LOG_FILE", path)

	var stderr bytes.Buffer
	logs, closer, err := SetupLogging(config.NewConfig(), &stderr)
	require.NoError(t, err)

	logs.Logger.Debug("hello", "n", 1)
	require.NoError(t, closer.Close())

	assert.Equal(t, 1, logs.Ring.Len())
	assert.Empty(t, stderr.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)

	t.Setenv("GOAPJOBS_LOG_LEVEL", "shouty")
	_, closer, err = SetupLogging(config.NewConfig(), &stderr)
	assert.Error(t, err)
	assert.NotNil(t, closer)
}

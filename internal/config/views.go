package config

import (
	"errors"
	"log/slog"

	"github.com/joeycumines/goapjobs/internal/agent"
	"github.com/joeycumines/goapjobs/internal/goap"
	"github.com/joeycumines/goapjobs/internal/jobs"
	"github.com/joeycumines/goapjobs/internal/logging"
)

// LoggingOptions returns the effective logging configuration. verbose
// forces debug level regardless of log.level.
func (c *Config) LoggingOptions() (logging.Options, error) {
	s := DefaultSchema()

	level, err := logging.ParseLevel(s.Resolve(c, "", "log.level"))
	if err != nil {
		return logging.Options{}, optionError("", "log.level", err)
	}
	verbose, err := s.ResolveBool(c, "", "verbose")
	if err != nil {
		return logging.Options{}, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	maxSize, err1 := s.ResolveInt(c, "", "log.max-size-mb")
	maxFiles, err2 := s.ResolveInt(c, "", "log.max-files")
	if err := errors.Join(err1, err2); err != nil {
		return logging.Options{}, err
	}

	return logging.Options{
		Level:     level,
		File:      s.Resolve(c, "", "log.file"),
		MaxSizeMB: maxSize,
		MaxFiles:  maxFiles,
	}, nil
}

// BufferSize is the capacity of the in-memory log ring.
func (c *Config) BufferSize() (int, error) {
	return DefaultSchema().ResolveInt(c, "", "log.buffer-size")
}

// JobsConfig returns the [jobs] section as a jobs.Config. A max-workers of
// zero or less means jobs.DefaultMaxWorkers(). The logger is left unset.
func (c *Config) JobsConfig() (jobs.Config, error) {
	s := DefaultSchema()

	workers, err1 := s.ResolveInt(c, "jobs", "max-workers")
	timeout, err2 := s.ResolveDuration(c, "jobs", "stop-timeout")
	pin, err3 := s.ResolveBool(c, "jobs", "lock-os-thread")
	if err := errors.Join(err1, err2, err3); err != nil {
		return jobs.Config{}, err
	}
	if workers <= 0 {
		workers = jobs.DefaultMaxWorkers()
	}

	return jobs.Config{
		MaxWorkers:   workers,
		StopTimeout:  timeout,
		LockOSThread: pin,
	}, nil
}

// PlannerSettings is the [planner] section.
type PlannerSettings struct {
	Heuristic           string
	HeuristicScale      int
	MaxNodes            int
	StrictPreconditions bool
}

// PlannerConfig returns the [planner] section.
func (c *Config) PlannerConfig() (PlannerSettings, error) {
	s := DefaultSchema()

	scale, err1 := s.ResolveInt(c, "planner", "heuristic-scale")
	maxNodes, err2 := s.ResolveInt(c, "planner", "max-nodes")
	strict, err3 := s.ResolveBool(c, "planner", "strict-preconditions")
	if err := errors.Join(err1, err2, err3); err != nil {
		return PlannerSettings{}, err
	}

	return PlannerSettings{
		Heuristic:           s.Resolve(c, "planner", "heuristic"),
		HeuristicScale:      scale,
		MaxNodes:            maxNodes,
		StrictPreconditions: strict,
	}, nil
}

// AgentConfig compiles the heuristic and returns the agent system
// configuration.
func (p PlannerSettings) AgentConfig(logger *slog.Logger) (agent.Config, error) {
	h, err := goap.ParseHeuristic(p.Heuristic, p.HeuristicScale)
	if err != nil {
		return agent.Config{}, optionError("planner", "heuristic", err)
	}
	return agent.Config{
		Logger:    logger,
		Heuristic: h,
		MaxNodes:  p.MaxNodes,
		Strict:    p.StrictPreconditions,
	}, nil
}

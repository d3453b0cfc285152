package command

import (
	"fmt"

	"github.com/joeycumines/goapjobs/internal/agent"
	"github.com/joeycumines/goapjobs/internal/config"
	"github.com/joeycumines/goapjobs/internal/jobs"
	"github.com/joeycumines/goapjobs/internal/scenario"
	"github.com/joeycumines/goapjobs/internal/world"
)

// loadScenario reads path and builds its agents with the [planner] options
// of cfg.
func loadScenario(cfg *config.Config, logs *Logs, path string) (*scenario.Scenario, *agent.System, error) {
	planner, err := cfg.PlannerConfig()
	if err != nil {
		return nil, nil, err
	}
	agentCfg, err := planner.AgentConfig(logs.logger())
	if err != nil {
		return nil, nil, err
	}

	file, err := scenario.Load(path)
	if err != nil {
		return nil, nil, err
	}
	sc, err := file.Build(world.NewRegistry(), planner.HeuristicScale)
	if err != nil {
		return nil, nil, err
	}
	sys, err := sc.System(agentCfg)
	if err != nil {
		return nil, nil, err
	}
	return sc, sys, nil
}

// newManager starts a task manager from the [jobs] options of cfg.
// workers overrides max-workers when positive.
func newManager(cfg *config.Config, logs *Logs, workers int) (*jobs.Manager, error) {
	jc, err := cfg.JobsConfig()
	if err != nil {
		return nil, err
	}
	if workers > 0 {
		jc.MaxWorkers = workers
	}
	jc.Logger = logs.logger()
	return jobs.New(jc), nil
}

func parsePriority(s string) (jobs.Priority, error) {
	p, ok := jobs.ParsePriority(s)
	if !ok {
		return p, fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}

// tagOf names an entity by tag, falling back to its id.
func tagOf(registry *world.Registry, id string) string {
	if e, ok := registry.Get(id); ok {
		return e.Tag()
	}
	return id
}

// Package agent gives entities goal driven behaviour. Each tick every agent
// replans from what it currently believes, then performs one tick of the
// first planned action against the live entities.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/joeycumines/goapjobs/internal/goap"
	"github.com/joeycumines/goapjobs/internal/world"
)

// Component is the planning data attached to one entity.
type Component struct {
	Actions []*goap.Action
	// State is what the agent believes. Completed actions fold their effects
	// into it.
	State goap.WorldState
	Goal  goap.WorldState
	// Heuristic overrides the system default when set.
	Heuristic goap.Heuristic
}

// Config configures a System.
type Config struct {
	Logger *slog.Logger
	// Heuristic defaults to goap.DistanceHeuristic(goap.DefaultHeuristicScale).
	Heuristic goap.Heuristic
	// MaxNodes bounds each search; zero is unlimited.
	MaxNodes int
	// Strict applies completed actions with goap.Action.Apply instead of
	// ActOn.
	Strict bool
}

// System ticks the agents attached to entities of a registry. It is safe
// for concurrent use, though ticks are serialised.
type System struct {
	registry *world.Registry
	cfg      Config
	logger   *slog.Logger

	mu     sync.Mutex
	order  []string
	agents map[string]*Component
}

func NewSystem(registry *world.Registry, cfg Config) *System {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Heuristic == nil {
		cfg.Heuristic = goap.DistanceHeuristic(goap.DefaultHeuristicScale)
	}
	return &System{
		registry: registry,
		cfg:      cfg,
		logger:   cfg.Logger.With("component", "agent"),
		agents:   make(map[string]*Component),
	}
}

// Attach gives the entity with id an agent. It replaces any previous one.
func (s *System) Attach(id string, c *Component) error {
	if _, ok := s.registry.Get(id); !ok {
		return fmt.Errorf("agent: unknown entity %s", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[id]; !ok {
		s.order = append(s.order, id)
	}
	s.agents[id] = c
	return nil
}

func (s *System) Detach(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[id]; ok {
		delete(s.agents, id)
		s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	}
}

// Agents lists attached entity ids in attach order.
func (s *System) Agents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// State returns a copy of an agent's current belief.
func (s *System) State(id string) (goap.WorldState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.agents[id]
	if !ok {
		return goap.WorldState{}, false
	}
	return c.State.Clone(), true
}

// StepResult describes what one agent did during a tick.
type StepResult struct {
	Agent string
	Plan  goap.Plan
	// Action is the action performed, empty when there was nothing to do.
	Action string
	// Done reports whether Action completed this tick.
	Done bool
	// Err is set when planning failed. ErrNoPlan is expected and leaves the
	// agent idle until a later tick finds a plan.
	Err error
}

// Tick advances every agent by one step. It only returns an error when ctx
// ends; per-agent failures are reported in the results.
func (s *System) Tick(ctx context.Context) ([]StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]StepResult, 0, len(s.order))
	for _, id := range s.order {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r, err := s.step(ctx, id, s.agents[id])
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *System) planner(c *Component) *goap.Planner {
	h := c.Heuristic
	if h == nil {
		h = s.cfg.Heuristic
	}
	return goap.NewPlanner(h, goap.WithLogger(s.logger), goap.WithMaxNodes(s.cfg.MaxNodes))
}

func (s *System) step(ctx context.Context, id string, c *Component) (StepResult, error) {
	result := StepResult{Agent: id}
	log := s.logger.With("agent", id)

	plan, err := s.planner(c).PlanContext(ctx, c.State, c.Goal, c.Actions)
	switch {
	case errors.Is(err, goap.ErrNoPlan):
		log.Info("no plan", "error", err)
		result.Err = err
		return result, nil
	case err != nil:
		return result, err
	}
	result.Plan = plan

	next := plan.Next()
	if next == nil {
		log.Debug("goal met")
		return result, nil
	}
	result.Action = next.Name()

	if result.Done = s.perform(log, id, next); result.Done {
		s.complete(log, c, next)
	}
	return result, nil
}

// perform runs one tick of a. Untargeted actions have nothing to act on and
// complete immediately.
func (s *System) perform(log *slog.Logger, id string, a *goap.Action) bool {
	if a.Target() == "" {
		return true
	}
	applier, ok := s.registry.Get(id)
	if !ok {
		log.Warn("agent entity is gone")
		return false
	}
	target, ok := s.registry.Get(a.Target())
	if !ok {
		log.Warn("action target is gone", "action", a.Name(), "target", a.Target())
		return false
	}
	return a.Perform(applier, target)
}

func (s *System) complete(log *slog.Logger, c *Component, a *goap.Action) {
	if !s.cfg.Strict {
		c.State = a.ActOn(c.State)
	} else if next, err := a.Apply(c.State); err != nil {
		log.Warn("completed action not applied", "action", a.Name(), "error", err)
		return
	} else {
		c.State = next
	}
	log.Info("action completed", "action", a.Name())
}

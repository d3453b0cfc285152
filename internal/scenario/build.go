package scenario

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/joeycumines/goapjobs/internal/agent"
	"github.com/joeycumines/goapjobs/internal/goap"
	"github.com/joeycumines/goapjobs/internal/world"
)

// Agent is a built agent ready to attach to a System.
type Agent struct {
	Entity    *world.Entity
	Component *agent.Component
}

// Scenario is a File instantiated into live entities.
type Scenario struct {
	Name string
	// Heuristic is nil unless the file names one.
	Heuristic goap.Heuristic
	Registry  *world.Registry
	Agents    []Agent
}

// Build spawns the file's entities into registry and builds each agent's
// actions and states with tags resolved to entity ids. scale is the scale
// used when the file's heuristic is "distance". The file is validated
// first, so a File assembled in code gets the same checks as a parsed one.
func (f *File) Build(registry *world.Registry, scale int) (*Scenario, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	s := &Scenario{Name: f.Name, Registry: registry}
	if f.Heuristic != "" {
		h, err := goap.ParseHeuristic(f.Heuristic, scale)
		if err != nil {
			return nil, fieldErr(err, "heuristic")
		}
		s.Heuristic = h
	}

	ids := make(map[string]string, len(f.Entities))
	for i, es := range f.Entities {
		var pos r3.Vec
		if len(es.Position) == 3 {
			pos = r3.Vec{X: es.Position[0], Y: es.Position[1], Z: es.Position[2]}
		}
		e, err := registry.Spawn(es.Tag, pos)
		if err != nil {
			return nil, fieldErr(err, "entities[%d]", i)
		}
		ids[es.Tag] = e.ID()
	}
	resolve := func(entity string) string {
		if id, ok := ids[entity]; ok {
			return id
		}
		return entity
	}

	for i, ag := range f.Agents {
		e, ok := registry.ByTag(ag.Entity)
		if !ok {
			return nil, fieldErr(fmt.Errorf("%w entity %q", ErrUnknown, ag.Entity), "agents[%d].entity", i)
		}
		c := &agent.Component{
			State:     goap.NewWorldState(ag.Entity, facts(ag.State, resolve)...),
			Goal:      goap.NewWorldState(ag.Entity+" goal", facts(ag.Goal, resolve)...),
			Heuristic: s.Heuristic,
		}
		for _, as := range ag.Actions {
			c.Actions = append(c.Actions, buildAction(as, resolve))
		}
		s.Agents = append(s.Agents, Agent{Entity: e, Component: c})
	}
	return s, nil
}

func facts(specs []FactSpec, resolve func(string) string) []goap.Fact {
	out := make([]goap.Fact, len(specs))
	for i, f := range specs {
		out[i] = goap.Fact{Entity: resolve(f.Entity), Name: f.Name, Value: f.Value}
	}
	return out
}

func buildAction(s ActionSpec, resolve func(string) string) *goap.Action {
	target := ""
	if s.Target != "" {
		target = resolve(s.Target)
	}

	var a *goap.Action
	if kind, _ := goap.ParseKind(s.Kind); kind == goap.KindFollow {
		speed := s.Speed
		if speed == 0 {
			speed = goap.DefaultFollowSpeed
		}
		a = goap.NewFollowActionWith(s.Name, s.Cost, target, goap.FollowBehavior{Speed: speed, Reach: s.Reach})
	} else {
		a = goap.NewTargetedAction(s.Name, s.Cost, target, nil)
	}

	for _, f := range facts(s.Preconditions, resolve) {
		a.SetPrecondition(f.Entity, f.Name, f.Value)
	}
	for _, f := range facts(s.Effects, resolve) {
		a.SetEffect(f.Entity, f.Name, f.Value)
	}
	return a
}

// System attaches every agent to a new agent.System over the scenario's
// registry.
func (s *Scenario) System(cfg agent.Config) (*agent.System, error) {
	sys := agent.NewSystem(s.Registry, cfg)
	for _, a := range s.Agents {
		if err := sys.Attach(a.Entity.ID(), a.Component); err != nil {
			return nil, err
		}
	}
	return sys, nil
}

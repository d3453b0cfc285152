package goap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joeycumines/goapjobs/internal/locks"
)

var (
	// ErrNoPlan means the goal cannot be reached with the given actions.
	// Callers usually retry later rather than treat it as fatal.
	ErrNoPlan = errors.New("goap: no plan found")

	// ErrSearchLimit means the search gave up after the configured number of
	// expansions. It matches ErrNoPlan.
	ErrSearchLimit = fmt.Errorf("%w: search limit reached", ErrNoPlan)
)

// Option configures a Planner.
type Option func(*Planner)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxNodes bounds the number of expanded nodes per search. Zero means
// unlimited.
func WithMaxNodes(n int) Option {
	return func(p *Planner) { p.maxNodes = max(n, 0) }
}

// SearchStats describes the last search.
type SearchStats struct {
	Expanded  int
	Generated int
	Improved  int
}

// Planner runs A* over world states. A Planner holds per-search state and
// must not be used concurrently; create one per goroutine. Concurrent or
// reentrant searches panic.
type Planner struct {
	inUse locks.DebugLock

	heuristic Heuristic
	logger    *slog.Logger
	maxNodes  int

	open   openList
	closed map[string]*node
	byID   map[int64]*node
	stats  SearchStats
}

// NewPlanner returns a planner using h, ZeroHeuristic if nil.
func NewPlanner(h Heuristic, opts ...Option) *Planner {
	if h == nil {
		h = ZeroHeuristic
	}
	p := &Planner{
		heuristic: h,
		logger:    slog.Default(),
	}
	p.inUse.SetName("goap.Planner")
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stats reports on the most recent search.
func (p *Planner) Stats() SearchStats {
	return p.stats
}

// Plan is PlanContext without cancellation.
func (p *Planner) Plan(start, goal WorldState, actions []*Action) (Plan, error) {
	return p.PlanContext(context.Background(), start, goal, actions)
}

// PlanContext searches for the cheapest action sequence turning start into
// a state that meets goal. An empty plan means start already meets goal.
// When the goal is unreachable the error matches ErrNoPlan; cancellation
// returns ctx.Err().
func (p *Planner) PlanContext(ctx context.Context, start, goal WorldState, actions []*Action) (Plan, error) {
	defer locks.Guard(&p.inUse)()

	p.stats = SearchStats{}
	if start.MeetsGoal(goal) {
		return Plan{}, nil
	}

	p.reset()
	root := newNode(start, start.Signature(), 0, p.heuristic.Estimate(start, goal), rootParent, noop)
	p.open.insert(root)
	p.stats.Generated++

	for p.open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.maxNodes > 0 && p.stats.Expanded >= p.maxNodes {
			return nil, fmt.Errorf("%w after %d nodes", ErrSearchLimit, p.stats.Expanded)
		}

		current := p.open.popMin()
		if current == nil {
			p.logger.Error("pop from empty open list")
			break
		}
		p.closed[current.signature] = current
		p.byID[current.id] = current
		p.stats.Expanded++

		if current.state.MeetsGoal(goal) {
			plan := p.reconstruct(current)
			p.logger.Debug("plan found",
				"goal", goal.Name,
				"plan", plan.String(),
				"cost", current.g,
				"expanded", p.stats.Expanded,
				"generated", p.stats.Generated)
			return plan, nil
		}

		p.expand(current, goal, actions)
	}

	p.logger.Debug("search exhausted", "start", start.Name, "goal", goal.Name, "expanded", p.stats.Expanded)
	return nil, fmt.Errorf("%w: %s cannot reach %s", ErrNoPlan, start, goal)
}

func (p *Planner) reset() {
	p.open.reset()
	if p.closed == nil {
		p.closed = make(map[string]*node)
		p.byID = make(map[int64]*node)
	} else {
		clear(p.closed)
		clear(p.byID)
	}
}

func (p *Planner) expand(current *node, goal WorldState, actions []*Action) {
	for _, action := range actions {
		if !action.OperableOn(current.state) {
			continue
		}
		outcome := action.actOn(current.state, p.logger)
		signature := outcome.Signature()
		if _, seen := p.closed[signature]; seen {
			continue
		}

		g := current.g + action.Cost()
		existing := p.open.find(signature)
		switch {
		case existing == nil:
		case g < existing.g:
			p.open.remove(existing)
			p.stats.Improved++
		default:
			continue
		}
		p.open.insert(newNode(outcome, signature, g, p.heuristic.Estimate(outcome, goal), current.id, action))
		p.stats.Generated++
	}
}

// reconstruct walks parent links from n back to the root, collecting
// actions closest to the goal first.
func (p *Planner) reconstruct(n *node) Plan {
	var plan Plan
	for n.parent != rootParent {
		plan = append(plan, n.action)
		parent, ok := p.byID[n.parent]
		if !ok {
			p.logger.Error("broken parent chain", "node", n.id, "parent", n.parent)
			break
		}
		n = parent
	}
	return plan
}

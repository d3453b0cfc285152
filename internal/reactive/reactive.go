// Package reactive executes GOAP actions as a PA-BT behaviour tree.
//
// Where the A* planner commits to a whole plan up front, a PA-BT tree
// re-checks the goal and every precondition on each tick against a live
// Board and only expands the parts of the tree that fail. Effects are
// written to the board when an action's behaviour completes.
package reactive

import (
	"fmt"
	"log/slog"

	bt "github.com/joeycumines/go-behaviortree"
	pabt "github.com/joeycumines/go-pabt"

	"github.com/joeycumines/goapjobs/internal/goap"
)

// Performer advances a for one tick, reporting whether it has completed.
type Performer func(a *goap.Action) (done bool, err error)

var _ pabt.IState = (*State)(nil)

// State exposes a Board and a GOAP action set to the PA-BT planner.
type State struct {
	board   *Board
	actions []*action
	logger  *slog.Logger
}

// NewState wraps actions once so that the planner sees stable identities.
func NewState(board *Board, actions []*goap.Action, perform Performer, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	s := &State{board: board, logger: logger}
	for _, a := range actions {
		s.actions = append(s.actions, newAction(s, a, perform))
	}
	return s
}

// Variable returns the board value for a goap.FactKey, nil when unset.
func (s *State) Variable(key any) (any, error) {
	k, ok := key.(goap.FactKey)
	if !ok {
		return nil, fmt.Errorf("reactive: unsupported key type %T", key)
	}
	if v, ok := s.board.Get(k); ok {
		return v, nil
	}
	return nil, nil
}

// Actions returns the actions with an effect that would satisfy failed.
func (s *State) Actions(failed pabt.Condition) ([]pabt.IAction, error) {
	var out []pabt.IAction
	for _, a := range s.actions {
		for _, e := range a.effects {
			if e.Key() == failed.Key() && failed.Match(e.Value()) {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

// New builds a PA-BT tree driving the board toward goal. Tick the returned
// node until it reports bt.Success.
func New(board *Board, goal goap.WorldState, actions []*goap.Action, perform Performer, logger *slog.Logger) (bt.Node, error) {
	state := NewState(board, actions, perform, logger)
	plan, err := pabt.INew(state, []pabt.IConditions{conditions(goal)})
	if err != nil {
		return nil, fmt.Errorf("reactive: %w", err)
	}
	return plan.Node(), nil
}

type condition struct {
	key   goap.FactKey
	value bool
}

func (c condition) Key() any { return c.key }

// Match is false for unset facts, whatever value is wanted.
func (c condition) Match(v any) bool {
	b, ok := v.(bool)
	return ok && b == c.value
}

type effect struct {
	key   goap.FactKey
	value bool
}

func (e effect) Key() any { return e.key }
func (e effect) Value() any { return e.value }

func conditions(ws goap.WorldState) pabt.IConditions {
	facts := ws.Facts()
	out := make(pabt.IConditions, len(facts))
	for i, f := range facts {
		out[i] = condition{key: f.Key(), value: f.Value}
	}
	return out
}

type action struct {
	state      *State
	goap       *goap.Action
	perform    Performer
	conditions []pabt.IConditions
	effects    pabt.Effects
	node       bt.Node
}

var _ pabt.IAction = (*action)(nil)

func newAction(s *State, a *goap.Action, perform Performer) *action {
	wrapped := &action{state: s, goap: a, perform: perform}
	if pre := a.Preconditions(); pre.Len() > 0 {
		wrapped.conditions = []pabt.IConditions{conditions(pre)}
	}
	for _, f := range a.Effects().Facts() {
		wrapped.effects = append(wrapped.effects, effect{key: f.Key(), value: f.Value})
	}
	wrapped.node = bt.New(wrapped.tick)
	return wrapped
}

func (a *action) Conditions() []pabt.IConditions { return a.conditions }
func (a *action) Effects() pabt.Effects { return a.effects }
func (a *action) Node() bt.Node { return a.node }

func (a *action) tick([]bt.Node) (bt.Status, error) {
	done, err := a.perform(a.goap)
	if err != nil {
		a.state.logger.Warn("reactive action failed", "action", a.goap.Name(), "error", err)
		return bt.Failure, nil
	}
	if !done {
		return bt.Running, nil
	}
	a.state.board.Apply(a.goap.Effects())
	a.state.logger.Debug("reactive action completed", "action", a.goap.Name())
	return bt.Success, nil
}

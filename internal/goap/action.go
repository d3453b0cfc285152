package goap

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrPreconditionsUnmet is returned by Action.Apply.
var ErrPreconditionsUnmet = errors.New("goap: action preconditions not met")

// Action transforms one world state into another. Actions are built once
// and treated as read-only by the planner.
type Action struct {
	name          string
	cost          int
	target        string
	preconditions WorldState
	effects       WorldState
	behavior      Behavior
}

// NewAction returns an untargeted action. A nil behavior is NoneBehavior.
func NewAction(name string, cost int, behavior Behavior) *Action {
	return NewTargetedAction(name, cost, "", behavior)
}

// NewTargetedAction binds the action to the entity with id target.
func NewTargetedAction(name string, cost int, target string, behavior Behavior) *Action {
	if behavior == nil {
		behavior = NoneBehavior{}
	}
	return &Action{
		name:          name,
		cost:          cost,
		target:        target,
		preconditions: NewWorldState(""),
		effects:       NewWorldState(""),
		behavior:      behavior,
	}
}

// NewFollowAction moves the applier toward target at DefaultFollowSpeed.
// It requires the target to be alive and, once planned, marks it dead.
func NewFollowAction(name string, cost int, target string) *Action {
	return NewFollowActionWith(name, cost, target, FollowBehavior{Speed: DefaultFollowSpeed})
}

// NewFollowActionWith is NewFollowAction with a tuned behaviour.
func NewFollowActionWith(name string, cost int, target string, b FollowBehavior) *Action {
	a := NewTargetedAction(name, cost, target, b)
	a.SetPrecondition(target, FactDead, false)
	a.SetEffect(target, FactDead, true)
	return a
}

func (a *Action) SetPrecondition(entity, name string, value bool) *Action {
	a.preconditions.SetFact(entity, name, value)
	return a
}

func (a *Action) SetEffect(entity, name string, value bool) *Action {
	a.effects.SetFact(entity, name, value)
	return a
}

func (a *Action) Name() string { return a.name }
func (a *Action) Cost() int { return a.cost }
func (a *Action) Target() string { return a.target }
func (a *Action) Preconditions() WorldState { return a.preconditions.Clone() }
func (a *Action) Effects() WorldState { return a.effects.Clone() }
func (a *Action) Behavior() Behavior { return a.behavior }
func (a *Action) Kind() Kind { return a.behavior.Kind() }
func (a *Action) String() string { return a.name }

// OperableOn reports whether every precondition holds in state.
func (a *Action) OperableOn(state WorldState) bool {
	return state.MeetsGoal(a.preconditions)
}

// ActOn returns state with the effects applied. Unmet preconditions are
// logged and the effects applied anyway; use Apply to refuse instead.
func (a *Action) ActOn(state WorldState) WorldState {
	return a.actOn(state, slog.Default())
}

func (a *Action) actOn(state WorldState, logger *slog.Logger) WorldState {
	if !a.OperableOn(state) {
		logger.Warn("action applied with unmet preconditions",
			"action", a.name,
			"state", state.Name,
			"missing", state.DistanceState(a.preconditions))
	}
	return a.apply(state)
}

// Apply is the strict form of ActOn.
func (a *Action) Apply(state WorldState) (WorldState, error) {
	if !a.OperableOn(state) {
		return WorldState{}, fmt.Errorf("%w: %s on %s", ErrPreconditionsUnmet, a.name, state.DistanceState(a.preconditions))
	}
	return a.apply(state), nil
}

func (a *Action) apply(state WorldState) WorldState {
	out := state.Clone()
	for k, v := range a.effects.facts {
		out.facts[k] = v
	}
	return out
}

// Perform runs the action's behaviour for one tick against live entities,
// reporting whether the physical action has completed. It returns false
// without doing anything when target is not the entity the action is bound
// to.
func (a *Action) Perform(applier, target Entity) bool {
	if applier == nil || target == nil || target.ID() != a.target {
		return false
	}
	return a.behavior.Perform(a, applier, target)
}

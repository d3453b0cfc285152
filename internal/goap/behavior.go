package goap

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"
)

// FactDead is the fact name follow actions use for their target.
const FactDead = "Dead"

// DefaultFollowSpeed is the distance a follow step covers per tick.
const DefaultFollowSpeed = 0.5

// Kind tags the closed set of behaviours.
type Kind uint8

const (
	KindNone Kind = iota
	KindFollow
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindFollow:
		return "follow"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "none", "":
		return KindNone, true
	case "follow":
		return KindFollow, true
	default:
		return KindNone, false
	}
}

// Entity is the live object an action acts on.
type Entity interface {
	ID() string
	Position() r3.Vec
	SetPosition(r3.Vec)
	LookAt(r3.Vec)
}

// Behavior is what an action does to live entities each tick.
type Behavior interface {
	Kind() Kind
	// Perform advances the action by one tick and reports whether it has
	// completed. The target has already been checked against the action.
	Perform(a *Action, applier, target Entity) bool
}

// NoneBehavior never completes. It marks actions that only exist for
// planning.
type NoneBehavior struct{}

func (NoneBehavior) Kind() Kind { return KindNone }

func (NoneBehavior) Perform(a *Action, _, _ Entity) bool {
	slog.Error("action has no perform behaviour", "action", a.Name())
	return false
}

// FollowBehavior moves the applier toward the target by Speed per tick and
// completes once it is closer than Reach. A zero Reach uses Speed.
type FollowBehavior struct {
	Speed float64
	Reach float64
}

func (FollowBehavior) Kind() Kind { return KindFollow }

func (b FollowBehavior) Perform(_ *Action, applier, target Entity) bool {
	speed := b.Speed
	if speed <= 0 {
		speed = DefaultFollowSpeed
	}
	reach := b.Reach
	if reach <= 0 {
		reach = speed
	}

	to := target.Position()
	delta := r3.Sub(to, applier.Position())
	if r3.Norm(delta) < reach {
		return true
	}
	applier.LookAt(to)
	applier.SetPosition(r3.Add(applier.Position(), r3.Scale(speed, r3.Unit(delta))))
	return false
}

package agent

import (
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/joeycumines/goapjobs/internal/goap"
	"github.com/joeycumines/goapjobs/internal/world"
)

// NewExecutor turns plan into a behaviour tree that performs each action in
// execution order on behalf of applier. Each action ticks until its
// behaviour reports completion; the tree succeeds once the last one does.
// A missing target entity fails the tree with an error.
func NewExecutor(plan goap.Plan, applier *world.Entity, registry *world.Registry) bt.Node {
	ordered := plan.Ordered()
	steps := make([]bt.Node, len(ordered))
	for i, a := range ordered {
		steps[i] = bt.New(func([]bt.Node) (bt.Status, error) {
			if a.Target() == "" {
				return bt.Success, nil
			}
			target, ok := registry.Get(a.Target())
			if !ok {
				return bt.Failure, fmt.Errorf("agent: action %s: target %s not found", a.Name(), a.Target())
			}
			if a.Perform(applier, target) {
				return bt.Success, nil
			}
			return bt.Running, nil
		})
	}
	return bt.New(bt.Memorize(bt.Sequence), steps...)
}

package agent

import (
	"context"

	"github.com/joeycumines/goapjobs/internal/goap"
	"github.com/joeycumines/goapjobs/internal/jobs"
)

// PlanResult is one agent's outcome from PlanAll.
type PlanResult struct {
	Agent string
	Plan  goap.Plan
	Err   error
}

// PlanAll plans for every agent concurrently on m, one planner per task,
// without performing anything. Results are in attach order.
func (s *System) PlanAll(ctx context.Context, m *jobs.Manager, p jobs.Priority) ([]PlanResult, error) {
	type request struct {
		id      string
		planner *goap.Planner
		state   goap.WorldState
		goal    goap.WorldState
		actions []*goap.Action
	}

	s.mu.Lock()
	requests := make([]request, 0, len(s.order))
	for _, id := range s.order {
		c := s.agents[id]
		requests = append(requests, request{
			id:      id,
			planner: s.planner(c),
			state:   c.State.Clone(),
			goal:    c.Goal.Clone(),
			actions: c.Actions,
		})
	}
	s.mu.Unlock()

	handles := make([]*jobs.Handle[goap.Plan], len(requests))
	for i, r := range requests {
		handles[i] = jobs.RunErr(m, p, func() (goap.Plan, error) {
			return r.planner.PlanContext(ctx, r.state, r.goal, r.actions)
		})
	}

	results := make([]PlanResult, len(requests))
	for i, h := range handles {
		plan, err := h.WaitContext(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return results[:i], ctxErr
		}
		results[i] = PlanResult{Agent: requests[i].id, Plan: plan, Err: err}
	}
	return results, nil
}

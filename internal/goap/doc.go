// Package goap is a goal-oriented action planner.
//
// World knowledge is a WorldState: a set of boolean facts keyed by entity id
// and fact name. An Action has a cost, precondition facts and effect facts.
// The Planner runs A* from a start state to any state that meets a goal and
// returns the cheapest action sequence it finds, which is optimal whenever
// the heuristic never overestimates the remaining cost.
package goap

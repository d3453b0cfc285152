package goap

import (
	"slices"
	"strings"
)

// Plan is the result of a search, last action first: Next is the action to
// perform now and Ordered gives execution order.
type Plan []*Action

// Next returns the first action to execute, or nil for an empty plan.
func (p Plan) Next() *Action {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Ordered returns the actions in execution order.
func (p Plan) Ordered() []*Action {
	out := slices.Clone(p)
	slices.Reverse(out)
	return out
}

// Cost sums the action costs.
func (p Plan) Cost() int {
	total := 0
	for _, a := range p {
		total += a.Cost()
	}
	return total
}

// Names lists action names in execution order.
func (p Plan) Names() []string {
	names := make([]string, len(p))
	for i, a := range p {
		names[len(p)-1-i] = a.Name()
	}
	return names
}

func (p Plan) String() string {
	return strings.Join(p.Names(), " -> ")
}

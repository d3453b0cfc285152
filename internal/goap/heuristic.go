package goap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Heuristic estimates the remaining cost from current to goal. It must be a
// pure function of its arguments.
type Heuristic interface {
	Estimate(current, goal WorldState) int
}

// HeuristicFunc adapts a function to Heuristic.
type HeuristicFunc func(current, goal WorldState) int

func (f HeuristicFunc) Estimate(current, goal WorldState) int {
	return f(current, goal)
}

// ZeroHeuristic turns the search into uniform cost search.
var ZeroHeuristic Heuristic = HeuristicFunc(func(WorldState, WorldState) int { return 0 })

// DistanceHeuristic scales the number of unmet goal facts.
func DistanceHeuristic(scale int) Heuristic {
	return HeuristicFunc(func(current, goal WorldState) int {
		return scale * current.DistanceTo(goal)
	})
}

// DefaultHeuristicScale is the scale used when none is configured.
const DefaultHeuristicScale = 2

// ParseHeuristic resolves a configured heuristic: "distance" (scaled by
// scale), "zero", or an expression accepted by NewExprHeuristic.
func ParseHeuristic(s string, scale int) (Heuristic, error) {
	switch strings.TrimSpace(s) {
	case "", "distance":
		return DistanceHeuristic(scale), nil
	case "zero":
		return ZeroHeuristic, nil
	default:
		return NewExprHeuristic(s)
	}
}

// exprEnv is the shape of the variables visible to heuristic expressions.
func exprEnv(current, goal WorldState) map[string]any {
	missing := current.DistanceState(goal).Facts()
	unmet := make([]string, len(missing))
	for i, f := range missing {
		unmet[i] = f.Entity + "." + f.Name
	}
	return map[string]any{
		"distance": len(missing),
		"goal":     goal.Len(),
		"facts":    current.Len(),
		"unmet":    unmet,
	}
}

// Compiled programs are shared between heuristics built from the same
// source, since agents typically rebuild their heuristic every tick.
var programCache, _ = lru.New[string, *vm.Program](128)

func compileHeuristic(source string) (*vm.Program, error) {
	if program, ok := programCache.Get(source); ok {
		return program, nil
	}
	program, err := expr.Compile(source,
		expr.Env(exprEnv(WorldState{}, WorldState{})),
		expr.AsInt(),
	)
	if err != nil {
		return nil, err
	}
	programCache.Add(source, program)
	return program, nil
}

// ExprHeuristic evaluates an expr-lang expression. The expression sees
// distance (unmet goal facts), goal (goal size), facts (current size) and
// unmet (the unmet facts as "entity.name" strings), and must yield an int,
// for example "distance * 2" or "len(unmet) + (facts > 10 ? 1 : 0)".
type ExprHeuristic struct {
	source  string
	program *vm.Program
	logger  *slog.Logger
}

// NewExprHeuristic compiles source.
func NewExprHeuristic(source string) (*ExprHeuristic, error) {
	program, err := compileHeuristic(source)
	if err != nil {
		return nil, fmt.Errorf("goap: invalid heuristic %q: %w", source, err)
	}
	return &ExprHeuristic{source: source, program: program, logger: slog.Default()}, nil
}

// Estimate evaluates the expression. Evaluation errors are logged and
// estimate zero, which keeps the search correct if slower.
func (h *ExprHeuristic) Estimate(current, goal WorldState) int {
	out, err := expr.Run(h.program, exprEnv(current, goal))
	if err != nil {
		h.logger.Warn("heuristic evaluation failed", "heuristic", h.source, "error", err)
		return 0
	}
	n, ok := out.(int)
	if !ok {
		h.logger.Warn("heuristic returned a non-int", "heuristic", h.source, "type", fmt.Sprintf("%T", out))
		return 0
	}
	return n
}

func (h *ExprHeuristic) String() string {
	return h.source
}

package command

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/joeycumines/goapjobs/internal/agent"
	"github.com/joeycumines/goapjobs/internal/config"
	"github.com/joeycumines/goapjobs/internal/goap"
	"github.com/joeycumines/goapjobs/internal/jobs"
	"github.com/joeycumines/goapjobs/internal/logging"
	"github.com/joeycumines/goapjobs/internal/reactive"
	"github.com/joeycumines/goapjobs/internal/scenario"
	"github.com/joeycumines/goapjobs/internal/world"
)

const (
	modeReplan   = "replan"
	modeExecutor = "executor"
	modeReactive = "reactive"
)

// SimulateCommand ticks the agents of a scenario until every goal is met or
// the tick budget runs out.
type SimulateCommand struct {
	*BaseCommand
	config *config.Config
	logs   *Logs
	ticks  int
	mode   string
}

func NewSimulateCommand(cfg *config.Config, logs *Logs) *SimulateCommand {
	return &SimulateCommand{
		BaseCommand: NewBaseCommand(
			"simulate",
			"Run the agents of a scenario tick by tick",
			"simulate [options] <scenario.yaml>",
		),
		config: cfg,
		logs:   logs,
	}
}

func (c *SimulateCommand) SetupFlags(fs *flag.FlagSet) {
	ticks, err := config.DefaultSchema().ResolveInt(c.config, "simulate", "ticks")
	if err != nil || ticks <= 0 {
		ticks = 20
	}
	fs.IntVar(&c.ticks, "ticks", ticks, "Maximum number of ticks")
	fs.StringVar(&c.mode, "mode", modeReplan, "replan: plan again every tick; executor: plan once and run it as a behaviour tree; reactive: run a PA-BT tree over a fact board")
}

func (c *SimulateCommand) Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		_, _ = fmt.Fprintf(stderr, "Usage: goapjobs %s\n", c.Usage())
		return fmt.Errorf("expected one scenario file")
	}
	if c.ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", c.ticks)
	}

	sc, sys, err := loadScenario(c.config, c.logs, args[0])
	if err != nil {
		return err
	}

	var ticks int
	var done bool
	switch c.mode {
	case modeReplan:
		ticks, done, err = c.replan(ctx, sc, sys, stdout)
	case modeExecutor:
		ticks, done, err = c.execute(ctx, sc, sys, stdout)
	case modeReactive:
		ticks, done, err = c.react(ctx, sc, stdout)
	default:
		return fmt.Errorf("invalid mode: %s", c.mode)
	}
	if err != nil {
		return err
	}

	if done {
		_, _ = fmt.Fprintf(stdout, "goal reached after %d tick(s)\n", ticks)
	} else {
		_, _ = fmt.Fprintf(stdout, "stopped after %d tick(s)\n", ticks)
	}
	for _, e := range sc.Registry.Entities() {
		_, _ = fmt.Fprintf(stdout, "  %s\n", e)
	}
	c.summary(stdout)
	return nil
}

// replan ticks the agent system; each tick every agent plans from its
// current belief and performs one step.
func (c *SimulateCommand) replan(ctx context.Context, sc *scenario.Scenario, sys *agent.System, stdout io.Writer) (int, bool, error) {
	for tick := 1; tick <= c.ticks; tick++ {
		results, err := sys.Tick(ctx)
		if err != nil {
			return tick, false, err
		}

		settled := true
		for _, r := range results {
			name := tagOf(sc.Registry, r.Agent)
			switch {
			case r.Err != nil:
				settled = false
				_, _ = fmt.Fprintf(stdout, "tick %d %s: idle (%v)\n", tick, name, r.Err)
			case r.Action == "":
				_, _ = fmt.Fprintf(stdout, "tick %d %s: goal met\n", tick, name)
			case r.Done:
				settled = false
				_, _ = fmt.Fprintf(stdout, "tick %d %s: %s done\n", tick, name, r.Action)
			default:
				settled = false
				_, _ = fmt.Fprintf(stdout, "tick %d %s: %s\n", tick, name, r.Action)
			}
		}
		if settled {
			return tick, true, nil
		}
	}
	return c.ticks, false, nil
}

// execute plans once and ticks each plan as a behaviour tree.
func (c *SimulateCommand) execute(ctx context.Context, sc *scenario.Scenario, sys *agent.System, stdout io.Writer) (int, bool, error) {
	m, err := newManager(c.config, c.logs, 0)
	if err != nil {
		return 0, false, err
	}
	defer m.Shutdown()

	plans, err := sys.PlanAll(ctx, m, jobs.Normal)
	if err != nil {
		return 0, false, err
	}

	var trees []*tree
	for _, r := range plans {
		name := tagOf(sc.Registry, r.Agent)
		if r.Err != nil {
			_, _ = fmt.Fprintf(stdout, "%s: no plan: %v\n", name, r.Err)
			continue
		}
		applier, _ := sc.Registry.Get(r.Agent)
		_, _ = fmt.Fprintf(stdout, "%s: %s\n", name, r.Plan)
		trees = append(trees, &tree{
			name:   name,
			node:   agent.NewExecutor(r.Plan, applier, sc.Registry),
			status: bt.Running,
		})
	}
	return c.tickTrees(ctx, trees, len(plans), stdout)
}

// react builds one PA-BT tree per agent over a board seeded with the
// agent's state, and ticks the trees until they settle.
func (c *SimulateCommand) react(ctx context.Context, sc *scenario.Scenario, stdout io.Writer) (int, bool, error) {
	var trees []*tree
	for _, ag := range sc.Agents {
		name := ag.Entity.Tag()
		board := reactive.NewBoard(ag.Component.State)
		node, err := reactive.New(
			board,
			ag.Component.Goal,
			ag.Component.Actions,
			performer(sc.Registry, ag.Entity.ID()),
			c.logs.logger().With("agent", name),
		)
		if err != nil {
			return 0, false, fmt.Errorf("%s: %w", name, err)
		}
		_, _ = fmt.Fprintf(stdout, "%s: reactive, %d action(s)\n", name, len(ag.Component.Actions))
		trees = append(trees, &tree{name: name, node: node, status: bt.Running})
	}
	return c.tickTrees(ctx, trees, len(sc.Agents), stdout)
}

// performer runs one tick of an action for the entity id. Untargeted
// actions complete immediately, as they do for the agent system.
func performer(registry *world.Registry, id string) reactive.Performer {
	return func(a *goap.Action) (bool, error) {
		if a.Target() == "" {
			return true, nil
		}
		applier, ok := registry.Get(id)
		if !ok {
			return false, fmt.Errorf("agent entity %s is gone", id)
		}
		target, ok := registry.Get(a.Target())
		if !ok {
			return false, fmt.Errorf("target %s of %s is gone", a.Target(), a.Name())
		}
		return a.Perform(applier, target), nil
	}
}

type tree struct {
	name   string
	node   bt.Node
	status bt.Status
}

// tickTrees ticks every running tree once per tick. It succeeds when all of
// want trees report bt.Success.
func (c *SimulateCommand) tickTrees(ctx context.Context, trees []*tree, want int, stdout io.Writer) (int, bool, error) {
	allDone := func() bool {
		for _, t := range trees {
			if t.status != bt.Success {
				return false
			}
		}
		return len(trees) == want
	}

	for tick := 1; tick <= c.ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return tick, false, err
		}
		active := 0
		for _, t := range trees {
			if t.status != bt.Running {
				continue
			}
			active++
			status, err := t.node.Tick()
			if err != nil {
				c.logs.logger().Warn("behaviour tree failed", "agent", t.name, "error", err)
				status = bt.Failure
			}
			t.status = status
			_, _ = fmt.Fprintf(stdout, "tick %d %s: %s\n", tick, t.name, status)
		}
		if active == 0 {
			return tick - 1, allDone(), nil
		}
		if allDone() {
			return tick, true, nil
		}
	}
	return c.ticks, allDone(), nil
}

// summary reports the warnings and errors logged during the run.
func (c *SimulateCommand) summary(stdout io.Writer) {
	if c.logs == nil || c.logs.Ring == nil {
		return
	}
	var problems []logging.Entry
	for _, e := range c.logs.Ring.Entries() {
		if e.Level >= slog.LevelWarn {
			problems = append(problems, e)
		}
	}
	_, _ = fmt.Fprintf(stdout, "log: %d entries, %d warnings or errors\n", c.logs.Ring.Len(), len(problems))
	for _, e := range problems[max(0, len(problems)-5):] {
		_, _ = fmt.Fprintf(stdout, "  %s %s\n", e.Level, e.Message)
	}
}

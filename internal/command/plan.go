package command

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/joeycumines/goapjobs/internal/config"
)

// PlanCommand plans every agent of a scenario once, concurrently on a task
// manager, and prints the plans without performing them.
type PlanCommand struct {
	*BaseCommand
	config   *config.Config
	logs     *Logs
	priority string
	workers  int
}

func NewPlanCommand(cfg *config.Config, logs *Logs) *PlanCommand {
	return &PlanCommand{
		BaseCommand: NewBaseCommand(
			"plan",
			"Print the plan of every agent in a scenario",
			"plan [options] <scenario.yaml>",
		),
		config: cfg,
		logs:   logs,
	}
}

func (c *PlanCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.priority, "priority", "normal", "Priority of the planning tasks")
	fs.IntVar(&c.workers, "workers", 0, "Worker pool size (overrides jobs.max-workers)")
}

func (c *PlanCommand) Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		_, _ = fmt.Fprintf(stderr, "Usage: goapjobs %s\n", c.Usage())
		return fmt.Errorf("expected one scenario file")
	}
	priority, err := parsePriority(c.priority)
	if err != nil {
		return err
	}

	sc, sys, err := loadScenario(c.config, c.logs, args[0])
	if err != nil {
		return err
	}

	m, err := newManager(c.config, c.logs, c.workers)
	if err != nil {
		return err
	}
	defer m.Shutdown()

	results, err := sys.PlanAll(ctx, m, priority)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "scenario: %s\n", sc.Name)
	for _, r := range results {
		name := tagOf(sc.Registry, r.Agent)
		switch {
		case r.Err != nil:
			_, _ = fmt.Fprintf(stdout, "%s: no plan: %v\n", name, r.Err)
		case len(r.Plan) == 0:
			_, _ = fmt.Fprintf(stdout, "%s: goal already met\n", name)
		default:
			_, _ = fmt.Fprintf(stdout, "%s: %s (cost %d)\n", name, r.Plan, r.Plan.Cost())
		}
	}

	c.logs.logger().Debug("planning finished", "stats", m.Stats())
	return nil
}

package command

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joeycumines/goapjobs/internal/config"
	"github.com/joeycumines/goapjobs/internal/jobs"
)

// StressCommand floods a task manager with trees of nested tasks. Every
// task waits on two children, so workers spend most of their time helping
// from inside Wait.
type StressCommand struct {
	*BaseCommand
	config   *config.Config
	logs     *Logs
	tasks    int
	depth    int
	priority string
	workers  int
}

func NewStressCommand(cfg *config.Config, logs *Logs) *StressCommand {
	return &StressCommand{
		BaseCommand: NewBaseCommand(
			"stress",
			"Stress the task manager with nested waits",
			"stress [options]",
		),
		config: cfg,
		logs:   logs,
	}
}

func (c *StressCommand) SetupFlags(fs *flag.FlagSet) {
	schema := config.DefaultSchema()
	tasks, _ := schema.ResolveInt(c.config, "stress", "tasks")
	depth, _ := schema.ResolveInt(c.config, "stress", "depth")
	fs.IntVar(&c.tasks, "tasks", tasks, "Top level tasks to submit")
	fs.IntVar(&c.depth, "depth", depth, "Depth of each task tree")
	fs.StringVar(&c.priority, "priority", schema.Resolve(c.config, "stress", "priority"), "Priority of the top level tasks")
	fs.IntVar(&c.workers, "workers", 0, "Worker pool size (overrides jobs.max-workers)")
}

func (c *StressCommand) Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	if c.tasks <= 0 || c.depth < 0 {
		return fmt.Errorf("tasks must be positive and depth not negative, got %d and %d", c.tasks, c.depth)
	}
	priority, err := parsePriority(c.priority)
	if err != nil {
		return err
	}

	m, err := newManager(c.config, c.logs, c.workers)
	if err != nil {
		return err
	}
	defer m.Shutdown()

	want := treeSize(c.depth)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.MaxWorkers())
	for i := 0; i < c.tasks; i++ {
		g.Go(func() error {
			h := jobs.Run(m, priority, func() int { return countTree(m, c.depth) })
			got, err := h.WaitContext(gctx)
			if err != nil {
				return err
			}
			if got != want {
				return fmt.Errorf("task %d counted %d nodes, want %d", i, got, want)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	stats := m.Stats()
	c.logs.logger().Info("stress finished", "elapsed", elapsed, "stats", stats)

	_, _ = fmt.Fprintf(stdout, "ran %d tasks in %s\n", c.tasks*want, elapsed.Round(time.Millisecond))
	_, _ = fmt.Fprintf(stdout, "workers: %d (max %d)\n", stats.Workers, m.MaxWorkers())
	_, _ = fmt.Fprintf(stdout, "executed: %d, helped: %d, direct: %d, queued: %d\n", stats.Executed, stats.Helped, stats.Direct, stats.Queued)
	_, _ = fmt.Fprintf(stdout, "panics: %d, dropped: %d\n", stats.Panics, stats.Dropped)
	return nil
}

// countTree runs a binary tree of tasks of the given depth and returns how
// many ran. Children alternate between high and low priority.
func countTree(m *jobs.Manager, depth int) int {
	if depth == 0 {
		return 1
	}
	left := jobs.Run(m, jobs.High, func() int { return countTree(m, depth-1) })
	right := jobs.Run(m, jobs.Low, func() int { return countTree(m, depth-1) })
	l, _ := left.Wait()
	r, _ := right.Wait()
	return 1 + l + r
}

func treeSize(depth int) int {
	return 1<<(depth+1) - 1
}

package agent

import (
	"context"
	"log/slog"
	"testing"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/joeycumines/goapjobs/internal/goap"
	"github.com/joeycumines/goapjobs/internal/jobs"
	"github.com/joeycumines/goapjobs/internal/logging"
	"github.com/joeycumines/goapjobs/internal/world"
)

type fixture struct {
	registry *world.Registry
	ring     *logging.RingHandler
	system   *System
	hunter   *world.Entity
	prey     *world.Entity
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{registry: world.NewRegistry(), ring: logging.NewRingHandler(100, nil)}
	var err error
	f.hunter, err = f.registry.Spawn("hunter", r3.Vec{})
	require.NoError(t, err)
	f.prey, err = f.registry.Spawn("prey", r3.Vec{X: 1})
	require.NoError(t, err)
	cfg.Logger = slog.New(f.ring)
	f.system = NewSystem(f.registry, cfg)
	return f
}

func (f *fixture) chase() *Component {
	dead := goap.Fact{Entity: f.prey.ID(), Name: goap.FactDead}
	alive := dead
	dead.Value = true
	return &Component{
		Actions: []*goap.Action{goap.NewFollowAction("chase", 1, f.prey.ID())},
		State:   goap.NewWorldState("belief", alive),
		Goal:    goap.NewWorldState("goal", dead),
	}
}

func TestSystem_tickFollowsUntilDone(t *testing.T) {
	t.Parallel()
	for _, strict := range []bool{false, true} {
		f := newFixture(t, Config{Strict: strict})
		require.NoError(t, f.system.Attach(f.hunter.ID(), f.chase()))

		var results []StepResult
		for range 4 {
			r, err := f.system.Tick(context.Background())
			require.NoError(t, err)
			require.Len(t, r, 1)
			results = append(results, r[0])
		}

		for i, done := range []bool{false, false, true} {
			assert.Equal(t, "chase", results[i].Action, "tick %d", i)
			assert.Equal(t, done, results[i].Done, "tick %d", i)
			assert.NoError(t, results[i].Err)
		}
		assert.Empty(t, results[3].Action)
		assert.Empty(t, results[3].Plan)

		assert.Equal(t, r3.Vec{X: 1}, f.hunter.Position())
		state, ok := f.system.State(f.hunter.ID())
		require.True(t, ok)
		v, _ := state.Value(f.prey.ID(), goap.FactDead)
		assert.True(t, v)
		assert.Len(t, f.ring.Search("action completed"), 1)
	}
}

func TestSystem_noPlanIsNotFatal(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{})
	c := f.chase()
	c.Actions = nil
	require.NoError(t, f.system.Attach(f.hunter.ID(), c))

	for range 2 {
		results, err := f.system.Tick(context.Background())
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.ErrorIs(t, results[0].Err, goap.ErrNoPlan)
	}
	entries := f.ring.Search("no plan")
	require.Len(t, entries, 2)
	assert.Equal(t, slog.LevelInfo, entries[0].Level)
	assert.Equal(t, r3.Vec{}, f.hunter.Position())
}

func TestSystem_untargetedActionCompletes(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{Heuristic: goap.ZeroHeuristic})
	think := goap.NewAction("think", 1, nil).SetEffect("mind", "ready", true)
	require.NoError(t, f.system.Attach(f.hunter.ID(), &Component{
		Actions: []*goap.Action{think},
		Goal:    goap.NewWorldState("goal", goap.Fact{Entity: "mind", Name: "ready", Value: true}),
	}))

	results, err := f.system.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "think", results[0].Action)
	assert.True(t, results[0].Done)
}

func TestSystem_attachDetach(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{})
	assert.Error(t, f.system.Attach("nobody", f.chase()))

	require.NoError(t, f.system.Attach(f.hunter.ID(), f.chase()))
	require.NoError(t, f.system.Attach(f.prey.ID(), &Component{}))
	require.NoError(t, f.system.Attach(f.hunter.ID(), f.chase()))
	assert.Equal(t, []string{f.hunter.ID(), f.prey.ID()}, f.system.Agents())

	f.system.Detach(f.hunter.ID())
	assert.Equal(t, []string{f.prey.ID()}, f.system.Agents())
	_, ok := f.system.State(f.hunter.ID())
	assert.False(t, ok)
}

func TestSystem_tickCancelled(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{})
	require.NoError(t, f.system.Attach(f.hunter.ID(), f.chase()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.system.Tick(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSystem_planAll(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Config{})
	require.NoError(t, f.system.Attach(f.hunter.ID(), f.chase()))
	require.NoError(t, f.system.Attach(f.prey.ID(), &Component{
		Goal: goap.NewWorldState("", goap.Fact{Entity: "x", Name: "y", Value: true}),
	}))

	m := jobs.New(jobs.Config{MaxWorkers: 2})
	t.Cleanup(m.Shutdown)

	results, err := f.system.PlanAll(context.Background(), m, jobs.High)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, f.hunter.ID(), results[0].Agent)
	require.NoError(t, results[0].Err)
	assert.Equal(t, []string{"chase"}, results[0].Plan.Names())
	assert.Equal(t, f.prey.ID(), results[1].Agent)
	assert.ErrorIs(t, results[1].Err, goap.ErrNoPlan)

	// planning performs nothing
	assert.Equal(t, r3.Vec{}, f.hunter.Position())
}

func TestExecutor(t *testing.T) {
	t.Parallel()
	registry := world.NewRegistry()
	applier, err := registry.Spawn("applier", r3.Vec{})
	require.NoError(t, err)
	first, err := registry.Spawn("first", r3.Vec{X: 1})
	require.NoError(t, err)
	second, err := registry.Spawn("second", r3.Vec{X: 1, Y: 1})
	require.NoError(t, err)

	a := goap.NewFollowAction("to-first", 1, first.ID())
	b := goap.NewFollowAction("to-second", 1, second.ID())
	node := NewExecutor(goap.Plan{b, a}, applier, registry)

	var (
		status bt.Status
		ticks  int
	)
	for ticks < 10 && status != bt.Success {
		status, err = node.Tick()
		require.NoError(t, err)
		ticks++
	}
	assert.Equal(t, bt.Success, status)
	assert.Equal(t, 5, ticks)
	assert.Equal(t, r3.Vec{X: 1, Y: 1}, applier.Position())
}

func TestExecutor_missingTarget(t *testing.T) {
	t.Parallel()
	registry := world.NewRegistry()
	applier, err := registry.Spawn("applier", r3.Vec{})
	require.NoError(t, err)
	node := NewExecutor(goap.Plan{goap.NewFollowAction("chase", 1, "ghost")}, applier, registry)
	status, err := node.Tick()
	assert.Equal(t, bt.Failure, status)
	assert.ErrorContains(t, err, "ghost")
}

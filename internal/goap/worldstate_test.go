package goap

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fact(entity, name string, value bool) Fact {
	return Fact{Entity: entity, Name: name, Value: value}
}

func TestWorldState_meetsGoalReflexive(t *testing.T) {
	t.Parallel()
	for _, ws := range []WorldState{
		{},
		NewWorldState("empty"),
		NewWorldState("one", fact("e", "a", true)),
		NewWorldState("mixed", fact("e", "a", true), fact("e", "b", false), fact("f", "a", false)),
	} {
		assert.True(t, ws.MeetsGoal(ws), ws.String())
		assert.Zero(t, ws.DistanceTo(ws), ws.String())
		assert.True(t, ws.Equal(ws.Clone()), ws.String())
	}
}

func TestWorldState_setFactReplaces(t *testing.T) {
	t.Parallel()
	var ws WorldState
	ws.SetFact("e", "alive", true)
	ws.SetFact("e", "alive", false)
	require.Equal(t, 1, ws.Len())
	v, ok := ws.Value("e", "alive")
	require.True(t, ok)
	assert.False(t, v)
	assert.True(t, ws.HasFact("e", "alive"))
	assert.False(t, ws.HasFact("e", "dead"))

	// later facts win in the constructor too
	ws = NewWorldState("", fact("e", "a", true), fact("e", "a", false))
	assert.Equal(t, []Fact{fact("e", "a", false)}, ws.Facts())
}

func TestWorldState_distance(t *testing.T) {
	t.Parallel()
	state := NewWorldState("state", fact("e", "a", true), fact("e", "b", false))
	for _, tc := range []struct {
		name string
		goal WorldState
		want int
	}{
		{"empty goal", NewWorldState("g"), 0},
		{"subset", NewWorldState("g", fact("e", "a", true)), 0},
		{"wrong value", NewWorldState("g", fact("e", "a", false)), 1},
		{"false needs explicit fact", NewWorldState("g", fact("e", "c", false)), 1},
		{"explicit false", NewWorldState("g", fact("e", "b", false)), 0},
		{"all unmet", NewWorldState("g", fact("x", "a", true), fact("e", "b", true), fact("e", "c", true)), 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, state.DistanceTo(tc.goal))
			assert.Equal(t, tc.want == 0, state.MeetsGoal(tc.goal))
			diff := state.DistanceState(tc.goal)
			assert.Equal(t, tc.want, diff.Len())
			assert.Equal(t, "Difference state - g", diff.Name)
			for _, f := range diff.Facts() {
				v, ok := tc.goal.Value(f.Entity, f.Name)
				require.True(t, ok)
				assert.Equal(t, v, f.Value)
			}
		})
	}
}

func TestWorldState_equalityIgnoresName(t *testing.T) {
	t.Parallel()
	a := NewWorldState("a", fact("e", "x", true), fact("f", "y", false))
	b := NewWorldState("b", fact("f", "y", false), fact("e", "x", true))
	c := NewWorldState("a", fact("e", "x", true), fact("f", "y", true))

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Signature(), b.Signature())
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Signature(), c.Signature())
	assert.False(t, a.Equal(NewWorldState("a", fact("e", "x", true))))

	// separators inside ids cannot forge a signature
	d := NewWorldState("", fact("e.x", "y", true))
	e := NewWorldState("", fact("e", "x.y", true))
	assert.NotEqual(t, d.Signature(), e.Signature())
}

func TestWorldState_cloneIsIndependent(t *testing.T) {
	t.Parallel()
	a := NewWorldState("a", fact("e", "x", true))
	b := a.Clone()
	b.SetFact("e", "x", false)
	c := a.With(fact("e", "y", true))

	v, _ := a.Value("e", "x")
	assert.True(t, v)
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "a", c.Name)
}

func TestWorldState_formatting(t *testing.T) {
	t.Parallel()
	ws := NewWorldState("w", fact("b", "z", false), fact("a", "y", true), fact("a", "x", true))
	assert.Equal(t, []Fact{fact("a", "x", true), fact("a", "y", true), fact("b", "z", false)}, ws.Facts())
	assert.Equal(t, "w{a.x=true, a.y=true, b.z=false}", ws.String())

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("state", "ws", ws)
	assert.Contains(t, buf.String(), "ws.name=w")
	assert.Contains(t, buf.String(), "ws.b.z=false")
}

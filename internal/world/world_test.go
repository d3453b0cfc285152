package world

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/joeycumines/goapjobs/internal/goap"
)

var _ goap.Entity = (*Entity)(nil)

func TestEntity(t *testing.T) {
	t.Parallel()
	e := NewEntity("player", r3.Vec{X: 1, Y: 2, Z: 3})
	_, err := uuid.Parse(e.ID())
	require.NoError(t, err)
	assert.Equal(t, "player", e.Tag())
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, e.Position())
	assert.False(t, e.Transform().Looking)

	e.SetPosition(r3.Vec{X: 4})
	e.LookAt(r3.Vec{Y: 9})
	tr := e.Transform()
	assert.Equal(t, r3.Vec{X: 4}, tr.Position)
	assert.True(t, tr.Looking)
	assert.Equal(t, r3.Vec{Y: 9}, tr.LookAt)
	assert.Contains(t, e.String(), "player("+e.ID()+") at (4, 0, 0)")

	assert.NotEqual(t, e.ID(), NewEntity("player", r3.Vec{}).ID())
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	a, err := r.Spawn("a", r3.Vec{})
	require.NoError(t, err)
	b := NewEntityWithID("id-b", "b", r3.Vec{})
	require.NoError(t, r.Add(b))
	require.NoError(t, r.Add(NewEntityWithID("id-c", "", r3.Vec{})))
	require.NoError(t, r.Add(NewEntityWithID("id-d", "", r3.Vec{})))

	assert.Error(t, r.Add(NewEntityWithID("id-b", "other", r3.Vec{})))
	_, err = r.Spawn("a", r3.Vec{})
	assert.Error(t, err)

	got, ok := r.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)
	got, ok = r.ByTag("b")
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Equal(t, 4, r.Len())

	all := r.Entities()
	require.Len(t, all, 4)
	assert.Equal(t, "id-c", all[0].ID())
	assert.Equal(t, "id-d", all[1].ID())
	assert.Same(t, a, all[2])

	r.Remove("id-b")
	_, ok = r.ByTag("b")
	assert.False(t, ok)
	_, ok = r.Get("id-b")
	assert.False(t, ok)
	r.Remove("missing")
	assert.Equal(t, 3, r.Len())
}

func TestEntity_concurrentMoves(t *testing.T) {
	t.Parallel()
	e := NewEntity("e", r3.Vec{})
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				e.SetPosition(r3.Add(e.Position(), r3.Vec{X: 1}))
				e.LookAt(r3.Vec{})
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, e.Position().X, 800.0)
	assert.Greater(t, e.Position().X, 0.0)
}

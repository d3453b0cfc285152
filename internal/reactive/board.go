package reactive

import (
	"sync"

	"github.com/joeycumines/goapjobs/internal/goap"
)

// Board is a concurrency-safe fact store that reactive plans read their
// conditions from and write their effects to.
type Board struct {
	mu    sync.RWMutex
	facts map[goap.FactKey]bool
}

// NewBoard returns a board seeded with the facts of initial.
func NewBoard(initial goap.WorldState) *Board {
	b := &Board{facts: make(map[goap.FactKey]bool, initial.Len())}
	b.Apply(initial)
	return b
}

func (b *Board) Get(key goap.FactKey) (value, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok = b.facts[key]
	return value, ok
}

func (b *Board) Set(entity, name string, value bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.facts[goap.FactKey{Entity: entity, Name: name}] = value
}

func (b *Board) Delete(entity, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.facts, goap.FactKey{Entity: entity, Name: name})
}

// Apply writes every fact of ws.
func (b *Board) Apply(ws goap.WorldState) {
	facts := ws.Facts()
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, f := range facts {
		b.facts[f.Key()] = f.Value
	}
}

// Snapshot copies the board into a WorldState.
func (b *Board) Snapshot(name string) goap.WorldState {
	b.mu.RLock()
	facts := make([]goap.Fact, 0, len(b.facts))
	for k, v := range b.facts {
		facts = append(facts, goap.Fact{Entity: k.Entity, Name: k.Name, Value: v})
	}
	b.mu.RUnlock()
	return goap.NewWorldState(name, facts...)
}

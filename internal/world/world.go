// Package world holds the live entities that actions perform against.
package world

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is an entity's placement.
type Transform struct {
	Position r3.Vec
	// LookAt is only meaningful while Looking is set.
	LookAt  r3.Vec
	Looking bool
}

// Entity is a tagged object with a stable identifier. Its transform is
// guarded so that agents ticked from different goroutines may read and move
// it.
type Entity struct {
	id  string
	tag string

	mu        sync.RWMutex
	transform Transform
}

// NewEntity returns an entity with a fresh random UUID.
func NewEntity(tag string, position r3.Vec) *Entity {
	return NewEntityWithID(uuid.NewString(), tag, position)
}

// NewEntityWithID is NewEntity with a caller supplied id.
func NewEntityWithID(id, tag string, position r3.Vec) *Entity {
	return &Entity{id: id, tag: tag, transform: Transform{Position: position}}
}

func (e *Entity) ID() string  { return e.id }
func (e *Entity) Tag() string { return e.tag }

func (e *Entity) Position() r3.Vec {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.transform.Position
}

func (e *Entity) SetPosition(pos r3.Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transform.Position = pos
}

func (e *Entity) LookAt(pos r3.Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transform.LookAt = pos
	e.transform.Looking = true
}

// Transform returns a copy of the current transform.
func (e *Entity) Transform() Transform {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.transform
}

func (e *Entity) String() string {
	p := e.Position()
	return fmt.Sprintf("%s(%s) at (%g, %g, %g)", e.tag, e.id, p.X, p.Y, p.Z)
}

// Registry indexes entities by id and by tag. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*Entity
	byTag map[string]*Entity
}

func NewRegistry() *Registry {
	return &Registry{
		byID:  make(map[string]*Entity),
		byTag: make(map[string]*Entity),
	}
}

// Add registers e. Ids must be unique, and so must non-empty tags.
func (r *Registry) Add(e *Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[e.id]; ok {
		return fmt.Errorf("world: duplicate entity id %s", e.id)
	}
	if e.tag != "" {
		if _, ok := r.byTag[e.tag]; ok {
			return fmt.Errorf("world: duplicate entity tag %q", e.tag)
		}
		r.byTag[e.tag] = e
	}
	r.byID[e.id] = e
	return nil
}

// Spawn creates and registers a tagged entity.
func (r *Registry) Spawn(tag string, position r3.Vec) (*Entity, error) {
	e := NewEntity(tag, position)
	if err := r.Add(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[id]; ok {
		delete(r.byID, id)
		if r.byTag[e.tag] == e {
			delete(r.byTag, e.tag)
		}
	}
}

func (r *Registry) Get(id string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok
}

func (r *Registry) ByTag(tag string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byTag[tag]
	return e, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Entities returns every entity ordered by tag, then id.
func (r *Registry) Entities() []*Entity {
	r.mu.RLock()
	out := make([]*Entity, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Entity) int {
		if c := strings.Compare(a.tag, b.tag); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})
	return out
}

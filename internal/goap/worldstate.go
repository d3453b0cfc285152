package goap

import (
	"cmp"
	"hash/fnv"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// FactKey identifies a fact independently of its value.
type FactKey struct {
	Entity string
	Name   string
}

// Fact is one boolean assertion about an entity. Facts compare by value.
type Fact struct {
	Entity string
	Name   string
	Value  bool
}

func (f Fact) Key() FactKey {
	return FactKey{Entity: f.Entity, Name: f.Name}
}

func (f Fact) String() string {
	return f.Entity + "." + f.Name + "=" + strconv.FormatBool(f.Value)
}

// WorldState is a set of facts holding at most one value per key.
//
// The zero value is an empty state. Assignment shares the underlying set;
// use Clone or With to derive an independent state. Name is a label only and
// takes no part in Equal or Signature.
type WorldState struct {
	Name  string
	facts map[FactKey]bool
}

// NewWorldState returns a state holding facts. Later facts win on key
// conflicts.
func NewWorldState(name string, facts ...Fact) WorldState {
	ws := WorldState{Name: name, facts: make(map[FactKey]bool, len(facts))}
	for _, f := range facts {
		ws.facts[f.Key()] = f.Value
	}
	return ws
}

// Clone returns an independent copy.
func (ws WorldState) Clone() WorldState {
	facts := make(map[FactKey]bool, len(ws.facts))
	for k, v := range ws.facts {
		facts[k] = v
	}
	return WorldState{Name: ws.Name, facts: facts}
}

// With returns a copy of ws with facts applied.
func (ws WorldState) With(facts ...Fact) WorldState {
	c := ws.Clone()
	for _, f := range facts {
		c.facts[f.Key()] = f.Value
	}
	return c
}

// SetFact asserts entity.name = value, replacing any previous value.
func (ws *WorldState) SetFact(entity, name string, value bool) {
	if ws.facts == nil {
		ws.facts = make(map[FactKey]bool)
	}
	ws.facts[FactKey{Entity: entity, Name: name}] = value
}

// HasFact reports whether any value is asserted for entity.name.
func (ws WorldState) HasFact(entity, name string) bool {
	_, ok := ws.facts[FactKey{Entity: entity, Name: name}]
	return ok
}

// Value returns the value asserted for entity.name, if any.
func (ws WorldState) Value(entity, name string) (value, ok bool) {
	value, ok = ws.facts[FactKey{Entity: entity, Name: name}]
	return value, ok
}

func (ws WorldState) Len() int {
	return len(ws.facts)
}

// Facts lists the facts ordered by entity then name.
func (ws WorldState) Facts() []Fact {
	out := make([]Fact, 0, len(ws.facts))
	for k, v := range ws.facts {
		out = append(out, Fact{Entity: k.Entity, Name: k.Name, Value: v})
	}
	slices.SortFunc(out, func(a, b Fact) int {
		return cmp.Or(cmp.Compare(a.Entity, b.Entity), cmp.Compare(a.Name, b.Name))
	})
	return out
}

// holds reports whether f is asserted with the same value.
func (ws WorldState) holds(f FactKey, value bool) bool {
	v, ok := ws.facts[f]
	return ok && v == value
}

// MeetsGoal reports whether every fact of goal holds in ws. A goal fact
// asserting false is only met by an explicit false, not by absence.
func (ws WorldState) MeetsGoal(goal WorldState) bool {
	for k, v := range goal.facts {
		if !ws.holds(k, v) {
			return false
		}
	}
	return true
}

// DistanceTo counts the facts of goal that do not hold in ws.
func (ws WorldState) DistanceTo(goal WorldState) int {
	n := 0
	for k, v := range goal.facts {
		if !ws.holds(k, v) {
			n++
		}
	}
	return n
}

// DistanceState returns the facts of goal that do not hold in ws.
func (ws WorldState) DistanceState(goal WorldState) WorldState {
	diff := WorldState{
		Name:  "Difference " + ws.Name + " - " + goal.Name,
		facts: make(map[FactKey]bool),
	}
	for k, v := range goal.facts {
		if !ws.holds(k, v) {
			diff.facts[k] = v
		}
	}
	return diff
}

// Equal compares fact sets, ignoring names.
func (ws WorldState) Equal(other WorldState) bool {
	if len(ws.facts) != len(other.facts) {
		return false
	}
	for k, v := range ws.facts {
		if !other.holds(k, v) {
			return false
		}
	}
	return true
}

// Signature is a canonical encoding of the fact set: equal states, and only
// equal states, share a signature.
func (ws WorldState) Signature() string {
	var b strings.Builder
	for _, f := range ws.Facts() {
		b.WriteString(strconv.Quote(f.Entity))
		b.WriteByte('.')
		b.WriteString(strconv.Quote(f.Name))
		if f.Value {
			b.WriteString("=1;")
		} else {
			b.WriteString("=0;")
		}
	}
	return b.String()
}

// Hash is a 64-bit FNV-1a hash of Signature.
func (ws WorldState) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(ws.Signature()))
	return h.Sum64()
}

func (ws WorldState) String() string {
	facts := ws.Facts()
	parts := make([]string, len(facts))
	for i, f := range facts {
		parts[i] = f.String()
	}
	return ws.Name + "{" + strings.Join(parts, ", ") + "}"
}

func (ws WorldState) LogValue() slog.Value {
	facts := ws.Facts()
	attrs := make([]slog.Attr, 0, len(facts)+1)
	if ws.Name != "" {
		attrs = append(attrs, slog.String("name", ws.Name))
	}
	for _, f := range facts {
		attrs = append(attrs, slog.Bool(f.Entity+"."+f.Name, f.Value))
	}
	return slog.GroupValue(attrs...)
}

// Package scenario loads YAML descriptions of entities and the agents that
// plan for them.
//
//	name: hunt
//	heuristic: distance * 2
//	entities:
//	  - tag: hunter
//	  - tag: prey
//	    position: [3, 0, 0]
//	agents:
//	  - entity: hunter
//	    state:
//	      - {entity: prey, name: Dead, value: false}
//	    goal:
//	      - {entity: prey, name: Dead, value: true}
//	    actions:
//	      - {name: chase, kind: follow, cost: 1, target: prey}
//
// Fact entities naming a declared tag are resolved to that entity's id; any
// other entity string is used verbatim.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the document root.
type File struct {
	Name      string       `yaml:"name"`
	Heuristic string       `yaml:"heuristic,omitempty"`
	Entities  []EntitySpec `yaml:"entities"`
	Agents    []AgentSpec  `yaml:"agents"`
}

type EntitySpec struct {
	Tag      string    `yaml:"tag"`
	Position []float64 `yaml:"position,omitempty"`
}

type FactSpec struct {
	Entity string `yaml:"entity"`
	Name   string `yaml:"name"`
	Value  bool   `yaml:"value"`
}

type ActionSpec struct {
	Name string `yaml:"name"`
	// Kind is "none" (the default) or "follow".
	Kind   string `yaml:"kind,omitempty"`
	Cost   int    `yaml:"cost"`
	Target string `yaml:"target,omitempty"`
	// Speed and Reach tune follow actions.
	Speed         float64    `yaml:"speed,omitempty"`
	Reach         float64    `yaml:"reach,omitempty"`
	Preconditions []FactSpec `yaml:"preconditions,omitempty"`
	Effects       []FactSpec `yaml:"effects,omitempty"`
}

type AgentSpec struct {
	Entity  string       `yaml:"entity"`
	State   []FactSpec   `yaml:"state,omitempty"`
	Goal    []FactSpec   `yaml:"goal"`
	Actions []ActionSpec `yaml:"actions"`
}

// Load reads and validates the scenario at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a scenario. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("scenario: empty document")
		}
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Encode renders f as YAML.
func (f *File) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

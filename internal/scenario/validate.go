package scenario

import (
	"errors"
	"fmt"

	"github.com/joeycumines/goapjobs/internal/goap"
)

// FieldError locates a validation failure.
type FieldError struct {
	Path string
	Err  error
}

func (e *FieldError) Error() string { return "scenario: " + e.Path + ": " + e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }

var (
	ErrRequired  = errors.New("required")
	ErrDuplicate = errors.New("duplicate")
	ErrUnknown   = errors.New("unknown")
	ErrInvalid   = errors.New("invalid")
)

func fieldErr(err error, format string, args ...any) error {
	return &FieldError{Path: fmt.Sprintf(format, args...), Err: err}
}

// Validate checks references and required fields, returning every problem
// found joined together.
func (f *File) Validate() error {
	var errs []error
	tags := make(map[string]bool, len(f.Entities))

	if f.Heuristic != "" {
		if _, err := goap.ParseHeuristic(f.Heuristic, goap.DefaultHeuristicScale); err != nil {
			errs = append(errs, fieldErr(fmt.Errorf("%w: %w", ErrInvalid, err), "heuristic"))
		}
	}

	for i, e := range f.Entities {
		switch {
		case e.Tag == "":
			errs = append(errs, fieldErr(ErrRequired, "entities[%d].tag", i))
		case tags[e.Tag]:
			errs = append(errs, fieldErr(fmt.Errorf("%w tag %q", ErrDuplicate, e.Tag), "entities[%d].tag", i))
		default:
			tags[e.Tag] = true
		}
		if n := len(e.Position); n != 0 && n != 3 {
			errs = append(errs, fieldErr(fmt.Errorf("%w: want 3 coordinates, got %d", ErrInvalid, n), "entities[%d].position", i))
		}
	}

	agents := make(map[string]bool, len(f.Agents))
	for i, a := range f.Agents {
		path := fmt.Sprintf("agents[%d]", i)
		switch {
		case a.Entity == "":
			errs = append(errs, fieldErr(ErrRequired, "%s.entity", path))
		case !tags[a.Entity]:
			errs = append(errs, fieldErr(fmt.Errorf("%w entity %q", ErrUnknown, a.Entity), "%s.entity", path))
		case agents[a.Entity]:
			errs = append(errs, fieldErr(fmt.Errorf("%w agent for %q", ErrDuplicate, a.Entity), "%s.entity", path))
		default:
			agents[a.Entity] = true
		}
		errs = append(errs, validateFacts(path+".state", a.State)...)
		errs = append(errs, validateFacts(path+".goal", a.Goal)...)
		for j, act := range a.Actions {
			errs = append(errs, validateAction(fmt.Sprintf("%s.actions[%d]", path, j), act, tags)...)
		}
	}
	return errors.Join(errs...)
}

func validateFacts(path string, facts []FactSpec) []error {
	var errs []error
	for i, fact := range facts {
		if fact.Entity == "" {
			errs = append(errs, fieldErr(ErrRequired, "%s[%d].entity", path, i))
		}
		if fact.Name == "" {
			errs = append(errs, fieldErr(ErrRequired, "%s[%d].name", path, i))
		}
	}
	return errs
}

func validateAction(path string, a ActionSpec, tags map[string]bool) []error {
	var errs []error
	if a.Name == "" {
		errs = append(errs, fieldErr(ErrRequired, "%s.name", path))
	}
	if a.Cost < 0 {
		errs = append(errs, fieldErr(fmt.Errorf("%w: negative cost %d", ErrInvalid, a.Cost), "%s.cost", path))
	}
	kind, ok := goap.ParseKind(a.Kind)
	if !ok {
		errs = append(errs, fieldErr(fmt.Errorf("%w kind %q", ErrUnknown, a.Kind), "%s.kind", path))
	}
	switch {
	case a.Target != "" && !tags[a.Target]:
		errs = append(errs, fieldErr(fmt.Errorf("%w entity %q", ErrUnknown, a.Target), "%s.target", path))
	case a.Target == "" && kind == goap.KindFollow:
		errs = append(errs, fieldErr(ErrRequired, "%s.target", path))
	}
	if a.Speed < 0 || a.Reach < 0 {
		errs = append(errs, fieldErr(fmt.Errorf("%w: negative speed or reach", ErrInvalid), "%s", path))
	}
	errs = append(errs, validateFacts(path+".preconditions", a.Preconditions)...)
	errs = append(errs, validateFacts(path+".effects", a.Effects)...)
	return errs
}

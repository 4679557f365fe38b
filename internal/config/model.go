// Package config holds the format-agnostic pipeline model produced by a
// Loader. The model mirrors the declarative surface: a named pipeline made
// of tasks, each with a kind, declared inputs, and literal arguments.
package config

import (
	"context"
	"fmt"
)

// Dependency kind strings accepted in declarative input blocks.
const (
	KindRequired = "required"
	KindOptional = "optional"
	KindFallback = "fallback"
)

// Model is the root of the loaded configuration.
type Model struct {
	Pipeline *Pipeline
}

// Pipeline is one declared workflow.
type Pipeline struct {
	Name  string
	Tasks []*TaskSpec
}

// TaskSpec describes one declared task: which registered kind runs it, which
// inputs it draws from earlier results, and its literal arguments.
type TaskSpec struct {
	Name      string
	Kind      string
	Inputs    []*InputSpec
	Arguments map[string]any
}

// InputSpec describes one declared input.
type InputSpec struct {
	// Name is the parameter name the resolved value is delivered under.
	Name string
	// Source is the dotted path into the shared context.
	Source string
	// Kind is one of KindRequired, KindOptional, KindFallback. Empty means
	// required.
	Kind string
	// Default is the fallback value; only meaningful for KindFallback.
	Default any
	// Transform optionally names a built-in transform.
	Transform string
}

// Loader loads a pipeline model from a path. Implementations own the file
// format; the rest of the system only sees the Model.
type Loader interface {
	Load(ctx context.Context, path string) (*Model, error)
}

// Validate checks the structural integrity of the model: a pipeline is
// present, names are set, and input kinds are recognized. Cross-task
// dependency validation belongs to the resolver, not here.
func (m *Model) Validate() error {
	if m.Pipeline == nil {
		return fmt.Errorf("no pipeline defined")
	}
	if m.Pipeline.Name == "" {
		return fmt.Errorf("pipeline has no name")
	}
	for i, spec := range m.Pipeline.Tasks {
		if spec.Name == "" {
			return fmt.Errorf("pipeline %q: task at position %d has no name", m.Pipeline.Name, i)
		}
		if spec.Kind == "" {
			return fmt.Errorf("task %q has no kind", spec.Name)
		}
		for _, in := range spec.Inputs {
			if in.Name == "" {
				return fmt.Errorf("task %q declares an unnamed input", spec.Name)
			}
			if in.Source == "" {
				return fmt.Errorf("task %q input %q has no source", spec.Name, in.Name)
			}
			switch in.Kind {
			case "", KindRequired, KindOptional, KindFallback:
			default:
				return fmt.Errorf("task %q input %q has unknown kind %q", spec.Name, in.Name, in.Kind)
			}
		}
	}
	return nil
}

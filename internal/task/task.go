// Package task defines the contract between the orchestration engine and the
// units of work it schedules: the Task interface and the declarative
// description of the inputs a task draws from earlier results.
package task

import (
	"context"
	"strings"

	"github.com/vk/taskpipe/internal/result"
)

// DependencyKind controls whether a missing or failed producer blocks the
// consuming task.
type DependencyKind int

const (
	// Required inputs must resolve; an unresolvable required input prevents
	// the task from running.
	Required DependencyKind = iota
	// Optional inputs are supplied when available and silently omitted
	// otherwise.
	Optional
	// Fallback inputs behave like Optional but surface a declared default
	// value when the source cannot be resolved.
	Fallback
)

// String returns the lowercase name of the kind.
func (k DependencyKind) String() string {
	switch k {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Declaration describes one input a task needs: the parameter name it is
// delivered under, a dotted source path into the shared context, a kind, and
// an optional value transform applied after lookup.
type Declaration struct {
	// Name is the key in the task's resolved input map. Unique within one
	// task's declaration list.
	Name string
	// SourcePath is a dotted path of the form "task.field.subfield", or just
	// "task" for the whole payload. The leading segment names the producing
	// task, or the reserved external-inputs node.
	SourcePath string
	// Kind selects required, optional or fallback semantics.
	Kind DependencyKind
	// Default is the value surfaced by a Fallback declaration when the
	// source cannot be resolved.
	Default any
	// Transform, when set, post-processes the looked-up value before it is
	// handed to the task.
	Transform func(any) (any, error)
}

// Producer returns the leading segment of the source path, i.e. the name of
// the task (or pseudo-node) this declaration reads from.
func (d Declaration) Producer() string {
	if i := strings.IndexByte(d.SourcePath, '.'); i >= 0 {
		return d.SourcePath[:i]
	}
	return d.SourcePath
}

// Require builds a Required declaration.
func Require(name, sourcePath string) Declaration {
	return Declaration{Name: name, SourcePath: sourcePath, Kind: Required}
}

// Opt builds an Optional declaration.
func Opt(name, sourcePath string) Declaration {
	return Declaration{Name: name, SourcePath: sourcePath, Kind: Optional}
}

// WithDefault builds a Fallback declaration carrying a default value.
func WithDefault(name, sourcePath string, def any) Declaration {
	return Declaration{Name: name, SourcePath: sourcePath, Kind: Fallback, Default: def}
}

// Transformed returns a copy of the declaration with the transform attached.
func (d Declaration) Transformed(fn func(any) (any, error)) Declaration {
	d.Transform = fn
	return d
}

// Task is an opaque unit of work. The engine only ever uses its name, its
// declared dependencies, and the Result returned by Execute.
type Task interface {
	// Name identifies the task uniquely within one pipeline run.
	Name() string
	// Declarations lists the inputs the task draws from the shared context.
	Declarations() []Declaration
	// Execute performs the work with the resolved inputs. Well-behaved tasks
	// report failures through the Result; a panic is recovered at the
	// invocation boundary and converted into one.
	Execute(ctx context.Context, inputs map[string]any) result.Result
}

// Configurable is implemented by tasks that carry static configuration.
// String values in the configuration may reference earlier results with
// ${path} placeholders; the engine substitutes them at dispatch time and
// merges the configuration beneath the resolved declarations.
type Configurable interface {
	Config() map[string]any
}

// Func adapts a plain function plus metadata into a Task.
type Func struct {
	TaskName     string
	Dependencies []Declaration
	Arguments    map[string]any
	Fn           func(ctx context.Context, inputs map[string]any) result.Result
}

// Name implements Task.
func (f *Func) Name() string { return f.TaskName }

// Declarations implements Task.
func (f *Func) Declarations() []Declaration { return f.Dependencies }

// Config implements Configurable.
func (f *Func) Config() map[string]any { return f.Arguments }

// Execute implements Task.
func (f *Func) Execute(ctx context.Context, inputs map[string]any) result.Result {
	return f.Fn(ctx, inputs)
}

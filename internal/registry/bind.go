package registry

import (
	"fmt"

	"github.com/vk/taskpipe/internal/config"
	"github.com/vk/taskpipe/internal/task"
)

// Bind turns the loaded pipeline model into executable tasks by attaching
// each task spec to its registered handler. An unknown kind or transform is
// a configuration error, reported before anything runs.
func (r *Registry) Bind(model *config.Model) ([]task.Task, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}

	tasks := make([]task.Task, 0, len(model.Pipeline.Tasks))
	for _, spec := range model.Pipeline.Tasks {
		handler, ok := r.Handler(spec.Kind)
		if !ok {
			return nil, fmt.Errorf("task %q: no handler registered for kind %q (available: %v)",
				spec.Name, spec.Kind, r.Kinds())
		}

		decls, err := bindDeclarations(spec)
		if err != nil {
			return nil, err
		}

		tasks = append(tasks, &task.Func{
			TaskName:     spec.Name,
			Dependencies: decls,
			Arguments:    spec.Arguments,
			Fn:           handler.Run,
		})
	}
	return tasks, nil
}

func bindDeclarations(spec *config.TaskSpec) ([]task.Declaration, error) {
	decls := make([]task.Declaration, 0, len(spec.Inputs))
	for _, in := range spec.Inputs {
		kind, err := parseKind(in.Kind)
		if err != nil {
			return nil, fmt.Errorf("task %q input %q: %w", spec.Name, in.Name, err)
		}

		decl := task.Declaration{
			Name:       in.Name,
			SourcePath: in.Source,
			Kind:       kind,
			Default:    in.Default,
		}
		if in.Transform != "" {
			fn, err := task.TransformByName(in.Transform)
			if err != nil {
				return nil, fmt.Errorf("task %q input %q: %w", spec.Name, in.Name, err)
			}
			decl.Transform = fn
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func parseKind(kind string) (task.DependencyKind, error) {
	switch kind {
	case "", config.KindRequired:
		return task.Required, nil
	case config.KindOptional:
		return task.Optional, nil
	case config.KindFallback:
		return task.Fallback, nil
	default:
		return task.Required, fmt.Errorf("unknown dependency kind %q", kind)
	}
}

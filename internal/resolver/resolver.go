// Package resolver turns a set of tasks with declared dependencies into a
// validated execution plan: a directed acyclic graph layered into waves of
// mutually independent tasks.
package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/taskpipe/internal/ctxlog"
	"github.com/vk/taskpipe/internal/pipectx"
	"github.com/vk/taskpipe/internal/task"
)

// Plan is the output of Resolve: tasks layered into waves, plus the edge
// information the scheduler needs for failure propagation.
type Plan struct {
	// Waves holds the execution layers. Every task in wave i depends only on
	// tasks in waves 0..i-1; members of one wave are mutually independent.
	Waves [][]task.Task

	// requiredDependents maps a producer to the consumers that hold a
	// Required declaration on it.
	requiredDependents map[string][]string
}

// TaskCount returns the total number of tasks across all waves.
func (p *Plan) TaskCount() int {
	n := 0
	for _, wave := range p.Waves {
		n += len(wave)
	}
	return n
}

// WaveCount returns the number of execution waves.
func (p *Plan) WaveCount() int { return len(p.Waves) }

// RequiredDependents returns the names of tasks holding a Required
// declaration on the given producer, in declaration order.
func (p *Plan) RequiredDependents(producer string) []string {
	return p.requiredDependents[producer]
}

// Resolve validates the task set and computes the execution plan.
//
// Validation is fail-fast: task names must be unique and must not shadow the
// reserved external-inputs node, declaration names must be unique per task,
// and every Required declaration's producer must be a task in the set (or
// the external-inputs node). Optional and Fallback declarations whose
// producer is entirely absent create no edge and no error; when the producer
// is present they contribute an ordering edge like any other declaration.
func Resolve(ctx context.Context, tasks []task.Task) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving dependency graph.", "tasks", len(tasks))

	byName := make(map[string]task.Task, len(tasks))
	order := make(map[string]int, len(tasks))
	for i, t := range tasks {
		name := t.Name()
		if name == "" {
			return nil, fmt.Errorf("task at position %d has an empty name", i)
		}
		if name == pipectx.ExternalNode {
			return nil, fmt.Errorf("task name %q is reserved for external inputs", name)
		}
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("duplicate task name %q", name)
		}
		byName[name] = t
		order[name] = i
	}

	// Edges producer -> consumers, deduplicated. Adjacency slices keep the
	// insertion order of the input so layering stays deterministic.
	indegree := make(map[string]int, len(tasks))
	dependents := make(map[string][]string, len(tasks))
	requiredDependents := make(map[string][]string, len(tasks))
	seenEdge := make(map[[2]string]bool)
	seenRequired := make(map[[2]string]bool)

	for _, t := range tasks {
		name := t.Name()
		indegree[name] += 0
		declNames := make(map[string]bool, len(t.Declarations()))

		for _, decl := range t.Declarations() {
			if decl.Name == "" {
				return nil, fmt.Errorf("task %q declares an input with an empty name", name)
			}
			if declNames[decl.Name] {
				return nil, fmt.Errorf("task %q declares input %q twice", name, decl.Name)
			}
			declNames[decl.Name] = true

			producer := decl.Producer()
			if producer == pipectx.ExternalNode {
				continue
			}
			if producer == name {
				// A self-loop is a one-node cycle.
				return nil, &CyclicDependencyError{Tasks: []string{name}}
			}
			if _, present := byName[producer]; !present {
				if decl.Kind == task.Required {
					return nil, &UnknownDependencyError{Task: name, Path: decl.SourcePath}
				}
				// Absent producer never blocks an optional or fallback input.
				logger.Debug("Ignoring declaration on absent producer.",
					"task", name, "source", decl.SourcePath, "kind", decl.Kind.String())
				continue
			}

			edge := [2]string{producer, name}
			if !seenEdge[edge] {
				seenEdge[edge] = true
				dependents[producer] = append(dependents[producer], name)
				indegree[name]++
			}
			if decl.Kind == task.Required && !seenRequired[edge] {
				seenRequired[edge] = true
				requiredDependents[producer] = append(requiredDependents[producer], name)
			}
		}
	}

	waves, err := layer(tasks, byName, order, indegree, dependents)
	if err != nil {
		return nil, err
	}

	logger.Debug("Dependency graph resolved.", "waves", len(waves))
	return &Plan{Waves: waves, requiredDependents: requiredDependents}, nil
}

// layer runs Kahn's algorithm, emitting each in-degree-zero generation as
// one wave. A stall before all tasks are placed means a cycle; the leftover
// tasks are reported sorted by name.
func layer(
	tasks []task.Task,
	byName map[string]task.Task,
	order map[string]int,
	indegree map[string]int,
	dependents map[string][]string,
) ([][]task.Task, error) {
	remaining := make(map[string]int, len(indegree))
	for name, deg := range indegree {
		remaining[name] = deg
	}

	var waves [][]task.Task
	placed := 0

	ready := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if remaining[t.Name()] == 0 {
			ready = append(ready, t.Name())
		}
	}

	for len(ready) > 0 {
		wave := make([]task.Task, 0, len(ready))
		sort.Slice(ready, func(i, j int) bool { return order[ready[i]] < order[ready[j]] })
		for _, name := range ready {
			wave = append(wave, byName[name])
		}
		placed += len(wave)
		waves = append(waves, wave)

		var next []string
		for _, name := range ready {
			for _, dependent := range dependents[name] {
				remaining[dependent]--
				if remaining[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		ready = next
	}

	if placed != len(tasks) {
		var stuck []string
		for name, deg := range remaining {
			if deg > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, &CyclicDependencyError{Tasks: stuck}
	}
	return waves, nil
}

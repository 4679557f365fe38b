package resolver

import (
	"fmt"
	"strings"
)

// CyclicDependencyError reports a dependency cycle. Tasks lists the tasks
// still blocked on each other when layering stalled, i.e. the participants
// of (or downstream of) the cycle.
type CyclicDependencyError struct {
	Tasks []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency involving tasks: %s", strings.Join(e.Tasks, ", "))
}

// UnknownDependencyError reports a source path whose producing task is not
// part of the pipeline.
type UnknownDependencyError struct {
	Task string
	Path string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("task %q depends on %q, which names no task in the pipeline", e.Task, e.Path)
}

package scheduler

import (
	"time"

	"github.com/vk/taskpipe/internal/result"
)

// Status is the aggregated outcome of a whole run.
type Status int

const (
	// AllSucceeded means every task reached Succeeded.
	AllSucceeded Status = iota
	// PartialFailure means at least one task ended Failed or Skipped. The
	// run still completed every wave; callers decide whether to treat the
	// partial results as fatal.
	PartialFailure
)

// String returns the lowercase status name.
func (s Status) String() string {
	if s == AllSucceeded {
		return "all_succeeded"
	}
	return "partial_failure"
}

// TaskOutcome pairs a task's terminal state with the Result recorded for it.
// Skipped tasks carry a synthesized failure Result naming the upstream task
// that caused the skip.
type TaskOutcome struct {
	State  State
	Result result.Result
}

// RunResult enumerates every task's terminal state after a run.
type RunResult struct {
	// ID uniquely identifies this run.
	ID string
	// Status is AllSucceeded or PartialFailure.
	Status Status
	// Outcomes maps task name to its terminal state and result.
	Outcomes map[string]TaskOutcome
	// Order lists task names in the order they reached a terminal state.
	Order []string
	// Waves is the number of execution waves the plan contained.
	Waves int
	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Outcome returns the recorded outcome for a task.
func (r *RunResult) Outcome(name string) (TaskOutcome, bool) {
	out, ok := r.Outcomes[name]
	return out, ok
}

// Counts tallies tasks per terminal state.
func (r *RunResult) Counts() (succeeded, failed, skipped int) {
	for _, out := range r.Outcomes {
		switch out.State {
		case Succeeded:
			succeeded++
		case Failed:
			failed++
		case Skipped:
			skipped++
		}
	}
	return succeeded, failed, skipped
}

package scheduler

// State is a task's position in its lifecycle. Transitions are
// Pending -> Ready -> Running -> one of the terminal states; a terminal
// state is never revisited. Skipped marks a task that was never invoked
// because a required upstream failed, as opposed to Failed, which marks a
// task that ran (or was dispatched) and did not succeed.
type State int

const (
	Pending State = iota
	Ready
	Running
	Succeeded
	Failed
	Skipped
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final for a run.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed || s == Skipped
}

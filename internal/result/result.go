// Package result defines the tagged outcome type produced by every task
// invocation and consumed by the scheduler and the shared context.
package result

import "fmt"

// ErrorKind classifies a task failure.
type ErrorKind int

const (
	// KindExecution is a failure raised by the task's own logic.
	KindExecution ErrorKind = iota
	// KindDependency is a failure to resolve a declared input.
	KindDependency
	// KindPanic is a fault recovered at the task invocation boundary.
	KindPanic
	// KindTimeout is a task-reported deadline failure.
	KindTimeout
	// KindExternal is a failure of an external collaborator (network, API).
	KindExternal
)

// String returns the lowercase name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindExecution:
		return "execution"
	case KindDependency:
		return "dependency"
	case KindPanic:
		return "panic"
	case KindTimeout:
		return "timeout"
	case KindExternal:
		return "external"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Result is the outcome of one task invocation: either success with a data
// payload, or failure with a reason. Exactly one variant is populated and a
// Result is immutable once constructed.
type Result struct {
	data     any
	metadata map[string]any
	reason   string
	kind     ErrorKind
	failed   bool
}

// Ok returns a success Result carrying data.
func Ok(data any) Result {
	return Result{data: data}
}

// OkWithMeta returns a success Result carrying data and task-chosen metadata.
func OkWithMeta(data any, metadata map[string]any) Result {
	return Result{data: data, metadata: metadata}
}

// Fail returns a failure Result with the given kind and reason.
func Fail(kind ErrorKind, reason string) Result {
	return Result{failed: true, kind: kind, reason: reason}
}

// Failf returns a failure Result with a formatted reason.
func Failf(kind ErrorKind, format string, args ...any) Result {
	return Fail(kind, fmt.Sprintf(format, args...))
}

// FromError converts a Go error into a failure Result of the given kind.
func FromError(kind ErrorKind, err error) Result {
	return Fail(kind, err.Error())
}

// OK reports whether the Result is the success variant.
func (r Result) OK() bool { return !r.failed }

// Data returns the success payload. It is nil for failures.
func (r Result) Data() any { return r.data }

// Metadata returns the metadata mapping attached at construction, or nil.
// Callers must treat the returned map as read-only.
func (r Result) Metadata() map[string]any { return r.metadata }

// Reason returns the failure reason, or "" for successes.
func (r Result) Reason() string { return r.reason }

// Kind returns the failure classification. Only meaningful when OK is false.
func (r Result) Kind() ErrorKind { return r.kind }

// String renders the Result for logs.
func (r Result) String() string {
	if r.failed {
		return fmt.Sprintf("failure(%s: %s)", r.kind, r.reason)
	}
	return fmt.Sprintf("success(%T)", r.data)
}

package pipectx

import "fmt"

// DuplicateWriteError reports a second write for a task name. Each task's
// result is written at most once per run; a duplicate means the caller
// executed a task twice.
type DuplicateWriteError struct {
	Task string
}

func (e *DuplicateWriteError) Error() string {
	return fmt.Sprintf("result for task %q already written", e.Task)
}

// PathNotFoundError reports a dotted path that could not be resolved against
// the context. Segment names the first segment that failed to resolve.
type PathNotFoundError struct {
	Path    string
	Segment string
}

func (e *PathNotFoundError) Error() string {
	if e.Segment != "" && e.Segment != e.Path {
		return fmt.Sprintf("path %q not found in context (failed at %q)", e.Path, e.Segment)
	}
	return fmt.Sprintf("path %q not found in context", e.Path)
}

// SubstitutionError reports a template whose placeholder could not be
// resolved. It wraps the underlying lookup error.
type SubstitutionError struct {
	Placeholder string
	Err         error
}

func (e *SubstitutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot substitute ${%s}: %v", e.Placeholder, e.Err)
	}
	return fmt.Sprintf("cannot substitute ${%s}", e.Placeholder)
}

func (e *SubstitutionError) Unwrap() error { return e.Err }

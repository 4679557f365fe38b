// Package pipectx implements the shared, path-addressable context of one
// pipeline run. Each task's result is written exactly once under the task's
// name; later tasks read earlier payloads by dotted path and through
// ${path} template substitution.
package pipectx

import (
	"strings"
	"sync"

	"github.com/vk/taskpipe/internal/result"
)

// ExternalNode is the reserved pseudo-node name under which the run's
// external inputs are addressable. It has no producing task and is readable
// from the first wave on.
const ExternalNode = "user_input"

// Context maps task name to that task's Result. Writes are serialized and
// append-only per key; an entry is immutable once written, so reads taken
// after a producing wave completes need no further coordination.
type Context struct {
	mu      sync.RWMutex
	entries map[string]result.Result
	order   []string
}

// New creates an empty run context. The external inputs, if any, are bound
// as a success entry under ExternalNode.
func New(external map[string]any) *Context {
	c := &Context{entries: make(map[string]result.Result)}
	if external == nil {
		external = map[string]any{}
	}
	c.entries[ExternalNode] = result.Ok(external)
	c.order = append(c.order, ExternalNode)
	return c
}

// Set records the result for a task. It fails with *DuplicateWriteError if
// the task already has an entry.
func (c *Context) Set(name string, res result.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[name]; ok {
		return &DuplicateWriteError{Task: name}
	}
	c.entries[name] = res
	c.order = append(c.order, name)
	return nil
}

// GetResult returns the full Result stored for a task, including failures.
func (c *Context) GetResult(name string) (result.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.entries[name]
	return res, ok
}

// Names returns the task names in completion order. ExternalNode is always
// first.
func (c *Context) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// GetPath resolves a dotted path against the context. The first segment must
// name a task with a success entry; the remaining segments descend into the
// stored payload. Failure entries are not addressable by path, only through
// GetResult.
func (c *Context) GetPath(path string) (any, error) {
	segments := strings.Split(path, ".")
	head := segments[0]
	if head == "" {
		return nil, &PathNotFoundError{Path: path, Segment: head}
	}

	c.mu.RLock()
	res, ok := c.entries[head]
	c.mu.RUnlock()
	if !ok || !res.OK() {
		return nil, &PathNotFoundError{Path: path, Segment: head}
	}

	value := res.Data()
	for _, segment := range segments[1:] {
		next, ok := descend(value, segment)
		if !ok {
			return nil, &PathNotFoundError{Path: path, Segment: segment}
		}
		value = next
	}
	return value, nil
}

// descend resolves one path segment within a structured payload. Maps are
// looked up by key; slices accept a decimal index.
func descend(value any, segment string) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		next, ok := v[segment]
		return next, ok
	case map[string]string:
		next, ok := v[segment]
		return next, ok
	case []any:
		idx, ok := parseIndex(segment)
		if !ok || idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	case []string:
		idx, ok := parseIndex(segment)
		if !ok || idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	default:
		return nil, false
	}
}

func parseIndex(segment string) (int, bool) {
	if segment == "" {
		return 0, false
	}
	n := 0
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

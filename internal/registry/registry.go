// Package registry maps declarative task kinds to the Go handlers that
// execute them. Built-in modules register themselves at application start;
// tests register stub kinds the same way.
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/taskpipe/internal/result"
)

// Handler executes one invocation of a task kind. Inputs arrive fully
// resolved: literal arguments, substituted templates, and declared
// dependency values merged into one map.
type Handler struct {
	Run func(ctx context.Context, inputs map[string]any) result.Result
}

// Module is anything that can contribute handlers to a registry. Each
// built-in task package exposes a Module.
type Module interface {
	Register(r *Registry)
}

// Registry holds the kind-to-handler table for one application instance.
type Registry struct {
	handlers map[string]*Handler
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]*Handler)}
}

// Register adds a handler under a kind. Registering the same kind twice is a
// programmer error and panics.
func (r *Registry) Register(kind string, h *Handler) {
	if kind == "" || h == nil || h.Run == nil {
		panic(fmt.Sprintf("registry: invalid registration for kind %q", kind))
	}
	if _, dup := r.handlers[kind]; dup {
		panic(fmt.Sprintf("registry: kind %q registered twice", kind))
	}
	r.handlers[kind] = h
}

// Handler looks up the handler for a kind.
func (r *Registry) Handler(kind string) (*Handler, bool) {
	h, ok := r.handlers[kind]
	return h, ok
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.handlers))
	for kind := range r.handlers {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

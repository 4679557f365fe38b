// Package printer provides the 'print' task kind: it writes its resolved
// inputs to standard output, mostly useful at the tail of a pipeline.
package printer

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/taskpipe/internal/ctxlog"
	"github.com/vk/taskpipe/internal/registry"
	"github.com/vk/taskpipe/internal/result"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Run is the handler for the 'print' kind.
func Run(ctx context.Context, inputs map[string]any) result.Result {
	ctxlog.FromContext(ctx).Info("Printing inputs.", "count", len(inputs))

	if len(inputs) == 0 {
		fmt.Println("      (empty)")
		return result.Ok(nil)
	}

	// Sort keys for consistent output.
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("      %s = %v\n", k, inputs[k])
	}
	return result.Ok(nil)
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("print", &registry.Handler{Run: Run})
}

// Package envvars provides the 'env_vars' task kind: it snapshots the
// process environment so later tasks can reference variables by path.
package envvars

import (
	"context"
	"os"
	"strings"

	"github.com/vk/taskpipe/internal/registry"
	"github.com/vk/taskpipe/internal/result"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Run is the handler for the 'env_vars' kind. Its payload exposes every
// environment variable under "all", addressable as <task>.all.<NAME>.
func Run(ctx context.Context, inputs map[string]any) result.Result {
	envMap := make(map[string]any)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return result.Ok(map[string]any{"all": envMap})
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("env_vars", &registry.Handler{Run: Run})
}

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vk/taskpipe/internal/registry"
	"github.com/vk/taskpipe/internal/result"
)

// writeInputsFile serializes the external inputs for the harness run.
func writeInputsFile(t *testing.T, dir string, external map[string]any) string {
	t.Helper()
	raw, err := yaml.Marshal(external)
	require.NoError(t, err)
	path := filepath.Join(dir, "inputs.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

// SimpleModule registers a single handler under a kind.
type SimpleModule struct {
	Kind    string
	Handler *registry.Handler
}

// Register implements registry.Module.
func (m *SimpleModule) Register(r *registry.Registry) {
	r.Register(m.Kind, m.Handler)
}

// StaticModule returns a module whose kind always succeeds with the given
// payload.
func StaticModule(kind string, data any) *SimpleModule {
	return &SimpleModule{Kind: kind, Handler: &registry.Handler{
		Run: func(ctx context.Context, inputs map[string]any) result.Result {
			return result.Ok(data)
		},
	}}
}

// FailingModule returns a module whose kind always fails with the given
// reason.
func FailingModule(kind, reason string) *SimpleModule {
	return &SimpleModule{Kind: kind, Handler: &registry.Handler{
		Run: func(ctx context.Context, inputs map[string]any) result.Result {
			return result.Fail(result.KindExecution, reason)
		},
	}}
}

// EchoModule returns a module whose kind succeeds with its own resolved
// inputs as payload, which lets tests assert on what the engine delivered.
func EchoModule(kind string) *SimpleModule {
	return &SimpleModule{Kind: kind, Handler: &registry.Handler{
		Run: func(ctx context.Context, inputs map[string]any) result.Result {
			data := make(map[string]any, len(inputs))
			for k, v := range inputs {
				data[k] = v
			}
			return result.Ok(data)
		},
	}}
}

// PanicHandler returns a handler that panics with the given value.
func PanicHandler(v any) *registry.Handler {
	return &registry.Handler{
		Run: func(ctx context.Context, inputs map[string]any) result.Result {
			panic(v)
		},
	}
}

// RecordingModule counts invocations and remembers the inputs of each one.
type RecordingModule struct {
	Kind  string
	Data  any
	Fail  bool
	calls atomic.Int64

	mu     sync.Mutex
	inputs []map[string]any
}

// Register implements registry.Module.
func (m *RecordingModule) Register(r *registry.Registry) {
	r.Register(m.Kind, &registry.Handler{
		Run: func(ctx context.Context, inputs map[string]any) result.Result {
			m.calls.Add(1)
			m.mu.Lock()
			m.inputs = append(m.inputs, inputs)
			m.mu.Unlock()
			if m.Fail {
				return result.Fail(result.KindExecution, "recorded failure")
			}
			return result.Ok(m.Data)
		},
	})
}

// Calls returns how many times the kind ran.
func (m *RecordingModule) Calls() int { return int(m.calls.Load()) }

// Inputs returns the inputs of every invocation, in call order.
func (m *RecordingModule) Inputs() []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]any, len(m.inputs))
	copy(out, m.inputs)
	return out
}

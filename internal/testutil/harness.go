// Package testutil provides the shared harness and stub task kinds used by
// the integration tests.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/taskpipe/internal/app"
	"github.com/vk/taskpipe/internal/hclloader"
	"github.com/vk/taskpipe/internal/registry"
	"github.com/vk/taskpipe/internal/scheduler"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements io.Writer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements fmt.Stringer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of one harness run.
type HarnessResult struct {
	RunResult *scheduler.RunResult
	LogOutput string
	Err       error
	App       *app.App
}

// RunPipelineTest writes the given HCL files into a temp directory, builds
// an App over them with the provided modules, and runs the pipeline to
// completion. Startup errors (load, bind, resolve) come back in Err with a
// nil RunResult.
func RunPipelineTest(t *testing.T, files map[string]string, external map[string]any, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunPipelineTestWithContext(context.Background(), t, files, external, modules...)
}

// RunPipelineTestWithContext is RunPipelineTest with a caller-owned context.
func RunPipelineTestWithContext(ctx context.Context, t *testing.T, files map[string]string, external map[string]any, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	inputsPath := ""
	if external != nil {
		inputsPath = writeInputsFile(t, tmpDir, external)
	}

	appConfig, err := app.NewConfig(app.Config{
		PipelinePath: tmpDir,
		InputsPath:   inputsPath,
		LogLevel:     "debug",
		LogFormat:    "text",
		Workers:      4,
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	testApp, err := app.NewApp(ctx, logBuffer, appConfig, hclloader.NewLoader(), modules...)
	if err != nil {
		return &HarnessResult{LogOutput: logBuffer.String(), Err: err}
	}

	res, err := testApp.Run(ctx)
	if os.Getenv("TASKPIPE_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}
	return &HarnessResult{
		RunResult: res,
		LogOutput: logBuffer.String(),
		Err:       err,
		App:       testApp,
	}
}

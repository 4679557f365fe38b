package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/taskpipe/internal/resolver"
	"github.com/vk/taskpipe/internal/result"
	"github.com/vk/taskpipe/internal/scheduler"
	"github.com/vk/taskpipe/internal/testutil"
)

// TestErrorHandling_FailureSkipsTransitiveDependents validates that when a
// task fails, its required dependents and their dependents are marked skipped
// without being invoked, while the run still completes.
func TestErrorHandling_FailureSkipsTransitiveDependents(t *testing.T) {
	t.Parallel()
	pipelineHCL := `
		pipeline "p" {
			task "a" {
				kind = "broken"
			}
			task "b" {
				kind = "observer"
				input "in" {
					source = "a.out"
				}
			}
			task "c" {
				kind = "observer"
				input "in" {
					source = "b.out"
				}
			}
		}
	`
	broken := testutil.FailingModule("broken", "upstream exploded")
	observer := &testutil.RecordingModule{Kind: "observer", Data: "ok"}

	res := testutil.RunPipelineTest(t, map[string]string{"main.hcl": pipelineHCL}, nil, broken, observer)
	require.NoError(t, res.Err, "task failures must not abort the run")
	require.NotNil(t, res.RunResult)

	assert.Equal(t, scheduler.PartialFailure, res.RunResult.Status)
	assert.Zero(t, observer.Calls(), "skipped tasks must never execute")

	outA, _ := res.RunResult.Outcome("a")
	assert.Equal(t, scheduler.Failed, outA.State)
	assert.Equal(t, "upstream exploded", outA.Result.Reason())

	for _, name := range []string{"b", "c"} {
		out, ok := res.RunResult.Outcome(name)
		require.True(t, ok, name)
		assert.Equal(t, scheduler.Skipped, out.State, name)
		assert.Equal(t, result.KindDependency, out.Result.Kind(), name)
		assert.Contains(t, out.Result.Reason(), `upstream failure of "a"`, name)
	}

	succeeded, failed, skipped := res.RunResult.Counts()
	assert.Equal(t, 0, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, skipped)
}

// TestErrorHandling_IndependentBranchStillRuns validates that a failure in
// one branch leaves unrelated branches untouched.
func TestErrorHandling_IndependentBranchStillRuns(t *testing.T) {
	t.Parallel()
	pipelineHCL := `
		pipeline "p" {
			task "bad" {
				kind = "broken"
			}
			task "good" {
				kind = "steady"
			}
			task "after_good" {
				kind = "steady"
				input "in" {
					source = "good"
				}
			}
		}
	`
	broken := testutil.FailingModule("broken", "boom")
	steady := testutil.StaticModule("steady", "fine")

	res := testutil.RunPipelineTest(t, map[string]string{"main.hcl": pipelineHCL}, nil, broken, steady)
	require.NoError(t, res.Err)

	assert.Equal(t, scheduler.PartialFailure, res.RunResult.Status)
	for _, name := range []string{"good", "after_good"} {
		out, _ := res.RunResult.Outcome(name)
		assert.Equal(t, scheduler.Succeeded, out.State, name)
	}
}

// TestErrorHandling_CyclicPipelineFailsAtStartup validates that a dependency
// cycle is rejected before any task executes.
func TestErrorHandling_CyclicPipelineFailsAtStartup(t *testing.T) {
	t.Parallel()
	pipelineHCL := `
		pipeline "p" {
			task "a" {
				kind = "observer"
				input "in" {
					source = "b.out"
				}
			}
			task "b" {
				kind = "observer"
				input "in" {
					source = "a.out"
				}
			}
		}
	`
	observer := &testutil.RecordingModule{Kind: "observer", Data: "ok"}

	res := testutil.RunPipelineTest(t, map[string]string{"main.hcl": pipelineHCL}, nil, observer)
	require.Error(t, res.Err)
	assert.Nil(t, res.RunResult)
	assert.Zero(t, observer.Calls())

	var cyc *resolver.CyclicDependencyError
	require.ErrorAs(t, res.Err, &cyc)
	assert.ElementsMatch(t, []string{"a", "b"}, cyc.Tasks)
}

// TestErrorHandling_UnknownDependencyFailsAtStartup validates that a required
// reference to a task that does not exist is rejected at startup.
func TestErrorHandling_UnknownDependencyFailsAtStartup(t *testing.T) {
	t.Parallel()
	pipelineHCL := `
		pipeline "p" {
			task "a" {
				kind = "observer"
				input "in" {
					source = "ghost.out"
				}
			}
		}
	`
	observer := &testutil.RecordingModule{Kind: "observer", Data: "ok"}

	res := testutil.RunPipelineTest(t, map[string]string{"main.hcl": pipelineHCL}, nil, observer)
	require.Error(t, res.Err)

	var unknown *resolver.UnknownDependencyError
	require.ErrorAs(t, res.Err, &unknown)
	assert.Equal(t, "a", unknown.Task)
	assert.Equal(t, "ghost.out", unknown.Path)
}

// TestErrorHandling_UnknownKindFailsAtStartup validates that a task naming an
// unregistered kind is rejected before resolution.
func TestErrorHandling_UnknownKindFailsAtStartup(t *testing.T) {
	t.Parallel()
	pipelineHCL := `
		pipeline "p" {
			task "a" {
				kind = "teleport"
			}
		}
	`
	res := testutil.RunPipelineTest(t, map[string]string{"main.hcl": pipelineHCL}, nil,
		testutil.StaticModule("steady", nil))
	require.Error(t, res.Err)
	assert.ErrorContains(t, res.Err, `no handler registered for kind "teleport"`)
}

// TestErrorHandling_PanicIsolatedToOneTask validates that a panicking handler
// is converted into a task failure and the rest of the pipeline proceeds.
func TestErrorHandling_PanicIsolatedToOneTask(t *testing.T) {
	t.Parallel()
	pipelineHCL := `
		pipeline "p" {
			task "volatile" {
				kind = "panics"
			}
			task "calm" {
				kind = "steady"
			}
		}
	`
	panics := &testutil.SimpleModule{Kind: "panics", Handler: testutil.PanicHandler("nil map write")}
	steady := testutil.StaticModule("steady", "ok")

	res := testutil.RunPipelineTest(t, map[string]string{"main.hcl": pipelineHCL}, nil, panics, steady)
	require.NoError(t, res.Err)

	out, _ := res.RunResult.Outcome("volatile")
	assert.Equal(t, scheduler.Failed, out.State)
	assert.Equal(t, result.KindPanic, out.Result.Kind())
	assert.Contains(t, out.Result.Reason(), "panicked")

	out, _ = res.RunResult.Outcome("calm")
	assert.Equal(t, scheduler.Succeeded, out.State)
}

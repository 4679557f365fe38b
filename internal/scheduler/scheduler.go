// Package scheduler drives the execution of a resolved plan: waves run
// strictly in sequence, tasks within a wave run concurrently on a bounded
// worker pool, and every task's outcome is collected into the shared context
// and the final RunResult.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vk/taskpipe/internal/ctxlog"
	"github.com/vk/taskpipe/internal/pipectx"
	"github.com/vk/taskpipe/internal/resolver"
	"github.com/vk/taskpipe/internal/result"
	"github.com/vk/taskpipe/internal/task"
)

// DefaultWorkers bounds per-wave concurrency when the caller does not.
const DefaultWorkers = 4

// Scheduler executes plans. A Scheduler is stateless across runs and safe
// for concurrent use; all per-run state lives in the run itself.
type Scheduler struct {
	workers int
}

// New returns a Scheduler dispatching at most workers tasks concurrently
// within one wave. Non-positive values fall back to DefaultWorkers.
func New(workers int) *Scheduler {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Scheduler{workers: workers}
}

// run carries the mutable state of one execution.
type run struct {
	plan    *resolver.Plan
	pctx    *pipectx.Context
	workers int

	mu       sync.Mutex
	states   map[string]State
	outcomes map[string]TaskOutcome
	order    []string
}

// Run executes every wave of the plan against a fresh shared context seeded
// with the external inputs. Task-level failures never abort the run: failed
// tasks mark their transitive required dependents Skipped and everything
// else still executes. The returned RunResult enumerates every task.
func (s *Scheduler) Run(ctx context.Context, plan *resolver.Plan, external map[string]any) *RunResult {
	logger := ctxlog.FromContext(ctx)
	started := time.Now()

	r := &run{
		plan:     plan,
		pctx:     pipectx.New(external),
		workers:  s.workers,
		states:   make(map[string]State, plan.TaskCount()),
		outcomes: make(map[string]TaskOutcome, plan.TaskCount()),
	}
	for _, wave := range plan.Waves {
		for _, t := range wave {
			r.states[t.Name()] = Pending
		}
	}

	logger.Info("🚀 Starting pipeline run.", "tasks", plan.TaskCount(), "waves", plan.WaveCount())

	for i, wave := range plan.Waves {
		logger.Info("Executing wave.", "wave", i, "tasks", len(wave))
		r.runWave(ctx, wave)
	}

	res := &RunResult{
		ID:       uuid.NewString(),
		Status:   AllSucceeded,
		Outcomes: r.outcomes,
		Order:    r.order,
		Waves:    plan.WaveCount(),
		Duration: time.Since(started),
	}
	for _, out := range r.outcomes {
		if out.State != Succeeded {
			res.Status = PartialFailure
			break
		}
	}

	succeeded, failed, skipped := res.Counts()
	logger.Info("🏁 Pipeline run finished.",
		"status", res.Status.String(),
		"succeeded", succeeded,
		"failed", failed,
		"skipped", skipped,
		"duration", res.Duration)
	return res
}

// runWave dispatches every still-runnable member of the wave onto the worker
// pool and blocks until all of them reach a terminal state.
func (r *run) runWave(ctx context.Context, wave []task.Task) {
	logger := ctxlog.FromContext(ctx)

	runnable := make([]task.Task, 0, len(wave))
	for _, t := range wave {
		if r.state(t.Name()) == Skipped {
			// Marked by an upstream failure in an earlier wave.
			continue
		}
		r.setState(t.Name(), Ready)
		runnable = append(runnable, t)
	}
	if len(runnable) == 0 {
		return
	}

	workers := r.workers
	if workers > len(runnable) {
		workers = len(runnable)
	}

	feed := make(chan task.Task)
	var wg sync.WaitGroup
	wg.Add(len(runnable))

	for w := 0; w < workers; w++ {
		go func() {
			for t := range feed {
				r.runTask(ctx, t)
				wg.Done()
			}
		}()
	}
	for _, t := range runnable {
		feed <- t
	}
	close(feed)
	wg.Wait()

	logger.Debug("Wave complete.", "dispatched", len(runnable))
}

// runTask resolves one task's inputs, invokes it, and records the outcome.
func (r *run) runTask(ctx context.Context, t task.Task) {
	name := t.Name()
	logger := ctxlog.FromContext(ctx).With("task", name)
	r.setState(name, Running)
	logger.Info("▶️ Starting task.")
	started := time.Now()

	inputs, failure := r.resolveInputs(t)
	if failure != "" {
		logger.Warn("Task inputs could not be resolved.", "reason", failure)
		r.finish(ctx, t, Failed, result.Fail(result.KindDependency, failure))
		return
	}

	res := invoke(ctx, t, inputs)
	if res.OK() {
		logger.Info("✅ Task succeeded.", "duration", time.Since(started))
		r.finish(ctx, t, Succeeded, res)
		return
	}
	logger.Error("Task failed.", "kind", res.Kind().String(), "reason", res.Reason(), "duration", time.Since(started))
	r.finish(ctx, t, Failed, res)
}

// invoke calls Execute with a panic guard so one task's fault can never
// halt the rest of the graph.
func invoke(ctx context.Context, t task.Task, inputs map[string]any) (res result.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = result.Failf(result.KindPanic, "task %q panicked: %v", t.Name(), rec)
		}
	}()
	return t.Execute(ctx, inputs)
}

// resolveInputs builds the resolved input map for a task: static
// configuration with ${path} placeholders substituted, overlaid by the
// task's declarations. A non-empty failure string means the task must not
// run.
func (r *run) resolveInputs(t task.Task) (map[string]any, string) {
	inputs := make(map[string]any)

	if cfg, ok := t.(task.Configurable); ok {
		for key, value := range cfg.Config() {
			substituted, err := r.substituteValue(value)
			if err != nil {
				return nil, fmt.Sprintf("configuration %q: %v", key, err)
			}
			inputs[key] = substituted
		}
	}

	for _, decl := range t.Declarations() {
		value, err := r.pctx.GetPath(decl.SourcePath)
		if err == nil && decl.Transform != nil {
			value, err = decl.Transform(value)
		}
		if err != nil {
			switch decl.Kind {
			case task.Required:
				return nil, fmt.Sprintf("unresolved required dependency: %s", decl.Name)
			case task.Fallback:
				inputs[decl.Name] = decl.Default
			case task.Optional:
				// Supply nothing.
			}
			continue
		}
		inputs[decl.Name] = value
	}
	return inputs, ""
}

// substituteValue applies template substitution to a configuration value,
// descending into nested maps and slices.
func (r *run) substituteValue(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return r.pctx.Substitute(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, nested := range v {
			substituted, err := r.substituteValue(nested)
			if err != nil {
				return nil, err
			}
			out[key] = substituted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, nested := range v {
			substituted, err := r.substituteValue(nested)
			if err != nil {
				return nil, err
			}
			out[i] = substituted
		}
		return out, nil
	default:
		return value, nil
	}
}

// finish records a task's terminal state and result, and on failure marks
// its transitive required dependents Skipped before they are dispatched.
func (r *run) finish(ctx context.Context, t task.Task, state State, res result.Result) {
	name := t.Name()
	if err := r.pctx.Set(name, res); err != nil {
		ctxlog.FromContext(ctx).Error("Duplicate result write.", "task", name, "error", err)
	}
	r.setTerminal(name, state, res)
	if state == Failed {
		r.skipDependents(ctx, name, name)
	}
}

// skipDependents walks the required-dependency edges downstream of a failed
// task and marks every still-pending dependent Skipped. The dependents live
// in later waves, so none of them has been dispatched yet.
func (r *run) skipDependents(ctx context.Context, failed, origin string) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range r.plan.RequiredDependents(failed) {
		if !r.markSkipped(dependent) {
			continue
		}
		logger.Warn("⏭️ Skipping task due to upstream failure.", "task", dependent, "upstream", origin)
		res := result.Failf(result.KindDependency, "skipped due to upstream failure of %q", origin)
		if err := r.pctx.Set(dependent, res); err != nil {
			logger.Error("Dropping duplicate result write.", "task", dependent, "error", err)
			continue
		}
		r.recordOutcome(dependent, Skipped, res)
		r.skipDependents(ctx, dependent, origin)
	}
}

func (r *run) state(name string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[name]
}

func (r *run) setState(name string, state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[name] = state
}

// markSkipped transitions a pending task to Skipped, reporting whether this
// call performed the transition.
func (r *run) markSkipped(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.states[name].Terminal() {
		return false
	}
	r.states[name] = Skipped
	return true
}

func (r *run) setTerminal(name string, state State, res result.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[name] = state
	r.outcomes[name] = TaskOutcome{State: state, Result: res}
	r.order = append(r.order, name)
}

func (r *run) recordOutcome(name string, state State, res result.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[name] = TaskOutcome{State: state, Result: res}
	r.order = append(r.order, name)
}

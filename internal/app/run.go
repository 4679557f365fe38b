package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/taskpipe/internal/ctxlog"
	"github.com/vk/taskpipe/internal/resolver"
	"github.com/vk/taskpipe/internal/scheduler"
)

// Run binds the loaded pipeline to its handlers, resolves the dependency
// graph, and executes every wave. Structural problems (unknown kinds,
// cycles, unresolvable references) come back as errors before anything has
// executed; task-level failures are reported through the RunResult instead.
func (a *App) Run(ctx context.Context) (*scheduler.RunResult, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	tasks, err := a.registry.Bind(a.model)
	if err != nil {
		return nil, fmt.Errorf("failed to bind pipeline tasks: %w", err)
	}

	plan, err := resolver.Resolve(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dependency graph: %w", err)
	}
	a.logger.Debug("Execution plan ready.", "waves", plan.WaveCount(), "tasks", plan.TaskCount())

	res := scheduler.New(a.cfg.Workers).Run(ctx, plan, a.external)
	a.printSummary(res)
	return res, nil
}

// printSummary writes the per-task terminal states to the app's output in
// completion order.
func (a *App) printSummary(res *scheduler.RunResult) {
	fmt.Fprintf(a.outW, "run %s: %s (%d waves, %s)\n", res.ID, res.Status, res.Waves, res.Duration.Round(time.Millisecond))
	for _, name := range res.Order {
		out := res.Outcomes[name]
		if out.Result.OK() {
			fmt.Fprintf(a.outW, "  %-10s %s\n", out.State, name)
			continue
		}
		fmt.Fprintf(a.outW, "  %-10s %s: %s\n", out.State, name, out.Result.Reason())
	}
}

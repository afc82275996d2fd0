package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paperpress/paperpress/internal/config"
	"github.com/paperpress/paperpress/internal/ctxlog"
	"github.com/paperpress/paperpress/internal/ledger"
	"github.com/paperpress/paperpress/internal/tool"
)

// Driver sequences the pipeline stages, records every outcome in the ledger,
// and stops at the first failure. The original shell scripts did not check
// exit codes between the installer, the notebook and the compiler; that
// leniency is now an explicit opt-in via BestEffort.
type Driver struct {
	Project *config.Project
	Ledger  *ledger.Ledger
	Invoker tool.Invoker
	Options PlanOptions
	// BestEffort continues past provisioning and figure-generation failures.
	// Compile failures always halt.
	BestEffort bool
}

// Run executes the full pipeline once. It returns the per-stage results in
// execution order; the error names the first failing stage and tool.
func (d *Driver) Run(ctx context.Context) ([]StageResult, error) {
	logger := ctxlog.FromContext(ctx)
	runID := uuid.NewString()
	logger = logger.With("runID", runID, "project", d.Project.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	if err := d.Ledger.BeginRun(ctx, runID, d.Project.Name, time.Now()); err != nil {
		return nil, err
	}

	placeholders := NewPlaceholders(d.Project)
	if err := placeholders.Ensure(ctx); err != nil {
		d.finish(ctx, runID, ledger.RunFailed)
		return nil, fmt.Errorf("preparing placeholder bibliography files: %w", err)
	}
	defer placeholders.Cleanup(ctx)

	plan, err := BuildPlan(ctx, d.Project, d.Ledger, d.Invoker, d.Options)
	if err != nil {
		d.finish(ctx, runID, ledger.RunFailed)
		return nil, err
	}

	var results []StageResult
	for _, id := range plan.Order() {
		if err := ctx.Err(); err != nil {
			d.finish(ctx, runID, ledger.RunFailed)
			return results, err
		}

		result := plan.stage(id).Run(ctx)
		results = append(results, result)
		d.record(ctx, runID, result)

		if result.Status != StatusFailed {
			continue
		}
		if d.BestEffort && (id == StageProvision || id == StageFigures) {
			logger.Warn("Stage failed, continuing in best-effort mode.",
				"stage", id, "error", result.Err)
			continue
		}

		d.finish(ctx, runID, ledger.RunFailed)
		return results, fmt.Errorf("stage %s failed (%s): %w", result.Stage, result.Tool, result.Err)
	}

	d.finish(ctx, runID, ledger.RunOK)
	logger.Info("Pipeline finished.", "stages", len(results))
	return results, nil
}

// record persists a stage result. Ledger write failures are logged, not
// fatal: the build itself is the deliverable, the history is bookkeeping.
func (d *Driver) record(ctx context.Context, runID string, result StageResult) {
	rec := ledger.StageRecord{
		Stage:    result.Stage,
		Tool:     result.Tool,
		Status:   result.Status,
		Duration: result.Duration,
		Detail:   result.Detail,
	}
	if err := d.Ledger.RecordStage(ctx, runID, rec); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to record stage in ledger.", "stage", result.Stage, "error", err)
	}
}

func (d *Driver) finish(ctx context.Context, runID, status string) {
	if err := d.Ledger.FinishRun(ctx, runID, status, time.Now()); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to finish run in ledger.", "runID", runID, "error", err)
	}
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/paperpress/paperpress/internal/ctxlog"
	"github.com/paperpress/paperpress/internal/pipeline"
	"github.com/paperpress/paperpress/internal/watch"
)

// Run executes the pipeline once, or resident under -watch.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	driver := &pipeline.Driver{
		Project: a.model.Project,
		Ledger:  a.ledger,
		Invoker: a.invoker,
		Options: pipeline.PlanOptions{
			Force:     appConfig.Force,
			MaxPasses: appConfig.MaxPasses,
			Only:      appConfig.Only,
		},
		BestEffort: appConfig.BestEffort,
	}

	a.logger.Info("🚀 Starting build.", "project", a.model.Project.Name)
	err := a.runOnce(ctx, driver)

	if !appConfig.Watch {
		if err != nil {
			return err
		}
		a.logger.Info("🏁 Build finished.")
		return nil
	}

	// In watch mode a failing initial build is reported but not fatal; the
	// next source change retries.
	if err != nil {
		a.logger.Error("Initial build failed, watching for changes.", "error", err)
	}
	watcher, werr := watch.New(a.model.Project, func(ctx context.Context) error {
		return a.runOnce(ctx, driver)
	})
	if werr != nil {
		return fmt.Errorf("starting watcher: %w", werr)
	}
	return watcher.Run(ctx)
}

// runOnce executes the driver and prints the per-stage summary.
func (a *App) runOnce(ctx context.Context, driver *pipeline.Driver) error {
	results, err := driver.Run(ctx)
	a.summarize(results)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}

func (a *App) summarize(results []pipeline.StageResult) {
	for _, r := range results {
		switch r.Status {
		case pipeline.StatusOK:
			fmt.Fprintf(a.outW, "  ok      %-24s %s\n", r.Stage, r.Duration.Round(time.Millisecond))
		case pipeline.StatusSkipped:
			fmt.Fprintf(a.outW, "  skip    %-24s %s\n", r.Stage, r.Detail)
		case pipeline.StatusFailed:
			fmt.Fprintf(a.outW, "  FAILED  %-24s %s\n", r.Stage, r.Detail)
		}
	}
}

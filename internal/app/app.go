package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/paperpress/paperpress/internal/config"
	"github.com/paperpress/paperpress/internal/ctxlog"
	"github.com/paperpress/paperpress/internal/ledger"
	"github.com/paperpress/paperpress/internal/tool"
)

// ledgerDirName is the per-project directory holding the build ledger.
const ledgerDirName = ".paperpress"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	model   *config.Model
	ledger  *ledger.Ledger
	invoker tool.Invoker
}

// Option customizes App construction. Used by tests to substitute fakes.
type Option func(*App)

// WithInvoker replaces the default os/exec tool invoker.
func WithInvoker(inv tool.Invoker) Option {
	return func(a *App) { a.invoker = inv }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. It panics on
// configuration load failures; the caller recovers and turns that into a
// clean startup error.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) *App {
	logger := newLogger(appConfig, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.BuildfilePath)
	if err != nil {
		panic(fmt.Errorf("failed to load buildfile: %w", err))
	}
	logger.Debug("Buildfile loaded.", "project", model.Project.Name)

	led, err := ledger.Open(filepath.Join(model.Project.Root, ledgerDirName))
	if err != nil {
		panic(fmt.Errorf("failed to open build ledger: %w", err))
	}
	logger.Debug("Build ledger opened.", "path", led.Path())

	a := &App{
		outW:    outW,
		logger:  logger,
		model:   model,
		ledger:  led,
		invoker: tool.NewExecInvoker(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Project returns the loaded project model. This is primarily for testing.
func (a *App) Project() *config.Project {
	return a.model.Project
}

// Close releases the app's resources.
func (a *App) Close() error {
	return a.ledger.Close()
}

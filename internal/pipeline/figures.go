package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/paperpress/paperpress/internal/config"
	"github.com/paperpress/paperpress/internal/ctxlog"
	"github.com/paperpress/paperpress/internal/fsutil"
	"github.com/paperpress/paperpress/internal/tool"
)

// StageFigures is the stage ID of the figure generator.
const StageFigures = "figures"

// FigureRunner executes the designated notebook end to end. The notebook's
// side effect is writing numerical figure files into the source tree; there
// is no cell-level retry and no partial-execution semantics, the executor's
// exit code is the only signal.
type FigureRunner struct {
	Project *config.Project
	Invoker tool.Invoker
}

// ID implements Stage.
func (f *FigureRunner) ID() string { return StageFigures }

// Run implements Stage.
func (f *FigureRunner) Run(ctx context.Context) StageResult {
	logger := ctxlog.FromContext(ctx)
	nb := f.Project.Notebook

	path := filepath.Join(f.Project.Root, nb.Path)
	if !fsutil.Exists(path) {
		return failResult(StageFigures, "notebook", 0,
			fmt.Errorf("notebook %s does not exist", path))
	}

	logger.Info("Executing notebook to regenerate figures.", "notebook", nb.Path)
	result, err := f.Invoker.Invoke(ctx, tool.Spec{
		Tool:    "notebook",
		Command: nb.Executor[0],
		Args:    append(append([]string{}, nb.Executor[1:]...), path),
		Dir:     f.Project.Root,
	})
	if err != nil {
		return failResult(StageFigures, "notebook", result.Duration, err)
	}
	return okResult(StageFigures, "notebook", result.Duration)
}

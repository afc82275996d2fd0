package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paperpress/paperpress/internal/config"
	"github.com/paperpress/paperpress/internal/ctxlog"
	"github.com/paperpress/paperpress/internal/fsutil"
	"github.com/paperpress/paperpress/internal/tool"
)

// StageDiagrams is the stage ID of the diagram pre-build.
const StageDiagrams = "diagrams"

// DiagramRunner renders the named vector diagram sources once each, tightens
// their bounding boxes with the crop utility, and copies the results into the
// figures directory so the document batch can include them camera-ready.
type DiagramRunner struct {
	Project *config.Project
	Invoker tool.Invoker
}

// ID implements Stage.
func (r *DiagramRunner) ID() string { return StageDiagrams }

// Run implements Stage.
func (r *DiagramRunner) Run(ctx context.Context) StageResult {
	logger := ctxlog.FromContext(ctx)
	compile := r.Project.Compile

	if len(compile.Diagrams) == 0 {
		return skipResult(StageDiagrams, "engine", "no diagrams declared")
	}

	buildDir := filepath.Join(r.Project.Root, compile.BuildDir)
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return failResult(StageDiagrams, "engine", 0, fmt.Errorf("creating build directory: %w", err))
	}

	var total time.Duration
	for _, diagram := range compile.Diagrams {
		logger.Info("Rendering diagram.", "diagram", diagram.Name)
		d, err := r.render(ctx, diagram, buildDir)
		total += d
		if err != nil {
			return failResult(StageDiagrams, "engine", total,
				fmt.Errorf("diagram %s: %w", diagram.Name, err))
		}
	}
	return okResult(StageDiagrams, "engine", total)
}

func (r *DiagramRunner) render(ctx context.Context, diagram *config.Diagram, buildDir string) (time.Duration, error) {
	compile := r.Project.Compile
	source := filepath.Join(r.Project.Root, diagram.Source)
	if !fsutil.Exists(source) {
		return 0, fmt.Errorf("source %s does not exist", source)
	}

	engine := compile.Engine
	args := append([]string{}, engine[1:]...)
	args = append(args, "-output-directory", buildDir, source)
	result, err := r.Invoker.Invoke(ctx, tool.Spec{
		Tool:    "engine",
		Command: engine[0],
		Args:    args,
		Dir:     r.Project.Root,
	})
	total := result.Duration
	if err != nil {
		return total, err
	}

	base := strings.TrimSuffix(filepath.Base(diagram.Source), filepath.Ext(diagram.Source))
	pdf := filepath.Join(buildDir, base+".pdf")
	if !fsutil.Exists(pdf) {
		return total, fmt.Errorf("engine reported success but %s was not produced", pdf)
	}

	crop := compile.Crop
	cropArgs := append([]string{}, crop[1:]...)
	cropArgs = append(cropArgs, pdf, pdf)
	result, err = r.Invoker.Invoke(ctx, tool.Spec{
		Tool:    "crop",
		Command: crop[0],
		Args:    cropArgs,
		Dir:     buildDir,
	})
	total += result.Duration
	if err != nil {
		return total, err
	}

	dest := filepath.Join(r.Project.Root, compile.FiguresDir, base+".pdf")
	if err := fsutil.CopyFile(pdf, dest); err != nil {
		return total, fmt.Errorf("copying cropped diagram: %w", err)
	}
	return total, nil
}

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
	"github.com/paperpress/paperpress/internal/hash"
	"github.com/paperpress/paperpress/internal/tool"
)

// BibMode controls when the bibliography processor runs for a target.
type BibMode int

const (
	// BibAlways runs the bibliography processor unconditionally after the
	// first engine pass. Used for the main targets.
	BibAlways BibMode = iota
	// BibAuto runs it only when the first pass produced an aux file that
	// actually requests citations. An appendix with no citations skips the
	// step without error.
	BibAuto
)

// Target is one document to compile standalone.
type Target struct {
	// Name is the stage ID, e.g. "doc:paper" or "appendix:ApndxLiqConstr".
	Name string
	// Source is the .tex path relative to the project root.
	Source string
	// Dest is the canonical output directory relative to the root; empty
	// means the root itself.
	Dest    string
	BibMode BibMode
}

// Compiler drives the typesetting engine over one target at a time. Instead
// of the traditional hard-coded pass count, it loops until the hash of the
// target's reference-resolution state (the aux file) stops changing, bounded
// by MaxPasses.
type Compiler struct {
	Project *config.Project
	Invoker tool.Invoker
	// MaxPasses overrides the buildfile's bound when non-zero.
	MaxPasses int
}

func (c *Compiler) maxPasses() int {
	if c.MaxPasses > 0 {
		return c.MaxPasses
	}
	return c.Project.Compile.MaxPasses
}

func (c *Compiler) buildDir() string {
	return filepath.Join(c.Project.Root, c.Project.Compile.BuildDir)
}

// Compile runs the full fixed-point sequence for one target and relocates
// the produced PDF to its canonical location.
func (c *Compiler) Compile(ctx context.Context, target Target) (time.Duration, error) {
	logger := ctxlog.FromContext(ctx).With("target", target.Name)

	source := filepath.Join(c.Project.Root, target.Source)
	if !fsutil.Exists(source) {
		return 0, fmt.Errorf("source document %s does not exist", source)
	}

	buildDir := c.buildDir()
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating build directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(target.Source), filepath.Ext(target.Source))
	auxPath := filepath.Join(buildDir, base+".aux")

	var total time.Duration
	prev, err := hash.FileOrEmpty(auxPath)
	if err != nil {
		return 0, err
	}

	converged := false
	for pass := 1; pass <= c.maxPasses(); pass++ {
		logger.Debug("Engine pass starting.", "pass", pass)
		d, err := c.runEngine(ctx, source, buildDir)
		total += d
		if err != nil {
			return total, fmt.Errorf("engine pass %d for %s: %w", pass, target.Name, err)
		}

		if pass == 1 {
			d, err := c.maybeRunBibliography(ctx, target, base, buildDir, auxPath)
			total += d
			if err != nil {
				return total, fmt.Errorf("bibliography for %s: %w", target.Name, err)
			}
		}

		cur, err := hash.FileOrEmpty(auxPath)
		if err != nil {
			return total, err
		}
		if cur == prev {
			logger.Debug("Reference resolution converged.", "passes", pass)
			converged = true
			break
		}
		prev = cur
	}
	if !converged {
		logger.Warn("Reference resolution did not converge within the pass bound; output may have unresolved references.",
			"maxPasses", c.maxPasses())
	}

	d, err := c.relocate(target, base, buildDir)
	total += d
	if err != nil {
		return total, err
	}
	return total, nil
}

func (c *Compiler) runEngine(ctx context.Context, source, buildDir string) (time.Duration, error) {
	engine := c.Project.Compile.Engine
	args := append([]string{}, engine[1:]...)
	args = append(args, "-output-directory", buildDir, source)

	result, err := c.Invoker.Invoke(ctx, tool.Spec{
		Tool:    "engine",
		Command: engine[0],
		Args:    args,
		Dir:     c.Project.Root,
	})
	return result.Duration, err
}

// maybeRunBibliography applies the conditionality rules: main targets always
// get a bibliography pass, appendix targets only when their aux file exists
// and requests citations.
func (c *Compiler) maybeRunBibliography(ctx context.Context, target Target, base, buildDir, auxPath string) (time.Duration, error) {
	logger := ctxlog.FromContext(ctx).With("target", target.Name)

	if target.BibMode == BibAuto {
		eligible, err := auxRequestsCitations(auxPath)
		if err != nil {
			return 0, err
		}
		if !eligible {
			logger.Debug("No citations requested, skipping bibliography pass.")
			return 0, nil
		}
	}

	bib := c.Project.Compile.Bibliography
	args := append([]string{}, bib[1:]...)
	args = append(args, base)

	// The bibliography processor resolves .aux and .bib paths relative to
	// its working directory, so it runs inside the build directory.
	result, err := c.Invoker.Invoke(ctx, tool.Spec{
		Tool:    "bibliography",
		Command: bib[0],
		Args:    args,
		Dir:     buildDir,
	})
	return result.Duration, err
}

// auxRequestsCitations reports whether the aux file exists and contains at
// least one citation request.
func auxRequestsCitations(auxPath string) (bool, error) {
	data, err := os.ReadFile(auxPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return strings.Contains(string(data), `\citation`), nil
}

// relocate moves the produced PDF from the build directory to the target's
// canonical location, leaving no stale copy behind.
func (c *Compiler) relocate(target Target, base, buildDir string) (time.Duration, error) {
	start := time.Now()
	produced := filepath.Join(buildDir, base+".pdf")
	if !fsutil.Exists(produced) {
		return time.Since(start), fmt.Errorf("engine reported success but %s was not produced", produced)
	}

	dest := filepath.Join(c.Project.Root, target.Dest, base+".pdf")
	if err := fsutil.MoveFile(produced, dest); err != nil {
		return time.Since(start), fmt.Errorf("relocating %s: %w", produced, err)
	}
	return time.Since(start), nil
}

// documentStage adapts one Target to the Stage interface.
type documentStage struct {
	compiler *Compiler
	target   Target
}

func (s *documentStage) ID() string { return s.target.Name }

func (s *documentStage) Run(ctx context.Context) StageResult {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Compiling document.", "target", s.target.Name, "source", s.target.Source)

	d, err := s.compiler.Compile(ctx, s.target)
	if err != nil {
		return failResult(s.target.Name, "engine", d, err)
	}
	return okResult(s.target.Name, "engine", d)
}

package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paperpress/paperpress/internal/config"
	"github.com/paperpress/paperpress/internal/ctxlog"
	"github.com/paperpress/paperpress/internal/dag"
	"github.com/paperpress/paperpress/internal/fsutil"
	"github.com/paperpress/paperpress/internal/ledger"
	"github.com/paperpress/paperpress/internal/tool"
)

// Plan is an ordered set of stages ready for sequential execution. The
// appendix targets are discovered from the filesystem at plan time, not
// hard-coded.
type Plan struct {
	stages map[string]Stage
	order  []string
}

// Order returns the stage IDs in execution order.
func (p *Plan) Order() []string {
	return append([]string{}, p.order...)
}

// stage returns the planned stage with the given ID.
func (p *Plan) stage(id string) Stage {
	return p.stages[id]
}

// PlanOptions carries the knobs that vary per invocation rather than per
// buildfile.
type PlanOptions struct {
	// Force bypasses provisioning memoization.
	Force bool
	// MaxPasses overrides the buildfile's convergence bound when non-zero.
	MaxPasses int
	// Only restricts compilation to the named document/appendix stages.
	// Provisioning and figure generation still run. Empty means everything.
	Only []string
}

// BuildPlan assembles the stage graph for a project: provision feeds figure
// generation, which feeds the diagram pre-build, which feeds every document
// and appendix target. The graph is flattened to a deterministic sequential
// order; execution is strictly single-threaded.
func BuildPlan(ctx context.Context, project *config.Project, led *ledger.Ledger, invoker tool.Invoker, opts PlanOptions) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	graph := dag.New()
	stages := make(map[string]Stage)

	add := func(s Stage, deps ...string) {
		graph.AddNode(s.ID())
		stages[s.ID()] = s
		for _, dep := range deps {
			if _, ok := stages[dep]; !ok {
				continue
			}
			if err := graph.AddEdge(dep, s.ID()); err != nil {
				// Edges are only added between known nodes, so this is a
				// programmer error in plan assembly.
				panic(err)
			}
		}
	}

	if project.Provision != nil {
		add(&Provisioner{Project: project, Ledger: led, Invoker: invoker, Force: opts.Force})
	}
	if project.Notebook != nil {
		add(&FigureRunner{Project: project, Invoker: invoker}, StageProvision)
	}
	add(&DiagramRunner{Project: project, Invoker: invoker}, StageProvision, StageFigures)

	compiler := &Compiler{Project: project, Invoker: invoker, MaxPasses: opts.MaxPasses}

	targets, err := collectTargets(project)
	if err != nil {
		return nil, err
	}
	selected, err := filterTargets(targets, opts.Only)
	if err != nil {
		return nil, err
	}
	for _, target := range selected {
		add(&documentStage{compiler: compiler, target: target}, StageProvision, StageFigures, StageDiagrams)
	}

	order, err := graph.TopoSort()
	if err != nil {
		return nil, fmt.Errorf("planning stage order: %w", err)
	}

	logger.Debug("Pipeline plan assembled.", "stages", len(order))
	return &Plan{stages: stages, order: order}, nil
}

// collectTargets combines the buildfile's declared documents with the
// appendix set discovered on disk.
func collectTargets(project *config.Project) ([]Target, error) {
	compile := project.Compile

	var targets []Target
	for _, doc := range compile.Documents {
		targets = append(targets, Target{
			Name:    "doc:" + doc.Name,
			Source:  doc.Source,
			Dest:    doc.Dest,
			BibMode: BibAlways,
		})
	}

	appendicesDir := filepath.Join(project.Root, compile.AppendicesDir)
	if fsutil.Exists(appendicesDir) {
		names, err := fsutil.DiscoverDocuments(appendicesDir, ".tex", compile.AppendixExclude)
		if err != nil {
			return nil, fmt.Errorf("discovering appendices: %w", err)
		}
		for _, name := range names {
			base := strings.TrimSuffix(name, ".tex")
			targets = append(targets, Target{
				Name:    "appendix:" + base,
				Source:  filepath.Join(compile.AppendicesDir, name),
				Dest:    compile.AppendicesDir,
				BibMode: BibAuto,
			})
		}
	}
	return targets, nil
}

// filterTargets applies the -only selection. Unknown names are an error so a
// typo fails loudly instead of silently building nothing.
func filterTargets(targets []Target, only []string) ([]Target, error) {
	if len(only) == 0 {
		return targets, nil
	}

	byName := make(map[string]Target, len(targets))
	for _, t := range targets {
		byName[t.Name] = t
		// Allow the bare name without the doc:/appendix: prefix.
		if i := strings.IndexByte(t.Name, ':'); i >= 0 {
			byName[t.Name[i+1:]] = t
		}
	}

	var selected []Target
	for _, name := range only {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown target %q", name)
		}
		selected = append(selected, t)
	}
	return selected, nil
}

// Package hcl implements the config.Loader interface for HCL buildfiles.
package hcl

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/paperpress/paperpress/internal/config"
	"github.com/paperpress/paperpress/internal/ctxlog"
	"github.com/paperpress/paperpress/internal/schema"
)

// Loader parses HCL buildfiles into the format-agnostic config model.
type Loader struct{}

// NewLoader returns a ready-to-use HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading buildfile.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse buildfile %s: %w", path, diags)
	}

	var bf schema.Buildfile
	if diags := gohcl.DecodeBody(file.Body, nil, &bf); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode buildfile %s: %w", path, diags)
	}
	if bf.Project == nil {
		return nil, fmt.Errorf("buildfile %s contains no project block", path)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve buildfile directory: %w", err)
	}

	// Expressions inside the project block may reference project.name and
	// project.root, so build the evaluation context before decoding the body.
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"project": cty.ObjectVal(map[string]cty.Value{
				"name": cty.StringVal(bf.Project.Name),
				"root": cty.StringVal(root),
			}),
		},
	}

	var body schema.ProjectBody
	if diags := gohcl.DecodeBody(bf.Project.Body, evalCtx, &body); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project %q: %w", bf.Project.Name, diags)
	}

	model := &config.Model{
		Project: translateProject(bf.Project.Name, root, &body),
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Buildfile loaded and translated into unified model.",
		"project", model.Project.Name, "documents", len(model.Project.Compile.Documents))
	return model, nil
}

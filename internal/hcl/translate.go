package hcl

import (
	"github.com/paperpress/paperpress/internal/config"
	"github.com/paperpress/paperpress/internal/schema"
)

// Default tool command prefixes and layout, matching the conventions of the
// upstream paper repositories. A buildfile only overrides what differs.
var (
	defaultInstaller = []string{"pip", "install", "-r"}
	defaultExecutor  = []string{"jupyter", "nbconvert", "--to", "notebook", "--execute", "--inplace"}
	defaultEngine    = []string{"pdflatex", "-halt-on-error", "-interaction=batchmode"}
	defaultBib       = []string{"bibtex"}
	defaultCrop      = []string{"pdfcrop"}
)

const defaultMaxPasses = 5

// translateProject converts the HCL-specific schema into the agnostic model,
// applying defaults for everything the buildfile leaves unset.
func translateProject(name, root string, body *schema.ProjectBody) *config.Project {
	p := &config.Project{
		Name: name,
		Root: root,
	}

	if body.Provision != nil {
		p.Provision = &config.Provision{
			Manifest:  body.Provision.Manifest,
			Installer: withDefault(body.Provision.Installer, defaultInstaller),
		}
	}
	if body.Notebook != nil {
		p.Notebook = &config.Notebook{
			Path:     body.Notebook.Path,
			Executor: withDefault(body.Notebook.Executor, defaultExecutor),
		}
	}
	if body.Compile != nil {
		p.Compile = translateCompile(body.Compile)
	}
	return p
}

func translateCompile(c *schema.Compile) *config.Compile {
	out := &config.Compile{
		BuildDir:        stringDefault(c.BuildDir, "LaTeX"),
		FiguresDir:      stringDefault(c.FiguresDir, "Figures"),
		TablesDir:       stringDefault(c.TablesDir, "Tables"),
		AppendicesDir:   stringDefault(c.AppendicesDir, "Appendices"),
		AppendixExclude: c.AppendixExclude,
		MaxPasses:       c.MaxPasses,
		Engine:          withDefault(c.Engine, defaultEngine),
		Bibliography:    withDefault(c.Bibliography, defaultBib),
		Crop:            withDefault(c.Crop, defaultCrop),
		PlaceholderBibs: c.PlaceholderBibs,
	}
	if out.MaxPasses == 0 {
		out.MaxPasses = defaultMaxPasses
	}
	for _, d := range c.Documents {
		out.Documents = append(out.Documents, &config.Document{
			Name:   d.Name,
			Source: d.Source,
			Dest:   d.Dest,
		})
	}
	for _, d := range c.Diagrams {
		out.Diagrams = append(out.Diagrams, &config.Diagram{
			Name:   d.Name,
			Source: d.Source,
		})
	}
	return out
}

func withDefault(value, fallback []string) []string {
	if len(value) == 0 {
		return fallback
	}
	return value
}

func stringDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

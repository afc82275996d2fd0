// Package schema declares the HCL shapes of a paperpress buildfile. These
// structs are decode targets only; internal/hcl translates them into the
// format-agnostic model in internal/config.
package schema

import "github.com/hashicorp/hcl/v2"

// Buildfile represents the top-level structure of a project buildfile.
type Buildfile struct {
	Project *Project `hcl:"project,block"`
	Body    hcl.Body `hcl:",remain"`
}

// Project is a `project` block header. Its body is decoded separately into a
// ProjectBody once an evaluation context carrying the project variables has
// been built from the label and the buildfile location.
type Project struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// ProjectBody is the content of a `project` block.
type ProjectBody struct {
	Provision *Provision `hcl:"provision,block"`
	Notebook  *Notebook  `hcl:"notebook,block"`
	Compile   *Compile   `hcl:"compile,block"`
}

// Provision is the `provision` block describing the Python environment.
type Provision struct {
	Manifest  string   `hcl:"manifest"`
	Installer []string `hcl:"installer,optional"`
}

// Notebook is the `notebook` block naming the figure-generating notebook.
type Notebook struct {
	Path     string   `hcl:"path"`
	Executor []string `hcl:"executor,optional"`
}

// Compile is the `compile` block describing the typesetting batch.
type Compile struct {
	BuildDir        string      `hcl:"build_dir,optional"`
	FiguresDir      string      `hcl:"figures_dir,optional"`
	TablesDir       string      `hcl:"tables_dir,optional"`
	AppendicesDir   string      `hcl:"appendices_dir,optional"`
	AppendixExclude []string    `hcl:"appendix_exclude,optional"`
	MaxPasses       int         `hcl:"max_passes,optional"`
	Engine          []string    `hcl:"engine,optional"`
	Bibliography    []string    `hcl:"bibliography,optional"`
	Crop            []string    `hcl:"crop,optional"`
	PlaceholderBibs []string    `hcl:"placeholder_bibs,optional"`
	Documents       []*Document `hcl:"document,block"`
	Diagrams        []*Diagram  `hcl:"diagram,block"`
}

// Document is a `document` block, one named top-level compile target.
type Document struct {
	Name   string `hcl:"name,label"`
	Source string `hcl:"source"`
	Dest   string `hcl:"dest,optional"`
}

// Diagram is a `diagram` block, a vector figure compiled and cropped ahead
// of the document batch.
type Diagram struct {
	Name   string `hcl:"name,label"`
	Source string `hcl:"source"`
}

package config

// Model is the unified, format-agnostic representation of the entire
// project configuration.
type Model struct {
	Project *Project
}

// Project describes one reproducible paper build. All relative paths inside
// it resolve against Root, the directory containing the buildfile, so the
// tool behaves the same regardless of the caller's working directory.
type Project struct {
	Name      string
	Root      string
	Provision *Provision
	Notebook  *Notebook
	Compile   *Compile
}

// Provision describes the Python environment requirements.
type Provision struct {
	// Manifest is the requirements file listing package constraints.
	Manifest string
	// Installer is the command prefix the manifest path is appended to.
	Installer []string
}

// Notebook describes the figure-generating notebook.
type Notebook struct {
	Path string
	// Executor is the command prefix the notebook path is appended to.
	Executor []string
}

// Compile describes the typesetting batch.
type Compile struct {
	// BuildDir is where the engine writes its artifacts before relocation.
	BuildDir      string
	FiguresDir    string
	TablesDir     string
	AppendicesDir string
	// AppendixExclude names files under AppendicesDir that are shared
	// preamble or path-setup includes, not standalone documents.
	AppendixExclude []string
	// MaxPasses bounds the reference-resolution convergence loop.
	MaxPasses int
	// Engine, Bibliography and Crop are command prefixes for the typesetting
	// engine, the bibliography processor and the bounding-box utility.
	Engine       []string
	Bibliography []string
	Crop         []string
	// PlaceholderBibs are bibliography-data filenames that must exist (empty
	// is fine) at the root, appendices and build directories so a public
	// distribution without private data still compiles.
	PlaceholderBibs []string
	Documents       []*Document
	Diagrams        []*Diagram
}

// Document is a named top-level compile target.
type Document struct {
	Name   string
	Source string
	// Dest is the canonical directory for the produced PDF, relative to the
	// project root. Empty means the root itself.
	Dest string
}

// Diagram is a vector figure source compiled and cropped before the
// document batch runs.
type Diagram struct {
	Name   string
	Source string
}

package config

import "fmt"

// Validate checks the structural integrity of a loaded model. It catches
// mistakes a loader cannot express as a parse error, such as a compile block
// with no targets.
func (m *Model) Validate() error {
	if m.Project == nil {
		return fmt.Errorf("buildfile contains no project block")
	}
	p := m.Project

	if p.Name == "" {
		return fmt.Errorf("project name must not be empty")
	}
	if p.Provision != nil && p.Provision.Manifest == "" {
		return fmt.Errorf("project %q: provision block requires a manifest", p.Name)
	}
	if p.Notebook != nil && p.Notebook.Path == "" {
		return fmt.Errorf("project %q: notebook block requires a path", p.Name)
	}
	if p.Compile == nil {
		return fmt.Errorf("project %q: compile block is required", p.Name)
	}
	if len(p.Compile.Documents) == 0 {
		return fmt.Errorf("project %q: compile block declares no documents", p.Name)
	}
	if p.Compile.MaxPasses < 1 {
		return fmt.Errorf("project %q: max_passes must be at least 1", p.Name)
	}

	seen := make(map[string]bool, len(p.Compile.Documents))
	for _, doc := range p.Compile.Documents {
		if doc.Name == "" || doc.Source == "" {
			return fmt.Errorf("project %q: every document needs a name and a source", p.Name)
		}
		if seen[doc.Name] {
			return fmt.Errorf("project %q: duplicate document name %q", p.Name, doc.Name)
		}
		seen[doc.Name] = true
	}
	for _, d := range p.Compile.Diagrams {
		if d.Name == "" || d.Source == "" {
			return fmt.Errorf("project %q: every diagram needs a name and a source", p.Name)
		}
	}
	return nil
}

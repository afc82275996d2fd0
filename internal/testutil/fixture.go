package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paperpress/paperpress/internal/config"
	"github.com/paperpress/paperpress/internal/ledger"
)

// ProjectFixture is a minimal on-disk project plus the collaborators a
// pipeline needs, wired with fakes.
type ProjectFixture struct {
	Project *config.Project
	Ledger  *ledger.Ledger
	Invoker *FakeInvoker
	Engine  *FakeEngine
}

// NewProjectFixture lays out a small paper project in a temp directory: a
// main manuscript, a requirements manifest, a notebook, and an appendices
// directory containing two real appendices plus the two shared preamble
// files that must never be compiled standalone.
func NewProjectFixture(t *testing.T) *ProjectFixture {
	t.Helper()
	root := t.TempDir()

	WriteFile(t, root, "Paper.tex", `\documentclass{article}`)
	WriteFile(t, root, filepath.Join("binder", "requirements.txt"), "numpy\nscipy\n")
	WriteFile(t, root, filepath.Join("Code", "Python", "Figures.ipynb"), `{"cells": []}`)
	WriteFile(t, root, filepath.Join("Appendices", "ApndxA.tex"), `\documentclass{article}`)
	WriteFile(t, root, filepath.Join("Appendices", "ApndxB.tex"), `\documentclass{article}`)
	WriteFile(t, root, filepath.Join("Appendices", "econtexRoot.tex"), "% shared root marker")
	WriteFile(t, root, filepath.Join("Appendices", "econtexPath.tex"), "% shared path setup")

	project := &config.Project{
		Name: "TestPaper",
		Root: root,
		Provision: &config.Provision{
			Manifest:  filepath.Join("binder", "requirements.txt"),
			Installer: []string{"pip", "install", "-r"},
		},
		Notebook: &config.Notebook{
			Path:     filepath.Join("Code", "Python", "Figures.ipynb"),
			Executor: []string{"jupyter", "nbconvert", "--execute"},
		},
		Compile: &config.Compile{
			BuildDir:        "LaTeX",
			FiguresDir:      "Figures",
			TablesDir:       "Tables",
			AppendicesDir:   "Appendices",
			AppendixExclude: []string{"econtexRoot.tex", "econtexPath.tex"},
			MaxPasses:       5,
			Engine:          []string{"pdflatex", "-halt-on-error"},
			Bibliography:    []string{"bibtex"},
			Crop:            []string{"pdfcrop"},
			PlaceholderBibs: []string{"economics.bib"},
			Documents: []*config.Document{
				{Name: "paper", Source: "Paper.tex"},
			},
		},
	}

	led, err := ledger.Open(filepath.Join(root, ".paperpress"))
	require.NoError(t, err)
	t.Cleanup(func() { led.Close() })

	invoker := NewFakeInvoker()
	engine := NewFakeEngine()
	invoker.Handle("engine", engine.Handler())
	invoker.Handle("bibliography", FakeBibliography())

	return &ProjectFixture{
		Project: project,
		Ledger:  led,
		Invoker: invoker,
		Engine:  engine,
	}
}

// WriteFile writes content under root, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

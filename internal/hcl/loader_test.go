package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadString(t *testing.T, src string) (*Loader, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "reproduce.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return NewLoader(), path
}

func TestLoader_FullBuildfile(t *testing.T) {
	src := `
project "BufferStock" {
  provision {
    manifest = "binder/requirements.txt"
  }

  notebook {
    path = "Code/Python/Figures.ipynb"
  }

  compile {
    appendix_exclude = ["econtexRoot.tex", "econtexPath.tex"]
    placeholder_bibs = ["economics.bib"]
    max_passes       = 7

    document "paper" {
      source = "BufferStock.tex"
    }

    document "figures" {
      source = "BufferStock-Figures.tex"
      dest   = "Figures"
    }

    diagram "Inequalities" {
      source = "Figures/Inequalities.tex"
    }
  }
}
`
	loader, path := loadString(t, src)
	model, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	p := model.Project
	require.NotNil(t, p)
	assert.Equal(t, "BufferStock", p.Name)
	assert.Equal(t, filepath.Dir(path), p.Root)

	require.NotNil(t, p.Provision)
	assert.Equal(t, "binder/requirements.txt", p.Provision.Manifest)
	assert.Equal(t, []string{"pip", "install", "-r"}, p.Provision.Installer)

	require.NotNil(t, p.Notebook)
	assert.Equal(t, []string{"jupyter", "nbconvert", "--to", "notebook", "--execute", "--inplace"}, p.Notebook.Executor)

	c := p.Compile
	require.NotNil(t, c)
	assert.Equal(t, "LaTeX", c.BuildDir)
	assert.Equal(t, "Appendices", c.AppendicesDir)
	assert.Equal(t, []string{"econtexRoot.tex", "econtexPath.tex"}, c.AppendixExclude)
	assert.Equal(t, 7, c.MaxPasses)
	assert.Equal(t, []string{"pdflatex", "-halt-on-error", "-interaction=batchmode"}, c.Engine)

	require.Len(t, c.Documents, 2)
	assert.Equal(t, "paper", c.Documents[0].Name)
	assert.Equal(t, "", c.Documents[0].Dest)
	assert.Equal(t, "Figures", c.Documents[1].Dest)

	require.Len(t, c.Diagrams, 1)
	assert.Equal(t, "Inequalities", c.Diagrams[0].Name)
}

func TestLoader_ProjectVariables(t *testing.T) {
	src := `
project "MyPaper" {
  compile {
    document "paper" {
      source = "${project.name}.tex"
    }
  }
}
`
	loader, path := loadString(t, src)
	model, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "MyPaper.tex", model.Project.Compile.Documents[0].Source)
}

func TestLoader_Defaults(t *testing.T) {
	src := `
project "Minimal" {
  compile {
    document "paper" {
      source = "Minimal.tex"
    }
  }
}
`
	loader, path := loadString(t, src)
	model, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	c := model.Project.Compile
	assert.Equal(t, 5, c.MaxPasses)
	assert.Equal(t, []string{"bibtex"}, c.Bibliography)
	assert.Equal(t, []string{"pdfcrop"}, c.Crop)
	assert.Nil(t, model.Project.Provision)
	assert.Nil(t, model.Project.Notebook)
}

func TestLoader_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
		assert.Error(t, err)
	})

	t.Run("no project block", func(t *testing.T) {
		loader, path := loadString(t, ``)
		_, err := loader.Load(context.Background(), path)
		assert.ErrorContains(t, err, "no project block")
	})

	t.Run("no documents", func(t *testing.T) {
		loader, path := loadString(t, `
project "Empty" {
  compile {}
}
`)
		_, err := loader.Load(context.Background(), path)
		assert.ErrorContains(t, err, "declares no documents")
	})

	t.Run("malformed hcl", func(t *testing.T) {
		loader, path := loadString(t, `project "Broken" {`)
		_, err := loader.Load(context.Background(), path)
		assert.ErrorContains(t, err, "failed to parse")
	})
}

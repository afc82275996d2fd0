package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperpress/paperpress/internal/fsutil"
	"github.com/paperpress/paperpress/internal/hcl"
	"github.com/paperpress/paperpress/internal/testutil"
)

// setupProject writes a small but complete project to a temp directory and
// returns the buildfile path.
func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	testutil.WriteFile(t, root, "Paper.tex", `\documentclass{article}`)
	testutil.WriteFile(t, root, "Slides.tex", `\documentclass{beamer}`)
	testutil.WriteFile(t, root, filepath.Join("binder", "requirements.txt"), "numpy\n")
	testutil.WriteFile(t, root, filepath.Join("Code", "Figures.ipynb"), `{"cells": []}`)
	testutil.WriteFile(t, root, filepath.Join("Appendices", "ApndxA.tex"), `\documentclass{article}`)
	testutil.WriteFile(t, root, filepath.Join("Appendices", "econtexRoot.tex"), "%")

	buildfile := `
project "IntegrationPaper" {
  provision {
    manifest = "binder/requirements.txt"
  }

  notebook {
    path = "Code/Figures.ipynb"
  }

  compile {
    appendix_exclude = ["econtexRoot.tex", "econtexPath.tex"]
    placeholder_bibs = ["economics.bib"]

    document "paper" {
      source = "Paper.tex"
    }

    document "slides" {
      source = "Slides.tex"
    }
  }
}
`
	path := filepath.Join(root, "reproduce.hcl")
	require.NoError(t, os.WriteFile(path, []byte(buildfile), 0o644))
	return path
}

func setupApp(t *testing.T, appConfig *Config) (*App, *SafeBuffer) {
	t.Helper()
	logBuffer := &SafeBuffer{}

	invoker := testutil.NewFakeInvoker()
	engine := testutil.NewFakeEngine()
	invoker.Handle("engine", engine.Handler())
	invoker.Handle("bibliography", testutil.FakeBibliography())

	testApp := NewApp(logBuffer, appConfig, hcl.NewLoader(), WithInvoker(invoker))
	t.Cleanup(func() { testApp.Close() })
	return testApp, logBuffer
}

func TestApp_EndToEnd(t *testing.T) {
	buildfile := setupProject(t)
	root := filepath.Dir(buildfile)

	appConfig, err := NewConfig(Config{BuildfilePath: buildfile, LogLevel: "debug"})
	require.NoError(t, err)

	testApp, out := setupApp(t, appConfig)
	require.NoError(t, testApp.Run(context.Background(), appConfig))

	assert.True(t, fsutil.Exists(filepath.Join(root, "Paper.pdf")))
	assert.True(t, fsutil.Exists(filepath.Join(root, "Slides.pdf")))
	assert.True(t, fsutil.Exists(filepath.Join(root, "Appendices", "ApndxA.pdf")))
	assert.False(t, fsutil.Exists(filepath.Join(root, "Appendices", "econtexRoot.pdf")),
		"shared preamble files are never compiled standalone")

	summary := out.String()
	assert.Contains(t, summary, "doc:paper")
	assert.Contains(t, summary, "doc:slides")
	assert.Contains(t, summary, "appendix:ApndxA")
}

func TestApp_OnlySelection(t *testing.T) {
	buildfile := setupProject(t)
	root := filepath.Dir(buildfile)

	appConfig, err := NewConfig(Config{BuildfilePath: buildfile, Only: []string{"slides"}})
	require.NoError(t, err)

	testApp, _ := setupApp(t, appConfig)
	require.NoError(t, testApp.Run(context.Background(), appConfig))

	assert.True(t, fsutil.Exists(filepath.Join(root, "Slides.pdf")))
	assert.False(t, fsutil.Exists(filepath.Join(root, "Paper.pdf")))
}

func TestApp_FailedBuildSurfacesStage(t *testing.T) {
	buildfile := setupProject(t)

	appConfig, err := NewConfig(Config{BuildfilePath: buildfile})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	invoker := testutil.NewFakeInvoker()
	invoker.Fail("notebook", 1, "CellExecutionError: division by zero")

	testApp := NewApp(logBuffer, appConfig, hcl.NewLoader(), WithInvoker(invoker))
	defer testApp.Close()

	err = testApp.Run(context.Background(), appConfig)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "figures")
	assert.Contains(t, err.Error(), "notebook")
}

func TestNewConfig_Validation(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err)

	_, err = NewConfig(Config{BuildfilePath: "x.hcl", MaxPasses: -2})
	assert.Error(t, err)
}

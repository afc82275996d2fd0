package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/paperpress/paperpress/internal/config"
	"github.com/paperpress/paperpress/internal/ctxlog"
	"github.com/paperpress/paperpress/internal/fsutil"
)

// Placeholders ensures empty bibliography-data files exist at the locations
// the documents reference them, so a public distribution that ships without
// private bibliographic data still compiles. Only files this run created are
// removed afterwards; a real bibliography already on disk is never touched.
type Placeholders struct {
	project *config.Project
	created []string
}

// NewPlaceholders returns a Placeholders manager for the project.
func NewPlaceholders(project *config.Project) *Placeholders {
	return &Placeholders{project: project}
}

// Ensure creates any missing placeholder files at the root, appendices and
// build directories.
func (p *Placeholders) Ensure(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	compile := p.project.Compile

	dirs := []string{
		p.project.Root,
		filepath.Join(p.project.Root, compile.AppendicesDir),
		filepath.Join(p.project.Root, compile.BuildDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		for _, name := range compile.PlaceholderBibs {
			path := filepath.Join(dir, name)
			if fsutil.Exists(path) {
				continue
			}
			if err := os.WriteFile(path, nil, 0o644); err != nil {
				return err
			}
			logger.Debug("Created placeholder bibliography file.", "path", path)
			p.created = append(p.created, path)
		}
	}
	return nil
}

// Cleanup removes the placeholder files Ensure created.
func (p *Placeholders) Cleanup(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, path := range p.created {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove placeholder file.", "path", path, "error", err)
		}
	}
	p.created = nil
}

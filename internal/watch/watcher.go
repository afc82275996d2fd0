// Package watch keeps the pipeline resident and rebuilds when document or
// notebook sources change on disk.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/paperpress/paperpress/internal/config"
	"github.com/paperpress/paperpress/internal/ctxlog"
	"github.com/paperpress/paperpress/internal/fsutil"
)

// sourceExtensions are the file kinds whose changes trigger a rebuild.
var sourceExtensions = map[string]bool{
	".tex":   true,
	".bib":   true,
	".ipynb": true,
}

// Watcher debounces filesystem events on the project's source files and
// invokes the rebuild callback after a quiet period. Editor save storms
// (write + rename + chmod within milliseconds) collapse into one rebuild.
type Watcher struct {
	project  *config.Project
	rebuild  func(ctx context.Context) error
	debounce time.Duration
	fs       *fsnotify.Watcher
	// ignored are filenames the pipeline itself creates and removes in
	// watched directories (the placeholder bibliographies). Reacting to
	// them would rebuild forever.
	ignored map[string]bool
}

// New creates a Watcher over the project's root, appendices, figures and
// tables directories, plus the notebook's directory when one is configured.
func New(project *config.Project, rebuild func(ctx context.Context) error) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ignored := make(map[string]bool, len(project.Compile.PlaceholderBibs))
	for _, name := range project.Compile.PlaceholderBibs {
		ignored[name] = true
	}

	w := &Watcher{
		project:  project,
		rebuild:  rebuild,
		debounce: 500 * time.Millisecond,
		fs:       fs,
		ignored:  ignored,
	}

	dirs := []string{
		project.Root,
		filepath.Join(project.Root, project.Compile.AppendicesDir),
		filepath.Join(project.Root, project.Compile.FiguresDir),
		filepath.Join(project.Root, project.Compile.TablesDir),
	}
	if project.Notebook != nil {
		dirs = append(dirs, filepath.Join(project.Root, filepath.Dir(project.Notebook.Path)))
	}
	for _, dir := range dirs {
		if !fsutil.Exists(dir) {
			continue
		}
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run blocks, rebuilding on changes, until the context is cancelled. A
// failing rebuild is reported and watching continues; the next save gets
// another chance.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	defer w.fs.Close()

	logger.Info("Watching for source changes.", "root", w.project.Root)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("Source change detected.", "path", event.Name, "op", event.Op.String())
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error.", "error", err)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			logger.Info("Sources changed, rebuilding.")
			if err := w.rebuild(ctx); err != nil {
				logger.Error("Rebuild failed, still watching.", "error", err)
			}
		}
	}
}

// relevant filters out engine artifacts and anything that is not a source
// file. Everything under the build directory is pipeline output, and reacting
// to it would rebuild forever.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	if !sourceExtensions[strings.ToLower(filepath.Ext(event.Name))] {
		return false
	}
	if w.ignored[filepath.Base(event.Name)] {
		return false
	}
	buildDir := filepath.Join(w.project.Root, w.project.Compile.BuildDir)
	if strings.HasPrefix(event.Name, buildDir+string(filepath.Separator)) {
		return false
	}
	return true
}

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/paperpress/paperpress/internal/tool"
)

// FakeEngine simulates the typesetting engine well enough to exercise the
// convergence loop: each invocation writes the source's aux and pdf files
// into the requested output directory. Aux content per pass is scriptable so
// tests can model documents whose references take several passes to settle.
type FakeEngine struct {
	mu     sync.Mutex
	passes map[string]int

	// AuxContent returns the aux file content for a source at a given pass
	// (1-based). Nil means a constant empty aux, which converges immediately.
	AuxContent func(source string, pass int) string

	// EmbedBBL folds an existing .bbl file's content into the produced PDF
	// body, imitating how the real engine renders the bibliography.
	EmbedBBL bool
}

// NewFakeEngine returns a FakeEngine with stable (immediately converging) aux output.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{passes: make(map[string]int)}
}

// Passes returns how many times the engine ran for the given source path.
func (e *FakeEngine) Passes(source string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.passes[source]
}

// Handler adapts the engine to a FakeInvoker handler.
func (e *FakeEngine) Handler() func(tool.Spec) (tool.Result, error) {
	return func(spec tool.Spec) (tool.Result, error) {
		outDir, source, err := parseEngineArgs(spec)
		if err != nil {
			return tool.Result{}, err
		}

		e.mu.Lock()
		e.passes[source]++
		pass := e.passes[source]
		e.mu.Unlock()

		base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))

		aux := ""
		if e.AuxContent != nil {
			aux = e.AuxContent(source, pass)
		}
		if err := os.WriteFile(filepath.Join(outDir, base+".aux"), []byte(aux), 0o644); err != nil {
			return tool.Result{}, err
		}

		pdf := fmt.Sprintf("%%PDF fake render of %s pass %d\n", base, pass)
		if e.EmbedBBL {
			if bbl, err := os.ReadFile(filepath.Join(outDir, base+".bbl")); err == nil {
				pdf += string(bbl)
			}
		}
		if err := os.WriteFile(filepath.Join(outDir, base+".pdf"), []byte(pdf), 0o644); err != nil {
			return tool.Result{}, err
		}
		return tool.Result{}, nil
	}
}

func parseEngineArgs(spec tool.Spec) (outDir, source string, err error) {
	for i, arg := range spec.Args {
		if arg == "-output-directory" && i+1 < len(spec.Args) {
			outDir = spec.Args[i+1]
		}
	}
	if len(spec.Args) == 0 || outDir == "" {
		return "", "", fmt.Errorf("fake engine: malformed args %v", spec.Args)
	}
	return outDir, spec.Args[len(spec.Args)-1], nil
}

var citationRe = regexp.MustCompile(`\\citation\{([^}]+)\}`)

// FakeBibliography simulates the bibliography processor: it reads the base's
// aux file in the working directory and writes a bbl with one formatted entry
// per citation request.
func FakeBibliography() func(tool.Spec) (tool.Result, error) {
	return func(spec tool.Spec) (tool.Result, error) {
		if len(spec.Args) == 0 {
			return tool.Result{}, fmt.Errorf("fake bibliography: missing base name")
		}
		base := spec.Args[len(spec.Args)-1]

		aux, err := os.ReadFile(filepath.Join(spec.Dir, base+".aux"))
		if err != nil {
			return tool.Result{}, err
		}

		var bbl strings.Builder
		for _, m := range citationRe.FindAllStringSubmatch(string(aux), -1) {
			fmt.Fprintf(&bbl, "\\bibitem{%s} Formatted entry for %s.\n", m[1], m[1])
		}
		err = os.WriteFile(filepath.Join(spec.Dir, base+".bbl"), []byte(bbl.String()), 0o644)
		return tool.Result{}, err
	}
}

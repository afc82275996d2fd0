// Package testutil provides shared helpers for pipeline and app tests.
package testutil

import (
	"context"
	"sync"

	"github.com/paperpress/paperpress/internal/tool"
)

// FakeInvoker is a scripted tool.Invoker. Tests register a handler per
// logical tool name; unhandled tools succeed with an empty result. Every
// invocation is recorded so tests can assert on counts and arguments.
type FakeInvoker struct {
	mu       sync.Mutex
	calls    []tool.Spec
	handlers map[string]func(tool.Spec) (tool.Result, error)
}

// NewFakeInvoker returns an empty fake.
func NewFakeInvoker() *FakeInvoker {
	return &FakeInvoker{
		handlers: make(map[string]func(tool.Spec) (tool.Result, error)),
	}
}

// Handle registers a handler for the given logical tool name.
func (f *FakeInvoker) Handle(toolName string, fn func(tool.Spec) (tool.Result, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[toolName] = fn
}

// Fail makes every invocation of the given tool fail with the given exit code.
func (f *FakeInvoker) Fail(toolName string, exitCode int, stderr string) {
	f.Handle(toolName, func(spec tool.Spec) (tool.Result, error) {
		result := tool.Result{ExitCode: exitCode, Stderr: stderr}
		return result, &tool.ExitError{Spec: spec, Result: result}
	})
}

// Invoke implements tool.Invoker.
func (f *FakeInvoker) Invoke(_ context.Context, spec tool.Spec) (tool.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, spec)
	fn := f.handlers[spec.Tool]
	f.mu.Unlock()

	if fn != nil {
		return fn(spec)
	}
	return tool.Result{}, nil
}

// Calls returns a copy of every recorded invocation.
func (f *FakeInvoker) Calls() []tool.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tool.Spec{}, f.calls...)
}

// CallsFor returns the recorded invocations of one logical tool.
func (f *FakeInvoker) CallsFor(toolName string) []tool.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tool.Spec
	for _, c := range f.calls {
		if c.Tool == toolName {
			out = append(out, c)
		}
	}
	return out
}

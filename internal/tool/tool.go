// Package tool is the boundary between the pipeline and the external
// toolchains it drives. Every stage invokes its tool through the Invoker
// interface, so tests can substitute a scripted fake for the real binaries.
package tool

import (
	"context"
	"fmt"
	"time"
)

// Spec describes one external tool invocation.
type Spec struct {
	// Tool is the logical role of the command: "installer", "notebook",
	// "engine", "bibliography" or "crop". It appears in logs and in the
	// build ledger; the actual binary comes from Command.
	Tool    string
	Command string
	Args    []string
	// Dir is the working directory for the invocation.
	Dir string
}

// Result captures the outcome of a completed invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Invoker runs external tools. Implementations must block until the tool
// exits and must honor context cancellation.
type Invoker interface {
	// Invoke runs the tool described by spec. A non-nil error means the
	// tool could not be started or exited non-zero; the Result is still
	// populated with whatever output was captured.
	Invoke(ctx context.Context, spec Spec) (Result, error)
}

// ExitError reports a tool that ran to completion but signalled failure.
type ExitError struct {
	Spec   Spec
	Result Result
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s (%s) exited with code %d", e.Spec.Tool, e.Spec.Command, e.Result.ExitCode)
	if e.Result.Stderr != "" {
		msg += ": " + lastLines(e.Result.Stderr, 5)
	}
	return msg
}

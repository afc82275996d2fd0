package tool

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/paperpress/paperpress/internal/ctxlog"
)

// ExecInvoker runs tools as local child processes.
type ExecInvoker struct{}

// NewExecInvoker returns an Invoker backed by os/exec.
func NewExecInvoker() *ExecInvoker {
	return &ExecInvoker{}
}

// Invoke implements Invoker.
func (e *ExecInvoker) Invoke(ctx context.Context, spec Spec) (Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Invoking external tool.", "tool", spec.Tool, "command", spec.Command, "args", spec.Args, "dir", spec.Dir)

	cmd := exec.CommandContext(ctx, spec.Command, spec.Args...)
	cmd.Dir = spec.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			logger.Debug("Tool exited non-zero.", "tool", spec.Tool, "exitCode", result.ExitCode)
			return result, &ExitError{Spec: spec, Result: result}
		}
		// Start failure: binary not found, context cancelled, and so on.
		result.ExitCode = -1
		return result, err
	}

	logger.Debug("Tool finished.", "tool", spec.Tool, "duration", result.Duration)
	return result, nil
}

// lastLines returns up to n trailing non-empty lines of s, joined by " | ".
// Tool diagnostics put the interesting part (the actual error) at the end of
// a long transcript.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	var kept []string
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			kept = append(kept, line)
		}
	}
	// Restore original order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, " | ")
}

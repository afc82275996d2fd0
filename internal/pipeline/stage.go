// Package pipeline plans and executes the reproducible paper build: provision
// the Python environment, regenerate figures from the notebook, then drive the
// typesetting engine and bibliography processor to a fixed point over every
// compile target and relocate the produced PDFs.
package pipeline

import (
	"context"
	"time"
)

// Stage statuses, shared with the ledger's stage records.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// StageResult is the structured outcome of one pipeline stage. The driver
// stops at the first failed result and reports which stage and tool failed,
// instead of relying on shell-style halt-on-error conventions.
type StageResult struct {
	Stage    string
	Tool     string
	Status   string
	Duration time.Duration
	// Detail carries the skip reason or the failure diagnostics.
	Detail string
	Err    error
}

// Stage is a single runnable unit of the pipeline.
type Stage interface {
	ID() string
	Run(ctx context.Context) StageResult
}

func okResult(stage, toolName string, d time.Duration) StageResult {
	return StageResult{Stage: stage, Tool: toolName, Status: StatusOK, Duration: d}
}

func skipResult(stage, toolName, reason string) StageResult {
	return StageResult{Stage: stage, Tool: toolName, Status: StatusSkipped, Detail: reason}
}

func failResult(stage, toolName string, d time.Duration, err error) StageResult {
	return StageResult{Stage: stage, Tool: toolName, Status: StatusFailed, Duration: d, Detail: err.Error(), Err: err}
}

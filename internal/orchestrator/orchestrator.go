// Package orchestrator wires the specialist agents into the fixed
// craft-canvas topology and runs it: one prompt in, one sanitized
// HTML/CSS/JS triple out.
package orchestrator

import (
	"context"
	"time"

	"github.com/JoseCortezz25/craft-canvas/internal/lint"
)

// Artifacts is the generated triple. Each field has had its code fences
// removed.
type Artifacts struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// Result is the output of a successful run.
type Result struct {
	RunID       string
	Artifacts   Artifacts
	Diagnostics []lint.Diagnostic
	Duration    time.Duration
}

// Generator runs one prompt to completion. *Pipeline implements it; the
// request boundary and the MCP tools depend on this interface.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts ...RunOption) (*Result, error)
}

// ProgressEvent is emitted to the user during pipeline execution.
type ProgressEvent struct {
	RunID    string
	Node     string
	Layer    int
	Status   ProgressStatus
	Message  string
	Duration time.Duration
}

// ProgressStatus is the state of a node within a run.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

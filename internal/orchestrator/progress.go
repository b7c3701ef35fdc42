package orchestrator

import (
	"fmt"
	"time"
)

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel. Emit must not be called after
// Close.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Node)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Node)
	case ProgressComplete:
		if event.Duration > 0 {
			return fmt.Sprintf("  ✓ %s complete (%s)", event.Node, event.Duration.Round(time.Millisecond))
		}
		return fmt.Sprintf("  ✓ %s complete", event.Node)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Node, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Node)
	}
}

// FormatRunHeader formats the line printed before a run starts.
// Returns: "[{runID}] {n} steps in {layers} layers"
func FormatRunHeader(runID string, steps, layers int) string {
	return fmt.Sprintf("[%s] %d steps in %d layers", runID, steps, layers)
}

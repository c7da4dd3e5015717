// Package progress reports backup stage status to the user. The Tracker
// interface keeps the orchestrator decoupled from the console so tests can
// record stage transitions instead of printing them.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// Tracker interface defines methods for tracking stage progress
type Tracker interface {
	Start(stage string)
	Complete()
	Error(err error)
}

// Stage status values recorded by DefaultTracker
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// StageRecord captures one tracked stage
type StageRecord struct {
	Name      string
	StartTime time.Time
	Status    string
}

// DefaultTracker records stage transitions without producing output.
// Used in tests to assert on stage ordering.
type DefaultTracker struct {
	Stages []StageRecord
}

// Start begins tracking a new stage
func (t *DefaultTracker) Start(stage string) {
	t.Stages = append(t.Stages, StageRecord{
		Name:      stage,
		StartTime: time.Now(),
		Status:    StatusInProgress,
	})
}

// Complete marks the current stage as completed
func (t *DefaultTracker) Complete() {
	if len(t.Stages) == 0 {
		return
	}
	t.Stages[len(t.Stages)-1].Status = StatusCompleted
}

// Error marks the current stage as failed
func (t *DefaultTracker) Error(err error) {
	if len(t.Stages) == 0 {
		return
	}
	t.Stages[len(t.Stages)-1].Status = StatusFailed
}

// ConsoleTracker implements Tracker with colored console output
type ConsoleTracker struct {
	w       io.Writer
	current string
	started time.Time
}

// NewConsoleTracker creates a new console-based stage tracker writing to
// stdout.
func NewConsoleTracker() *ConsoleTracker {
	return &ConsoleTracker{w: os.Stdout}
}

// NewConsoleTrackerTo creates a console tracker writing to w
func NewConsoleTrackerTo(w io.Writer) *ConsoleTracker {
	return &ConsoleTracker{w: w}
}

// Start begins tracking a new stage
func (t *ConsoleTracker) Start(stage string) {
	t.current = stage
	t.started = time.Now()
	fmt.Fprintf(t.w, "%s %s...\n", color.CyanString("==>"), stage)
}

// Complete marks the current stage as completed
func (t *ConsoleTracker) Complete() {
	if t.current == "" {
		return
	}
	duration := time.Since(t.started).Round(time.Millisecond)
	fmt.Fprintf(t.w, "%s %s (took %v)\n", color.GreenString("ok:"), t.current, duration)
	t.current = ""
}

// Error marks the current stage as failed
func (t *ConsoleTracker) Error(err error) {
	if t.current == "" {
		return
	}
	fmt.Fprintf(t.w, "%s %s - %v\n", color.RedString("error:"), t.current, err)
	t.current = ""
}

// Package state records generation and load runs in a local SQLite database.
// The store is bookkeeping only: a failed run record never blocks a new run.
package state

import (
	"time"
)

// RunKind distinguishes what a run did.
type RunKind string

// Run kinds.
const (
	RunKindGenerate RunKind = "generate"
	RunKindLoad     RunKind = "load"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded generation or load run.
type Run struct {
	ID          string
	Kind        RunKind
	SchemaPath  string
	Seed        int64
	Rows        int64
	Destination string
	Status      RunStatus
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Duration returns the run's elapsed time, or zero while still running.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

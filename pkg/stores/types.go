package stores

import (
	"time"
)

// Run is one recorded run attempt of a case.
type Run struct {
	// ID is the unique run identifier (UUID).
	ID string `json:"id"`

	// TopicID is the topic the case belongs to.
	TopicID string `json:"topic_id"`

	// CaseID is the executed case.
	CaseID string `json:"case_id"`

	// Status is "running", "complete" or "failed".
	Status string `json:"status"`

	// Error holds the failure detail for failed runs.
	Error string `json:"error,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the run finished, nil while running.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StageResult is one recorded stage execution within a run.
type StageResult struct {
	// ID is the row identifier.
	ID int64 `json:"id"`

	// RunID references the owning run.
	RunID string `json:"run_id"`

	// Seq is the stage's position in execution order.
	Seq int `json:"seq"`

	// Kind is the deliverable kind of the stage.
	Kind string `json:"kind"`

	// Script is the topic-relative script path.
	Script string `json:"script"`

	// ExitCode is the process exit code.
	ExitCode int `json:"exit_code"`

	// DurationMS is the stage duration in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// Output is the full captured stdout and stderr.
	Output string `json:"output,omitempty"`
}

// Event is a free-form run event.
type Event struct {
	// ID is the row identifier.
	ID int64 `json:"id"`

	// RunID references the owning run.
	RunID string `json:"run_id"`

	// Level is the event level ("info", "warn", "error").
	Level string `json:"level"`

	// Message is the event text.
	Message string `json:"message"`

	// CreatedAt is when the event was recorded.
	CreatedAt time.Time `json:"created_at"`
}

package engine

import (
	"context"
	"time"

	"github.com/caseflow/caseflow/pkg/workflow"
)

// RunRecord identifies one run attempt for history recording.
type RunRecord struct {
	ID        string
	TopicID   string
	CaseID    string
	StartedAt time.Time
}

// StageRecord captures one finished stage process.
type StageRecord struct {
	RunID    string
	Seq      int
	Kind     string
	Script   string
	ExitCode int
	Duration time.Duration
	Output   string
}

// Recorder persists run history. Recording is supplementary to the
// document store: a recorder failure is logged, never fails a run.
type Recorder interface {
	RunStarted(ctx context.Context, rec RunRecord) error
	StageFinished(ctx context.Context, rec StageRecord) error
	RunFinished(ctx context.Context, runID, status, detail string, finishedAt time.Time) error
}

// PreRunGate decides whether a case may start. Implementations deny runs
// with outstanding confirmation items unless the operator confirmed.
type PreRunGate interface {
	CheckRun(ctx context.Context, c *workflow.Case, confirmed bool) error
}

// RunMetrics receives run and stage measurements. A nil RunMetrics on the
// runner disables measurement.
type RunMetrics interface {
	StageFinished(kind string, duration time.Duration, exitCode int)
	RunFinished(status string, duration time.Duration)
}

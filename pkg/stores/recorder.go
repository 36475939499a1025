package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/caseflow/caseflow/pkg/engine"
)

// Recorder adapts the SQLite store to the runner's history interface. Next
// to the run and stage rows it keeps an event log of the run's notable
// moments: start, failed stages, and the terminal outcome.
type Recorder struct {
	store *SQLiteStore

	// now stamps event rows; replaceable in tests.
	now func() time.Time
}

// NewRecorder creates a run-history recorder over an initialized store.
func NewRecorder(store *SQLiteStore) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

// RunStarted records a new run in running status.
func (r *Recorder) RunStarted(ctx context.Context, rec engine.RunRecord) error {
	if err := r.store.CreateRun(ctx, &Run{
		ID:        rec.ID,
		TopicID:   rec.TopicID,
		CaseID:    rec.CaseID,
		Status:    "running",
		StartedAt: rec.StartedAt,
	}); err != nil {
		return err
	}
	return r.event(ctx, rec.ID, "info", fmt.Sprintf("run started for case %s", rec.CaseID))
}

// StageFinished records one executed stage. Failed stages additionally get
// an error event so the run's event log names where it went wrong.
func (r *Recorder) StageFinished(ctx context.Context, rec engine.StageRecord) error {
	if err := r.store.CreateStageResult(ctx, &StageResult{
		RunID:      rec.RunID,
		Seq:        rec.Seq,
		Kind:       rec.Kind,
		Script:     rec.Script,
		ExitCode:   rec.ExitCode,
		DurationMS: rec.Duration.Milliseconds(),
		Output:     rec.Output,
	}); err != nil {
		return err
	}
	if rec.ExitCode != 0 {
		return r.event(ctx, rec.RunID, "error",
			fmt.Sprintf("stage %s exited with code %d", rec.Script, rec.ExitCode))
	}
	return nil
}

// RunFinished records the run's terminal status.
func (r *Recorder) RunFinished(ctx context.Context, runID, status, detail string, finishedAt time.Time) error {
	if err := r.store.FinishRun(ctx, runID, status, detail, finishedAt); err != nil {
		return err
	}
	if status == "failed" {
		return r.event(ctx, runID, "error", "run failed: "+detail)
	}
	return r.event(ctx, runID, "info", "run complete")
}

func (r *Recorder) event(ctx context.Context, runID, level, message string) error {
	return r.store.CreateEvent(ctx, &Event{
		RunID:     runID,
		Level:     level,
		Message:   message,
		CreatedAt: r.now().UTC(),
	})
}

package stores

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/caseflow/caseflow/pkg/engine"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	started := time.Now().UTC().Truncate(time.Second)

	run := &Run{
		ID: "run-1", TopicID: "t1", CaseID: "A1",
		Status: "running", StartedAt: started,
	}
	if err := store.CreateRun(ctx, run); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got.Status != "running" || got.CompletedAt != nil {
		t.Errorf("Unexpected run: %+v", got)
	}

	finished := started.Add(2 * time.Second)
	if err := store.FinishRun(ctx, "run-1", "failed", "stage exited 1", finished); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	got, err = store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got.Status != "failed" || got.Error != "stage exited 1" || got.CompletedAt == nil {
		t.Errorf("Unexpected finished run: %+v", got)
	}

	if err := store.FinishRun(ctx, "no-such-run", "complete", "", finished); err == nil {
		t.Error("Expected error for unknown run")
	}
}

func TestListRunsMostRecentFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i, id := range []string{"run-1", "run-2"} {
		run := &Run{
			ID: id, TopicID: "t1", CaseID: "A1",
			Status: "complete", StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreateRun(ctx, run); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, "t1", "A1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-2" {
		t.Errorf("Unexpected run order: %+v", runs)
	}
}

func TestStageResultsAndEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &Run{ID: "run-1", TopicID: "t1", CaseID: "A1", Status: "running", StartedAt: time.Now().UTC()}
	if err := store.CreateRun(ctx, run); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	stages := []StageResult{
		{RunID: "run-1", Seq: 0, Kind: "analysis", Script: "src/a.py", ExitCode: 0, DurationMS: 120, Output: "ok"},
		{RunID: "run-1", Seq: 1, Kind: "verification", Script: "tests/t.py", ExitCode: 1, DurationMS: 40, Output: "boom"},
	}
	for i := range stages {
		if err := store.CreateStageResult(ctx, &stages[i]); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	got, err := store.ListStageResults(ctx, "run-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(got) != 2 || got[0].Kind != "analysis" || got[1].ExitCode != 1 {
		t.Errorf("Unexpected stage results: %+v", got)
	}

	ev := &Event{RunID: "run-1", Level: "warn", Message: "slow stage", CreatedAt: time.Now().UTC()}
	if err := store.CreateEvent(ctx, ev); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	events, err := store.ListEvents(ctx, "run-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(events) != 1 || events[0].Message != "slow stage" {
		t.Errorf("Unexpected events: %+v", events)
	}
}

func TestRecorderAdaptsRunnerRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rec := NewRecorder(store)

	started := time.Now().UTC().Truncate(time.Second)
	err := rec.RunStarted(ctx, engine.RunRecord{
		ID: "run-1", TopicID: "t1", CaseID: "A1", StartedAt: started,
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	err = rec.StageFinished(ctx, engine.StageRecord{
		RunID: "run-1", Seq: 0, Kind: "analysis", Script: "src/a.py",
		ExitCode: 0, Duration: 150 * time.Millisecond, Output: "ok",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := rec.RunFinished(ctx, "run-1", "complete", "", started.Add(time.Second)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	run, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if run.Status != "complete" {
		t.Errorf("Unexpected run status: %q", run.Status)
	}
	stages, err := store.ListStageResults(ctx, "run-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(stages) != 1 || stages[0].DurationMS != 150 {
		t.Errorf("Unexpected stage records: %+v", stages)
	}

	events, err := store.ListEvents(ctx, "run-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected start and completion events, got: %+v", events)
	}
	if events[0].Message != "run started for case A1" || events[1].Message != "run complete" {
		t.Errorf("Unexpected event log: %+v", events)
	}
}

func TestRecorderLogsFailureEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rec := NewRecorder(store)

	started := time.Now().UTC().Truncate(time.Second)
	if err := rec.RunStarted(ctx, engine.RunRecord{
		ID: "run-1", TopicID: "t1", CaseID: "A1", StartedAt: started,
	}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := rec.StageFinished(ctx, engine.StageRecord{
		RunID: "run-1", Seq: 0, Kind: "analysis", Script: "src/a.py",
		ExitCode: 1, Duration: time.Second, Output: "boom",
	}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := rec.RunFinished(ctx, "run-1", "failed", "stage exited 1", started.Add(time.Second)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	events, err := store.ListEvents(ctx, "run-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got: %+v", events)
	}
	if events[1].Level != "error" || events[1].Message != "stage src/a.py exited with code 1" {
		t.Errorf("Unexpected stage event: %+v", events[1])
	}
	if events[2].Level != "error" || events[2].Message != "run failed: stage exited 1" {
		t.Errorf("Unexpected terminal event: %+v", events[2])
	}
}

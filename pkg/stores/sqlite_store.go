package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore persists run history in a SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a store instance for the given database path.
// Call Init before use.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	return &SQLiteStore{path: path}, nil
}

// Init opens the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs the embedded database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// CreateRun inserts a new run record in running status.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO runs (id, topic_id, case_id, status, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.TopicID, run.CaseID, run.Status, run.Error,
		run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// FinishRun records a run's terminal status and completion time.
func (s *SQLiteStore) FinishRun(ctx context.Context, runID, status, errText string, completedAt time.Time) error {
	query := `UPDATE runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, status, errText, completedAt, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// GetRun returns one run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	query := `
		SELECT id, topic_id, case_id, status, error, started_at, completed_at
		FROM runs WHERE id = ?
	`
	run := &Run{}
	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.ID, &run.TopicID, &run.CaseID, &run.Status, &run.Error,
		&run.StartedAt, &run.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the runs of one case, most recent first.
func (s *SQLiteStore) ListRuns(ctx context.Context, topicID, caseID string) ([]Run, error) {
	query := `
		SELECT id, topic_id, case_id, status, error, started_at, completed_at
		FROM runs WHERE topic_id = ? AND case_id = ?
		ORDER BY started_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, topicID, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.TopicID, &run.CaseID, &run.Status,
			&run.Error, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CreateStageResult inserts one stage execution record.
func (s *SQLiteStore) CreateStageResult(ctx context.Context, sr *StageResult) error {
	query := `
		INSERT INTO stage_results (run_id, seq, kind, script, exit_code, duration_ms, output)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		sr.RunID, sr.Seq, sr.Kind, sr.Script, sr.ExitCode, sr.DurationMS, sr.Output,
	)
	if err != nil {
		return fmt.Errorf("failed to create stage result: %w", err)
	}
	return nil
}

// ListStageResults returns a run's stage records in execution order.
func (s *SQLiteStore) ListStageResults(ctx context.Context, runID string) ([]StageResult, error) {
	query := `
		SELECT id, run_id, seq, kind, script, exit_code, duration_ms, output
		FROM stage_results WHERE run_id = ?
		ORDER BY seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage results: %w", err)
	}
	defer rows.Close()

	var results []StageResult
	for rows.Next() {
		var sr StageResult
		if err := rows.Scan(&sr.ID, &sr.RunID, &sr.Seq, &sr.Kind, &sr.Script,
			&sr.ExitCode, &sr.DurationMS, &sr.Output); err != nil {
			return nil, fmt.Errorf("failed to scan stage result: %w", err)
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

// CreateEvent inserts one run event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, ev *Event) error {
	query := `INSERT INTO events (run_id, level, message, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, ev.RunID, ev.Level, ev.Message, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// ListEvents returns a run's events in insertion order.
func (s *SQLiteStore) ListEvents(ctx context.Context, runID string) ([]Event, error) {
	query := `
		SELECT id, run_id, level, message, created_at
		FROM events WHERE run_id = ?
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.RunID, &ev.Level, &ev.Message, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

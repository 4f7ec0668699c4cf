// Package registry records the history of pipeline runs in sqlite
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// Run kinds
const (
	KindSaveDatasets = "save-datasets"
	KindTrainModel   = "train-model"
)

// Run statuses
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	status      TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER,
	samples     INTEGER NOT NULL DEFAULT 0,
	accuracy    REAL,
	location    TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at);
`

// Run is one invocation of a pipeline phase
type Run struct {
	ID         uuid.UUID
	Kind       string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	Samples    int
	Accuracy   *float64 // train-model only
	Location   string
	Error      string
}

type row struct {
	ID         string          `db:"id"`
	Kind       string          `db:"kind"`
	Status     string          `db:"status"`
	StartedAt  int64           `db:"started_at"`
	FinishedAt sql.NullInt64   `db:"finished_at"`
	Samples    int             `db:"samples"`
	Accuracy   sql.NullFloat64 `db:"accuracy"`
	Location   string          `db:"location"`
	Error      string          `db:"error"`
}

// Registry is the run history database
type Registry struct {
	db *sqlx.DB
}

// Open opens or creates the database at path
func Open(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}
	// sqlite supports one writer at a time
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize registry: %w", err)
		}
	}
	return &Registry{db: db}, nil
}

// Close closes the database
func (r *Registry) Close() error {
	return r.db.Close()
}

// Begin records a new running run of the kind
func (r *Registry) Begin(ctx context.Context, id uuid.UUID, kind string, started time.Time) (*Run, error) {
	run := &Run{ID: id, Kind: kind, Status: StatusRunning, StartedAt: started}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, status, started_at) VALUES (?, ?, ?, ?)`,
		id.String(), kind, StatusRunning, started.UnixMilli())
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Finish stores the outcome of the run; a nil cause marks it succeeded
func (r *Registry) Finish(ctx context.Context, run *Run, finished time.Time, cause error) error {
	run.FinishedAt = finished
	run.Status = StatusSucceeded
	if cause != nil {
		run.Status = StatusFailed
		run.Error = cause.Error()
	}
	var accuracy sql.NullFloat64
	if run.Accuracy != nil {
		accuracy = sql.NullFloat64{Float64: *run.Accuracy, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, samples = ?, accuracy = ?, location = ?, error = ? WHERE id = ?`,
		run.Status, finished.UnixMilli(), run.Samples, accuracy, run.Location, run.Error, run.ID.String())
	return err
}

// List returns up to limit most recent runs, newest first
func (r *Registry) List(ctx context.Context, limit int) ([]Run, error) {
	var rows []row
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, kind, status, started_at, finished_at, samples, accuracy, location, error
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	var runs = make([]Run, 0, len(rows))
	for _, rw := range rows {
		id, err := uuid.Parse(rw.ID)
		if err != nil {
			return nil, fmt.Errorf("run %q: %w", rw.ID, err)
		}
		run := Run{
			ID:        id,
			Kind:      rw.Kind,
			Status:    rw.Status,
			StartedAt: time.UnixMilli(rw.StartedAt),
			Samples:   rw.Samples,
			Location:  rw.Location,
			Error:     rw.Error,
		}
		if rw.FinishedAt.Valid {
			run.FinishedAt = time.UnixMilli(rw.FinishedAt.Int64)
		}
		if rw.Accuracy.Valid {
			a := rw.Accuracy.Float64
			run.Accuracy = &a
		}
		runs = append(runs, run)
	}
	return runs, nil
}

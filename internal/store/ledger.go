// Package store persists a ledger of script runs in SQLite. Every prove
// invocation is recorded with its per-goal outcomes so results can be
// inspected after the fact.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tactician/internal/logging"
)

// Run is one recorded script execution.
type Run struct {
	ID       string
	Problem  string
	Started  time.Time
	Duration time.Duration
	Applied  int
	Closed   int
	Open     int
	Status   string // "proved", "open", "error"
	Error    string
}

// GoalResult is the final state of one goal within a run.
type GoalResult struct {
	RunID   string
	Goal    string
	Rule    string // rule that discharged or split the goal, "" while open
	Outcome string // "closed" or "open"
}

// Ledger is the SQLite-backed run ledger.
type Ledger struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open initializes the ledger database at the given path.
func Open(path string) (*Ledger, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.Get(logging.CategoryStore).Debug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.Get(logging.CategoryStore).Debug("failed to set journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.Get(logging.CategoryStore).Debug("failed to set synchronous=NORMAL: %v", err)
	}

	l := &Ledger{db: db, path: path}
	if err := l.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Get(logging.CategoryStore).Info("run ledger ready at %s", path)
	return l, nil
}

func (l *Ledger) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		problem TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		applied INTEGER NOT NULL,
		closed INTEGER NOT NULL,
		open INTEGER NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS goal_results (
		run_id TEXT NOT NULL REFERENCES runs(id),
		goal TEXT NOT NULL,
		rule TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_goal_results_run ON goal_results(run_id);
	`
	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize ledger schema: %w", err)
	}
	return nil
}

// RecordRun inserts a run and its goal results in one transaction.
// A missing run ID is filled in and the final ID is returned.
func (l *Ledger) RecordRun(run Run, results []GoalResult) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := l.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, problem, started_at, duration_ms, applied, closed, open, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Problem, run.Started.UnixMilli(), run.Duration.Milliseconds(),
		run.Applied, run.Closed, run.Open, run.Status, run.Error)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, r := range results {
		_, err := tx.Exec(`INSERT INTO goal_results (run_id, goal, rule, outcome) VALUES (?, ?, ?, ?)`,
			run.ID, r.Goal, r.Rule, r.Outcome)
		if err != nil {
			return "", fmt.Errorf("failed to insert goal result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	logging.Get(logging.CategoryStore).Debug("recorded run %s (%s)", run.ID, run.Status)
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first.
func (l *Ledger) ListRuns(limit int) ([]Run, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.Query(`
		SELECT id, problem, started_at, duration_ms, applied, closed, open, status, error
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, durMS int64
		if err := rows.Scan(&r.ID, &r.Problem, &started, &durMS, &r.Applied, &r.Closed, &r.Open, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Started = time.UnixMilli(started)
		r.Duration = time.Duration(durMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// GoalResults returns the per-goal outcomes for a run.
func (l *Ledger) GoalResults(runID string) ([]GoalResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.db.Query(`SELECT run_id, goal, rule, outcome FROM goal_results WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal results: %w", err)
	}
	defer rows.Close()

	var out []GoalResult
	for rows.Next() {
		var r GoalResult
		if err := rows.Scan(&r.RunID, &r.Goal, &r.Rule, &r.Outcome); err != nil {
			return nil, fmt.Errorf("failed to scan goal result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

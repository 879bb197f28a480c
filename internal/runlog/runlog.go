// Package runlog keeps the history of plan executions and input recordings
// in SQLite, so runs can be compared across sessions.
package runlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Execution is one plan run.
type Execution struct {
	ID         string    `json:"id"`
	Slot       int       `json:"slot"`
	Mode       string    `json:"mode"`
	Trigger    string    `json:"trigger"`
	PlanHash   string    `json:"plan_hash"`
	Steps      int       `json:"steps"`
	Completed  int       `json:"completed"`
	Outcome    string    `json:"outcome"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns how long the run took.
func (e Execution) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// Recording is one input recording session.
type Recording struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Target    string    `json:"target"`
	Reason    string    `json:"reason"`
	Samples   int       `json:"samples"`
	Steps     int       `json:"steps"`
	Lines     int       `json:"lines"`
	Full      bool      `json:"full"`
	StartedAt time.Time `json:"started_at"`
	StoppedAt time.Time `json:"stopped_at"`
}

// Store manages run history in SQLite.
type Store struct {
	DBPath string
	db     *sql.DB
}

// Open opens or creates the history database.
func Open(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve history db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history db dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	store := &Store{
		DBPath: absPath,
		db:     db,
	}

	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) ensureSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS executions (
	id TEXT PRIMARY KEY,
	slot INTEGER NOT NULL,
	mode TEXT NOT NULL,
	trigger_source TEXT NOT NULL,
	plan_hash TEXT NOT NULL,
	steps INTEGER NOT NULL,
	completed INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_executions_started ON executions(started_at);

CREATE TABLE IF NOT EXISTS recordings (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	target TEXT NOT NULL,
	reason TEXT NOT NULL,
	samples INTEGER NOT NULL,
	steps INTEGER NOT NULL,
	lines INTEGER NOT NULL,
	is_full INTEGER NOT NULL,
	started_at TEXT NOT NULL,
	stopped_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recordings_started ON recordings(started_at);
`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("create history schema: %w", err)
	}
	return nil
}

// RecordExecution stores a finished execution.
func (s *Store) RecordExecution(e Execution) error {
	_, err := s.db.Exec(`
		INSERT INTO executions (id, slot, mode, trigger_source, plan_hash, steps, completed, outcome, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Slot, e.Mode, e.Trigger, e.PlanHash, e.Steps, e.Completed, e.Outcome,
		formatTime(e.StartedAt), formatTime(e.FinishedAt))
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// RecordRecording stores a finished recording session.
func (s *Store) RecordRecording(r Recording) error {
	full := 0
	if r.Full {
		full = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO recordings (id, kind, target, reason, samples, steps, lines, is_full, started_at, stopped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Kind, r.Target, r.Reason, r.Samples, r.Steps, r.Lines, full,
		formatTime(r.StartedAt), formatTime(r.StoppedAt))
	if err != nil {
		return fmt.Errorf("insert recording: %w", err)
	}
	return nil
}

// Executions returns the most recent executions, newest first. A limit of
// zero or less returns all of them.
func (s *Store) Executions(limit int) ([]Execution, error) {
	rows, err := s.db.Query(`
		SELECT id, slot, mode, trigger_source, plan_hash, steps, completed, outcome, started_at, finished_at
		FROM executions
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var out []Execution
	for rows.Next() {
		var e Execution
		var started, finished string
		if err := rows.Scan(&e.ID, &e.Slot, &e.Mode, &e.Trigger, &e.PlanHash,
			&e.Steps, &e.Completed, &e.Outcome, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		e.StartedAt = parseTime(started)
		e.FinishedAt = parseTime(finished)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}
	return out, nil
}

// Recordings returns the most recent recordings, newest first.
func (s *Store) Recordings(limit int) ([]Recording, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, target, reason, samples, steps, lines, is_full, started_at, stopped_at
		FROM recordings
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query recordings: %w", err)
	}
	defer rows.Close()

	var out []Recording
	for rows.Next() {
		var r Recording
		var full int
		var started, stopped string
		if err := rows.Scan(&r.ID, &r.Kind, &r.Target, &r.Reason, &r.Samples,
			&r.Steps, &r.Lines, &full, &started, &stopped); err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		r.Full = full != 0
		r.StartedAt = parseTime(started)
		r.StoppedAt = parseTime(stopped)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recordings: %w", err)
	}
	return out, nil
}

func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

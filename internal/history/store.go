// Package history persists delegation outcomes to a local SQLite database.
// Every wave pass (including revisions) and every terminal plan result is
// recorded, so past runs can be inspected after the fact.
package history

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/dispatch/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Run is a persisted terminal plan outcome.
type Run struct {
	ID         int64
	PlanName   string
	State      string
	Risk       string
	WavePasses int
	Cause      string
	Escalated  bool
	Duration   time.Duration
	CreatedAt  time.Time
}

// Attempt is a persisted wave pass.
type Attempt struct {
	ID        int64
	PlanName  string
	Wave      string
	Attempt   int
	Approved  bool
	Results   []TaskRecord
	Verdicts  []VerdictRecord
	Duration  time.Duration
	CreatedAt time.Time
}

// TaskRecord is the JSON shape of one task result inside an attempt row.
type TaskRecord struct {
	TaskID   string `json:"task_id"`
	Worker   string `json:"worker"`
	Status   string `json:"status"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

// VerdictRecord is the JSON shape of one gate verdict inside an attempt row.
type VerdictRecord struct {
	Reviewer string `json:"reviewer"`
	Decision string `json:"decision"`
	Notes    string `json:"notes,omitempty"`
}

// Store manages the SQLite history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if necessary) the history database at dbPath and
// initializes the schema. ":memory:" is supported for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout must come first so the remaining pragmas wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := execWithRetry(db, schemaSQL, 5, 10*time.Millisecond); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a statement with exponential backoff on
// "database is locked" errors, which can occur when two dispatch processes
// initialize the same database file concurrently.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun persists a terminal plan outcome.
func (s *Store) RecordRun(planName string, risk models.RiskLevel, result *models.PlanResult) error {
	cause := ""
	if result.Cause != nil {
		cause = result.Cause.Error()
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (plan_name, state, risk, wave_passes, cause, escalated, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		planName, string(result.State), string(risk), len(result.Waves), cause, boolToInt(result.Escalated), result.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecordAttempt persists a single wave pass. Implements the executor's
// AttemptRecorder interface.
func (s *Store) RecordAttempt(planName string, wr models.WaveResult) error {
	records := make([]TaskRecord, 0, len(wr.Results))
	for _, r := range wr.Results {
		rec := TaskRecord{
			TaskID:   r.TaskID,
			Worker:   r.Worker,
			Status:   string(r.Status),
			Attempts: r.Attempts,
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		records = append(records, rec)
	}
	verdicts := make([]VerdictRecord, 0, len(wr.Verdicts))
	for _, v := range wr.Verdicts {
		verdicts = append(verdicts, VerdictRecord{
			Reviewer: v.Reviewer,
			Decision: string(v.Decision),
			Notes:    v.Notes,
		})
	}

	resultsJSON, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal task records: %w", err)
	}
	verdictsJSON, err := json.Marshal(verdicts)
	if err != nil {
		return fmt.Errorf("marshal verdicts: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO wave_attempts (plan_name, wave, attempt, approved, results, verdicts, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		planName, wr.Wave, wr.Attempt, boolToInt(wr.Approved), string(resultsJSON), string(verdictsJSON), wr.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record wave attempt: %w", err)
	}
	return nil
}

// ListAttempts returns all recorded wave passes for a plan in insertion
// order.
func (s *Store) ListAttempts(planName string) ([]Attempt, error) {
	rows, err := s.db.Query(
		`SELECT id, plan_name, wave, attempt, approved, results, verdicts, duration_ms, created_at
		 FROM wave_attempts WHERE plan_name = ? ORDER BY id`,
		planName,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var approved int
		var resultsJSON, verdictsJSON string
		var durationMs int64
		if err := rows.Scan(&a.ID, &a.PlanName, &a.Wave, &a.Attempt, &approved, &resultsJSON, &verdictsJSON, &durationMs, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Approved = approved != 0
		a.Duration = time.Duration(durationMs) * time.Millisecond
		if err := json.Unmarshal([]byte(resultsJSON), &a.Results); err != nil {
			return nil, fmt.Errorf("unmarshal task records: %w", err)
		}
		if err := json.Unmarshal([]byte(verdictsJSON), &a.Verdicts); err != nil {
			return nil, fmt.Errorf("unmarshal verdicts: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// RecentRuns returns the most recent terminal plan outcomes, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, plan_name, state, risk, wave_passes, cause, escalated, duration_ms, created_at
		 FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var escalated int
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.PlanName, &r.State, &r.Risk, &r.WavePasses, &r.Cause, &escalated, &durationMs, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Escalated = escalated != 0
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package sqlite keeps a local history of report runs for the command line tool.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"example.com/healthreport/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS report_runs (
	run_id       TEXT PRIMARY KEY,
	tenant_id    TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	records      INTEGER NOT NULL,
	workouts     INTEGER NOT NULL,
	sheets       INTEGER NOT NULL,
	first_month  TEXT NOT NULL DEFAULT '',
	last_month   TEXT NOT NULL DEFAULT '',
	timezone     TEXT NOT NULL,
	duration_ms  INTEGER NOT NULL,
	generated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS report_runs_user_idx ON report_runs (tenant_id, user_id, generated_at DESC);
`

// Store is a report.RunRepository backed by a SQLite file.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default history database path.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, _ = os.UserHomeDir()
	}
	return filepath.Join(dir, "healthreport", "history.sqlite")
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records a run.
func (s *Store) SaveRun(ctx context.Context, run report.RunSummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO report_runs (run_id, tenant_id, user_id, records, workouts, sheets, first_month, last_month, timezone, duration_ms, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.TenantID, run.UserID, run.Records, run.Workouts, run.Sheets, run.FirstMonth, run.LastMonth,
		run.Timezone, run.Duration.Milliseconds(), run.GeneratedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns the user's most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, tenantID, userID string, limit int) ([]report.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, tenant_id, user_id, records, workouts, sheets, first_month, last_month, timezone, duration_ms, generated_at
		FROM report_runs
		WHERE tenant_id = ? AND user_id = ?
		ORDER BY generated_at DESC, rowid DESC
		LIMIT ?
	`, tenantID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]report.RunSummary, 0)
	for rows.Next() {
		var run report.RunSummary
		var durationMs, generatedAt int64
		if err := rows.Scan(&run.ID, &run.TenantID, &run.UserID, &run.Records, &run.Workouts, &run.Sheets,
			&run.FirstMonth, &run.LastMonth, &run.Timezone, &durationMs, &generatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		run.GeneratedAt = time.UnixMilli(generatedAt).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

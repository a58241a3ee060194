// Package postgres stores report runs, user settings and outbox events in Postgres.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/events"
	"example.com/healthreport/internal/outbox"
	"example.com/healthreport/internal/report"
)

// Repository provides Postgres-backed persistence for report runs and settings.
type Repository struct {
	pool     *pgxpool.Pool
	topic    string
	defaults config.Settings
}

// Option customises a Repository.
type Option func(*Repository)

// WithDefaultSettings sets the settings returned for users who never stored any.
func WithDefaultSettings(s config.Settings) Option {
	return func(r *Repository) {
		r.defaults = s
	}
}

// NewRepository constructs a Repository publishing run events to topic.
func NewRepository(pool *pgxpool.Pool, topic string, opts ...Option) *Repository {
	r := &Repository{pool: pool, topic: topic, defaults: config.DefaultSettings()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SaveRun persists the run and its report.generated outbox event inside a single transaction.
func (r *Repository) SaveRun(ctx context.Context, run report.RunSummary) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", run.TenantID); err != nil {
		return err
	}

	const insertRun = `INSERT INTO report_runs (run_id, tenant_id, user_id, records, workouts, sheets, first_month, last_month, timezone, duration_ms, generated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

	_, err = tx.Exec(ctx, insertRun,
		run.ID,
		run.TenantID,
		run.UserID,
		run.Records,
		run.Workouts,
		run.Sheets,
		nullIfEmpty(run.FirstMonth),
		nullIfEmpty(run.LastMonth),
		run.Timezone,
		run.Duration.Milliseconds(),
		run.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	payload, err := events.NewReportGenerated(run).Marshal()
	if err != nil {
		return err
	}
	if err = outbox.Enqueue(ctx, tx, outbox.Message{
		TenantID:      run.TenantID,
		AggregateType: events.ReportRunAggregate,
		AggregateID:   run.ID,
		EventType:     events.ReportGeneratedType,
		Topic:         r.topic,
		PartitionKey:  run.UserID,
		Payload:       payload,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListRuns returns the user's most recent runs, newest first.
func (r *Repository) ListRuns(ctx context.Context, tenantID, userID string, limit int) ([]report.RunSummary, error) {
	const query = `SELECT run_id, tenant_id, user_id, records, workouts, sheets, COALESCE(first_month, ''), COALESCE(last_month, ''), timezone, duration_ms, generated_at
        FROM report_runs
        WHERE tenant_id=$1 AND user_id=$2
        ORDER BY generated_at DESC, run_id DESC
        LIMIT $3`

	var runs []report.RunSummary
	err := r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, tenantID, userID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		runs = make([]report.RunSummary, 0, limit)
		for rows.Next() {
			var run report.RunSummary
			var durationMs int64
			if err := rows.Scan(&run.ID, &run.TenantID, &run.UserID, &run.Records, &run.Workouts, &run.Sheets, &run.FirstMonth, &run.LastMonth, &run.Timezone, &durationMs, &run.GeneratedAt); err != nil {
				return err
			}
			run.Duration = time.Duration(durationMs) * time.Millisecond
			run.GeneratedAt = run.GeneratedAt.UTC()
			runs = append(runs, run)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// GetSettings loads the user's settings. Stored values are applied over the repository defaults.
func (r *Repository) GetSettings(ctx context.Context, tenantID, userID string) (config.Settings, error) {
	var raw []byte
	err := r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `SELECT settings FROM user_settings WHERE tenant_id=$1 AND user_id=$2`, tenantID, userID).Scan(&raw)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return r.defaults, nil
	}
	if err != nil {
		return config.Settings{}, err
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return config.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return config.Apply(r.defaults, values)
}

// SaveSettings upserts the user's settings.
func (r *Repository) SaveSettings(ctx context.Context, tenantID, userID string, settings config.Settings) error {
	body, err := json.Marshal(settings.Values())
	if err != nil {
		return err
	}
	return r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO user_settings (tenant_id, user_id, settings, updated_at)
            VALUES ($1,$2,$3,NOW())
            ON CONFLICT (tenant_id, user_id) DO UPDATE SET settings = EXCLUDED.settings, updated_at = NOW()`,
			tenantID, userID, body)
		return err
	})
}

func (r *Repository) withTenant(ctx context.Context, tenantID string, fn func(pgx.Tx) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package history

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/senioritydiff/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS comparison_runs (
	id            TEXT PRIMARY KEY,
	started_at    TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL,
	old_name      TEXT NOT NULL,
	new_name      TEXT NOT NULL,
	total_old     INTEGER NOT NULL,
	total_new     INTEGER NOT NULL,
	total_entries INTEGER NOT NULL,
	total_exits   INTEGER NOT NULL,
	total_changed INTEGER NOT NULL,
	client_ip     TEXT,
	user_agent    TEXT
)`,
	`CREATE INDEX IF NOT EXISTS comparison_runs_started_at_idx ON comparison_runs (started_at DESC)`,
}

// Postgres is a Store backed by a PostgreSQL table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates the run table if needed and returns the store.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create comparison_runs: %w", err)
		}
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Append(ctx context.Context, run core.RunSummary) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO comparison_runs (
			id, started_at, duration_ms, old_name, new_name,
			total_old, total_new, total_entries, total_exits, total_changed,
			client_ip, user_agent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		run.ID, run.StartedAt, run.DurationMs, run.OldName, run.NewName,
		run.TotalOld, run.TotalNew, run.TotalEntries, run.TotalExits, run.TotalChanged,
		nullText(run.ClientIP), nullText(run.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

func (p *Postgres) Recent(ctx context.Context, limit int) ([]core.RunSummary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, started_at, duration_ms, old_name, new_name,
			total_old, total_new, total_entries, total_exits, total_changed,
			client_ip, user_agent
		FROM comparison_runs
		ORDER BY started_at DESC
		LIMIT $1`, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, scanRun)
	if err != nil {
		return nil, fmt.Errorf("scan runs: %w", err)
	}
	return runs, nil
}

func (p *Postgres) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM comparison_runs WHERE started_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanRun(row pgx.CollectableRow) (core.RunSummary, error) {
	var (
		r         core.RunSummary
		startedAt pgtype.Timestamptz
		clientIP  pgtype.Text
		userAgent pgtype.Text
	)
	err := row.Scan(
		&r.ID, &startedAt, &r.DurationMs, &r.OldName, &r.NewName,
		&r.TotalOld, &r.TotalNew, &r.TotalEntries, &r.TotalExits, &r.TotalChanged,
		&clientIP, &userAgent,
	)
	if err != nil {
		return r, err
	}
	r.StartedAt = startedAt.Time
	r.ClientIP = clientIP.String
	r.UserAgent = userAgent.String
	return r, nil
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

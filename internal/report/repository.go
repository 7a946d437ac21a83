package report

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS frame_reports (
	id           UUID PRIMARY KEY,
	session_id   TEXT NOT NULL DEFAULT '',
	reporter_fid BIGINT NOT NULL,
	target_fid   BIGINT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS frame_reports_target_idx ON frame_reports (target_fid, created_at DESC);
`

// Repository stores reports in Postgres. It implements Reporter.
type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create frame_reports: %w", err)
	}
	return nil
}

func (r *Repository) Report(ctx context.Context, rep Report) error {
	if err := rep.Validate(); err != nil {
		return err
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO frame_reports (id, session_id, reporter_fid, target_fid, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, rep.ID, rep.SessionID, rep.ReporterFID, rep.TargetFID, rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

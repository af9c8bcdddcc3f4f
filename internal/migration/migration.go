package migration

import (
	"context"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner creates the report archive schema. Every statement is
// idempotent and portable between postgres and sqlite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createReportsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create reports table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// generated_at holds a fixed-width UTC timestamp so text ordering is
// chronological on both drivers.
func (r *MigrationRunner) createReportsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reports (
			id VARCHAR(36) PRIMARY KEY,
			source TEXT NOT NULL DEFAULT '',
			date_range VARCHAR(32) NOT NULL DEFAULT 'all',
			row_count INTEGER NOT NULL DEFAULT 0,
			generated_at VARCHAR(40) NOT NULL,
			body TEXT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_source ON reports(source)`,
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Package postgres implements the report archive over database/sql through
// sqlx. Postgres is the production driver; the pure-Go sqlite driver serves
// single-node installs and tests.
package postgres

import (
	"context"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/errors"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Connect opens the archive database, verifies the connection and applies
// the schema. driver is "postgres" or "sqlite".
func Connect(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Open(driver, url)
	if err != nil {
		return nil, errors.DatabaseError("failed to open database", err)
	}
	if driver == "sqlite" {
		// sqlite allows a single writer, and each :memory: connection is its own database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.DatabaseError("failed to ping database", err)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "database migration failed"))
	}
	return db, nil
}

// Package postgres implements every store interface (internal/store) on
// top of PostgreSQL, for deployments that need durability and concurrent
// access beyond what internal/store/memory offers.
package postgres

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
)

// DB wraps the shared *sqlx.DB connection handed to every store
// implementation in this package: one connection pool per process,
// passed into each repository.
type DB struct {
	*sqlx.DB
}

// Open connects to dsn and applies pending migrations from migrationsPath
// before returning, so a fresh deployment never serves traffic against an
// unmigrated schema.
func Open(ctx context.Context, dsn, migrationsPath string, maxOpenConns int) (*DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, ldperrors.ErrTransientStorage("connect", err)
	}
	if maxOpenConns > 0 {
		conn.SetMaxOpenConns(maxOpenConns)
	}

	if migrationsPath != "" {
		if err := applyMigrations(dsn, migrationsPath); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return &DB{DB: conn}, nil
}

func applyMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dsn)
	if err != nil {
		return ldperrors.ErrFatalConfiguration(fmt.Sprintf("building migrator: %v", err))
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return ldperrors.ErrFatalConfiguration(fmt.Sprintf("applying migrations: %v", err))
	}
	return nil
}

// Package migrations holds the goose schema migrations for the encrypted
// record tables. They are applied explicitly by cmd/schema or by tests,
// never as a side effect of starting a job.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite3/*.sql
var embedMigrations embed.FS

// ErrUnsupportedDriver is returned for a driver without a migration set.
var ErrUnsupportedDriver = errors.New("unsupported migration driver")

// MigrationStatus is one line of Status output.
type MigrationStatus struct {
	Version int64
	Path    string
	Applied bool
}

// newProvider maps a database/sql driver name to its goose dialect and
// migration directory.
func newProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	if db == nil {
		return nil, errors.New("migration error: db is nil")
	}

	var (
		dialect goose.Dialect
		dir     string
	)
	switch driver {
	case "pgx":
		dialect, dir = goose.DialectPostgres, "postgres"
	case "sqlite3":
		dialect, dir = goose.DialectSQLite3, "sqlite3"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	fsys, err := fs.Sub(embedMigrations, dir)
	if err != nil {
		return nil, fmt.Errorf("migration error opening %s migrations: %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("migration error creating provider: %w", err)
	}
	return provider, nil
}

// Migrate applies every pending migration for driver ("pgx" or "sqlite3").
// It returns the versions applied by this call.
func Migrate(ctx context.Context, db *sql.DB, driver string) ([]int64, error) {
	provider, err := newProvider(db, driver)
	if err != nil {
		return nil, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	applied := make([]int64, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Version)
	}
	return applied, nil
}

// Status reports every known migration and whether it has been applied.
func Status(ctx context.Context, db *sql.DB, driver string) ([]MigrationStatus, error) {
	provider, err := newProvider(db, driver)
	if err != nil {
		return nil, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status error: %w", err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationStatus{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

// Package store persists encrypted record collections through database/sql,
// with one transaction per walker batch.
package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ai8future/fieldcrypt/internal/config"
	"github.com/ai8future/fieldcrypt/internal/logger"
	"github.com/ai8future/fieldcrypt/migrations"
)

// DB wraps *sql.DB with the driver-specific query builder and error
// classification.
type DB struct {
	*sql.DB
	driver             string
	placeholder        sq.PlaceholderFormat
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// NewConnect opens and pings the database named by cfg.
func NewConnect(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewConnectPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		return NewConnectSQLite(ctx, cfg, log)
	default:
		log.Error().Str("func", "NewConnect").Str("driver", cfg.Driver).Msg("unsupported database driver")
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

func NewConnectPostgres(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open(config.DriverPostgres, cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error occured during database connection")
		return nil, fmt.Errorf("error occured during database connection: %w", err)
	}

	conn.SetMaxOpenConns(4)

	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Info().Str("func", "NewConnectPostgres").Msg("connected to database successfully")

	return newDB(conn, config.DriverPostgres, log), nil
}

func NewConnectSQLite(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open(config.DriverSQLite, cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Debug().Str("func", "NewConnectSQLite").Msg("connected to database successfully")

	return newDB(conn, config.DriverSQLite, log), nil
}

// NewDBFromSQL wraps an already opened connection.
func NewDBFromSQL(conn *sql.DB, driver string, log *logger.Logger) *DB {
	return newDB(conn, driver, log)
}

func newDB(conn *sql.DB, driver string, log *logger.Logger) *DB {
	if log == nil {
		log = logger.Nop()
	}
	db := &DB{
		DB:     conn,
		driver: driver,
		logger: log,
	}
	if driver == config.DriverSQLite {
		db.placeholder = sq.Question
		db.errorClassificator = NewSQLiteErrorClassifier()
	} else {
		db.placeholder = sq.Dollar
		db.errorClassificator = NewPostgresErrorClassifier()
	}
	return db
}

// Driver returns the database/sql driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Builder returns a squirrel statement builder using the driver's
// placeholder format.
func (db *DB) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(db.placeholder)
}

// Classify reports whether err is worth retrying.
func (db *DB) Classify(err error) ErrorClassification {
	return db.errorClassificator.Classify(err)
}

// Migrate applies the pending schema migrations.
func (db *DB) Migrate(ctx context.Context) ([]int64, error) {
	return migrations.Migrate(ctx, db.DB, db.driver)
}

// MigrationStatus reports the applied state of every schema migration.
func (db *DB) MigrationStatus(ctx context.Context) ([]migrations.MigrationStatus, error) {
	return migrations.Status(ctx, db.DB, db.driver)
}

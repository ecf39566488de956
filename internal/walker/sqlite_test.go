package walker

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai8future/fieldcrypt/internal/config"
	"github.com/ai8future/fieldcrypt/internal/logger"
	"github.com/ai8future/fieldcrypt/internal/store"
	"github.com/ai8future/fieldcrypt/models"
)

// TestWalkers_SQLite migrates plaintext rows, searches them by blind index,
// rotates them and searches again, all against a real SQLite database.
func TestWalkers_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := store.NewConnect(ctx, config.DB{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "walkers.db"),
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Migrate(ctx)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO transactions (description, notes, creditor_name, amount) VALUES
		(?, ?, NULL, ?), (?, NULL, ?, NULL), (NULL, NULL, NULL, NULL)`,
		"Compra Mercado", "weekly", 12.5, "Salary", "ACME Corp")
	require.NoError(t, err)

	s, err := store.NewRecordStore(db, models.Transactions)
	require.NoError(t, err)
	c := testCrypter(t)

	n, err := NewMigrationWalker(s, c, nil).Run(ctx, MigrationOptions{BatchSize: 1, NullAfter: true})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	counts, err := s.CountByVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{0: 1, 1: 2}, counts)

	search := func(field, value string) []int64 {
		t.Helper()
		cond, err := c.SearchCondition(field+"_bidx", models.DefaultVersionColumn, field, value)
		require.NoError(t, err)
		ids, err := s.FindIDs(ctx, cond)
		require.NoError(t, err)
		return ids
	}
	assert.Equal(t, []int64{1}, search("description", "  compra MERCADO "))
	assert.Equal(t, []int64{2}, search("creditor_name", "acme corp"))
	assert.Empty(t, search("description", "nothing"))

	n, err = NewRotationWalker(s, c, nil).Run(ctx, RotationOptions{From: 1, To: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	counts, err = s.CountByVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{0: 1, 2: 2}, counts)
	assert.Equal(t, []int64{1}, search("description", "Compra Mercado"))

	batch, err := s.Begin(ctx)
	require.NoError(t, err)
	records, err := batch.SelectByVersion(ctx, 2, 0, 10)
	require.NoError(t, err)
	require.NoError(t, batch.Rollback())
	require.Len(t, records, 2)

	assert.False(t, records[0].HasPlain("description"))
	requireDecrypts(t, c, records[0], "description", "Compra Mercado")
	requireDecrypts(t, c, records[0], "notes", "weekly")
	requireDecrypts(t, c, records[0], "amount", "12.50")
	assert.False(t, records[0].HasEncrypted("creditor_name"))
	requireDecrypts(t, c, records[1], "creditor_name", "ACME Corp")

	// Nothing is left to migrate.
	n, err = NewMigrationWalker(s, c, nil).Run(ctx, MigrationOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

// TestWalkers_StoreErrorsReachJobLog checks that failures inside the store
// are logged through the walker's run logger.
func TestWalkers_StoreErrorsReachJobLog(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	s, err := store.NewRecordStore(store.NewDBFromSQL(conn, config.DriverPostgres, nil), models.Transactions)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	var buf bytes.Buffer
	log := logger.New(&buf, "test")

	_, err = NewMigrationWalker(s, testCrypter(t), log).Run(context.Background(), MigrationOptions{})
	require.ErrorIs(t, err, store.ErrExecutingQuery)
	assert.Contains(t, buf.String(), "failed to select records")
	assert.Contains(t, buf.String(), "connection reset by peer")
	assert.Contains(t, buf.String(), `"job":"migrate-plaintext"`)

	buf.Reset()
	_, err = NewRotationWalker(s, testCrypter(t), log).Run(context.Background(), RotationOptions{From: 1, To: 2})
	require.ErrorIs(t, err, store.ErrBeginningTransaction)
	assert.Contains(t, buf.String(), "failed to begin transaction")
	assert.Contains(t, buf.String(), `"job":"rotate-keys"`)
	assert.Contains(t, buf.String(), `"classification":"non_retryable"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

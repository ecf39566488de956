package store

//go:generate mockgen -source=interfaces.go -destination=../mock/record_store_mock.go -package=mock

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/ai8future/fieldcrypt/models"
)

// RecordStore gives the walkers transactional access to one collection.
// Callers must ensure a single writer per collection.
type RecordStore interface {
	// Collection returns the descriptor the store was built for.
	Collection() models.Collection
	// Begin starts a batch transaction.
	Begin(ctx context.Context) (RecordBatch, error)
	// CountByVersion returns the number of records per version tag; records
	// with no tag are counted under 0.
	CountByVersion(ctx context.Context) (map[int]int64, error)
	// FindIDs returns the ids of records matching cond, ordered ascending.
	FindIDs(ctx context.Context, cond sq.Sqlizer) ([]int64, error)
}

// RecordBatch is one open transaction. Exactly one of Commit or Rollback
// must be called.
type RecordBatch interface {
	// SelectPendingPlaintext returns up to limit records with id > afterID in
	// which some legacy plaintext column is set while its encrypted column is
	// NULL, ordered by id.
	SelectPendingPlaintext(ctx context.Context, afterID int64, limit int) ([]models.Record, error)
	// SelectByVersion returns up to limit records tagged with version and
	// id > afterID, ordered by id.
	SelectByVersion(ctx context.Context, version int, afterID int64, limit int) ([]models.Record, error)
	// Update writes one record's changes.
	Update(ctx context.Context, update models.RecordUpdate) error
	Commit() error
	Rollback() error
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ai8future/fieldcrypt/internal/logger"
	"github.com/ai8future/fieldcrypt/models"
)

type recordStore struct {
	*DB
	collection models.Collection
}

// NewRecordStore returns a RecordStore for collection c.
func NewRecordStore(db *DB, c models.Collection) (RecordStore, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &recordStore{DB: db, collection: c}, nil
}

func (s *recordStore) Collection() models.Collection {
	return s.collection
}

// contextLogger prefers the job logger attached to ctx and falls back to the
// connection's logger.
func (s *recordStore) contextLogger(ctx context.Context) *logger.Logger {
	return logger.FromContextOr(ctx, s.DB.logger)
}

func (s *recordStore) Begin(ctx context.Context) (RecordBatch, error) {
	log := s.contextLogger(ctx)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "recordStore.Begin").
			Str("collection", s.collection.Name).
			Str("classification", s.Classify(err).String()).
			Msg("failed to begin transaction")
		return nil, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	return &recordBatch{tx: tx, store: s, log: log}, nil
}

func (s *recordStore) CountByVersion(ctx context.Context) (map[int]int64, error) {
	log := s.contextLogger(ctx)

	query, args, err := buildCountByVersionQuery(s.Builder(), s.collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "recordStore.CountByVersion").Msg("failed to count records by version")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	counts := make(map[int]int64)
	for rows.Next() {
		var (
			version sql.NullInt64
			count   int64
		)
		if err := rows.Scan(&version, &count); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		counts[int(version.Int64)] += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return counts, nil
}

func (s *recordStore) FindIDs(ctx context.Context, cond sq.Sqlizer) ([]int64, error) {
	log := s.contextLogger(ctx)

	query, args, err := s.Builder().
		Select(s.collection.IDColumn).
		From(s.collection.Table).
		Where(cond).
		OrderBy(s.collection.IDColumn).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "recordStore.FindIDs").Msg("failed to search records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return ids, nil
}

type recordBatch struct {
	tx    *sql.Tx
	store *recordStore
	// log is the logger resolved when the batch began.
	log *logger.Logger
}

func (b *recordBatch) SelectPendingPlaintext(ctx context.Context, afterID int64, limit int) ([]models.Record, error) {
	c := b.store.collection
	if len(c.LegacyFields()) == 0 {
		return nil, nil
	}

	query, args, err := buildSelectPendingQuery(b.store.Builder(), c, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return b.query(ctx, "recordBatch.SelectPendingPlaintext", query, args, true)
}

func (b *recordBatch) SelectByVersion(ctx context.Context, version int, afterID int64, limit int) ([]models.Record, error) {
	query, args, err := buildSelectByVersionQuery(b.store.Builder(), b.store.collection, version, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return b.query(ctx, "recordBatch.SelectByVersion", query, args, false)
}

func (b *recordBatch) query(ctx context.Context, fn, query string, args []any, withPlain bool) ([]models.Record, error) {
	log := b.store.contextLogger(ctx)

	rows, err := b.tx.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", fn).
			Str("collection", b.store.collection.Name).
			Str("classification", b.store.Classify(err).String()).
			Msg("failed to select records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		record, err := scanRecord(rows, b.store.collection, withPlain)
		if err != nil {
			log.Err(err).Str("func", fn).Msg("failed to scan record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", fn).Msg("failed iterating record rows")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return records, nil
}

func (b *recordBatch) Update(ctx context.Context, update models.RecordUpdate) error {
	log := b.store.contextLogger(ctx)

	query, args, err := buildUpdateQuery(b.store.Builder(), b.store.collection, update)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := b.tx.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordBatch.Update").
			Int64("id", update.ID).
			Str("classification", b.store.Classify(err).String()).
			Msg("failed to update record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		log.Warn().Str("func", "recordBatch.Update").Int64("id", update.ID).Msg("record not found")
		return fmt.Errorf("%w: id %d", ErrRecordNotFound, update.ID)
	}
	return nil
}

func (b *recordBatch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		b.log.Err(err).
			Str("func", "recordBatch.Commit").
			Str("collection", b.store.collection.Name).
			Str("classification", b.store.Classify(err).String()).
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}
	return nil
}

func (b *recordBatch) Rollback() error {
	if err := b.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%w: %w", ErrRollingBackTransaction, err)
	}
	return nil
}

package walker

import (
	"context"
	"fmt"
	"time"

	"github.com/ai8future/fieldcrypt"
	"github.com/ai8future/fieldcrypt/internal/logger"
	"github.com/ai8future/fieldcrypt/internal/store"
	"github.com/ai8future/fieldcrypt/models"
)

// RotationOptions tunes a RotationWalker run.
type RotationOptions struct {
	// From is the version records are moved away from. Required.
	From int
	// To is the version records are moved to. Required.
	To int
	// BatchSize is the number of records per transaction. Default 500.
	BatchSize int
	// MaxBatches stops the run after that many non-empty batches.
	// 0 means unlimited.
	MaxBatches int
	// Journal, when set, receives the pre-image of every rotated record
	// before its batch commits. A batch that fails before its commit adds
	// nothing; one whose commit fails leaves entries that match the rows'
	// current state.
	Journal *Journal
	// OnBatch, when set, is called after every committed batch.
	OnBatch func(BatchReport)
}

func (o RotationOptions) validate() error {
	if o.From < 1 {
		return fmt.Errorf("%w: from-version %d", ErrInvalidVersion, o.From)
	}
	if o.To < 1 {
		return fmt.Errorf("%w: to-version %d", ErrInvalidVersion, o.To)
	}
	if o.From == o.To {
		return fmt.Errorf("%w: %d", ErrSameVersion, o.From)
	}
	if o.MaxBatches < 0 {
		return fmt.Errorf("%w: max-batches %d", ErrInvalidBatchSize, o.MaxBatches)
	}
	return nil
}

// RotationWalker re-encrypts records from one key version to another.
type RotationWalker struct {
	store   store.RecordStore
	crypter *fieldcrypt.Crypter
	log     *logger.Logger
	now     func() time.Time
}

// NewRotationWalker returns a walker that rotates the records of s. A nil log
// discards output.
func NewRotationWalker(s store.RecordStore, crypter *fieldcrypt.Crypter, log *logger.Logger) *RotationWalker {
	if log == nil {
		log = logger.Nop()
	}
	return &RotationWalker{store: s, crypter: crypter, log: log, now: time.Now}
}

// Run moves every record tagged From to To and returns how many were moved.
//
// Every encrypted field of a record is decrypted under From and re-encrypted
// (and re-indexed) under To, and the tag is advanced in the same update. A
// record with any field that fails authentication under From is left at
// From and logged; the rest of the batch proceeds. Both keys are loaded
// before the first batch.
func (w *RotationWalker) Run(ctx context.Context, opts RotationOptions) (int, error) {
	if err := opts.validate(); err != nil {
		return 0, err
	}
	size, err := resolveBatchSize(opts.BatchSize)
	if err != nil {
		return 0, err
	}

	runID := newRunID()
	c := w.store.Collection()
	log := w.log.WithRun("rotate-keys", runID)

	keys := w.crypter.Keys()
	for _, version := range []int{opts.From, opts.To} {
		if _, err := keys.Load(version); err != nil {
			log.Err(err).Str("func", "RotationWalker.Run").Int("version", version).Msg("rotation key is not loadable")
			return 0, err
		}
		if keys.Generated(version) {
			log.Error().Str("func", "RotationWalker.Run").Int("version", version).Msg("rotation key was generated for this process only")
			return 0, fmt.Errorf("%w: version %d", ErrEphemeralKey, version)
		}
	}
	ctx = log.WithContext(ctx)

	log.Info().
		Str("func", "RotationWalker.Run").
		Str("collection", c.Name).
		Int("from_version", opts.From).
		Int("to_version", opts.To).
		Int("batch_size", size).
		Int("max_batches", opts.MaxBatches).
		Bool("journal", opts.Journal != nil).
		Msg("starting key rotation")

	var (
		total   int
		afterID int64
	)
	for batchNo := 1; opts.MaxBatches == 0 || batchNo <= opts.MaxBatches; batchNo++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		report, err := w.runBatch(ctx, log, runID, afterID, size, opts)
		if err != nil {
			log.Err(err).
				Str("func", "RotationWalker.Run").
				Int("batch", batchNo).
				Int("total", total).
				Msg("batch failed, stopping rotation")
			return total, err
		}
		if report.Selected == 0 {
			break
		}

		total += report.Processed
		afterID = report.LastID
		report.RunID = runID
		report.Batch = batchNo
		report.Total = total

		log.Info().
			Str("func", "RotationWalker.Run").
			Int("batch", batchNo).
			Int("selected", report.Selected).
			Int("rotated", report.Processed).
			Int("skipped", report.Skipped).
			Int("total", total).
			Int64("last_id", afterID).
			Msg("batch committed")
		if opts.OnBatch != nil {
			opts.OnBatch(report)
		}
	}

	log.Info().Str("func", "RotationWalker.Run").Int("total", total).Msg("key rotation finished")
	return total, nil
}

func (w *RotationWalker) runBatch(ctx context.Context, log *logger.Logger, runID string, afterID int64, size int, opts RotationOptions) (BatchReport, error) {
	batch, err := w.store.Begin(ctx)
	if err != nil {
		return BatchReport{}, err
	}
	defer batch.Rollback()

	records, err := batch.SelectByVersion(ctx, opts.From, afterID, size)
	if err != nil {
		return BatchReport{}, err
	}

	report := BatchReport{Selected: len(records), LastID: afterID}
	var preImages []JournalEntry
	for _, record := range records {
		report.LastID = record.ID

		update, err := w.reseal(record, opts.From, opts.To)
		if err != nil {
			report.Skipped++
			log.Error().
				Err(err).
				Str("func", "RotationWalker.runBatch").
				Int64("id", record.ID).
				Int("version", opts.From).
				Msg("record failed authentication, keeping it at its current version")
			continue
		}

		if err := batch.Update(ctx, update); err != nil {
			return BatchReport{}, err
		}
		if opts.Journal != nil {
			preImages = append(preImages, w.preImage(runID, record, opts))
		}
		report.Processed++
	}

	// Pre-images are journaled only once every update of the batch went
	// through, and reach disk before the commit.
	if len(preImages) > 0 {
		for _, entry := range preImages {
			if err := opts.Journal.Record(entry); err != nil {
				return BatchReport{}, err
			}
		}
		if err := opts.Journal.Flush(); err != nil {
			return BatchReport{}, err
		}
	}
	return report, batch.Commit()
}

// reseal rotates every encrypted field of r. Absent fields stay NULL.
func (w *RotationWalker) reseal(r models.Record, from, to int) (models.RecordUpdate, error) {
	update := models.NewRecordUpdate(r.ID, to)
	for _, f := range w.store.Collection().Fields {
		blob, ok := r.Encrypted[f.Name]
		if !ok || blob == nil {
			continue
		}

		sealed, err := w.crypter.Reseal(blob, f.Name, from, to, f.Indexed())
		if err != nil {
			return models.RecordUpdate{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		update.Encrypted[f.Name] = sealed.Ciphertext
		if f.Indexed() {
			update.Index[f.Name] = sealed.BlindIndex
		}
	}
	return update, nil
}

func (w *RotationWalker) preImage(runID string, r models.Record, opts RotationOptions) JournalEntry {
	return JournalEntry{
		RunID:       runID,
		Collection:  w.store.Collection().Name,
		ID:          r.ID,
		FromVersion: opts.From,
		ToVersion:   opts.To,
		Encrypted:   r.Encrypted,
		Index:       r.Index,
		At:          w.now().UTC(),
	}
}

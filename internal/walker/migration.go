package walker

import (
	"context"
	"fmt"

	"github.com/ai8future/fieldcrypt"
	"github.com/ai8future/fieldcrypt/internal/logger"
	"github.com/ai8future/fieldcrypt/internal/store"
	"github.com/ai8future/fieldcrypt/models"
)

// MigrationOptions tunes a MigrationWalker run.
type MigrationOptions struct {
	// BatchSize is the number of records per transaction. Default 500.
	BatchSize int
	// NullAfter sets each migrated plaintext column to NULL.
	NullAfter bool
	// DryRun performs every conversion and update, then rolls the batch back.
	DryRun bool
	// OnBatch, when set, is called after every batch.
	OnBatch func(BatchReport)
}

// MigrationWalker encrypts legacy plaintext columns in place.
type MigrationWalker struct {
	store   store.RecordStore
	crypter *fieldcrypt.Crypter
	log     *logger.Logger
}

// NewMigrationWalker returns a walker that migrates the records of s. A nil
// log discards output.
func NewMigrationWalker(s store.RecordStore, crypter *fieldcrypt.Crypter, log *logger.Logger) *MigrationWalker {
	if log == nil {
		log = logger.Nop()
	}
	return &MigrationWalker{store: s, crypter: crypter, log: log}
}

// Run migrates every pending record and returns how many were migrated.
//
// A record is pending while some legacy plaintext column is set and its
// encrypted column is NULL, so a second run after a complete one returns 0.
// Records without a version tag are encrypted under the active version and
// tagged with it; tagged records keep their version.
func (w *MigrationWalker) Run(ctx context.Context, opts MigrationOptions) (int, error) {
	size, err := resolveBatchSize(opts.BatchSize)
	if err != nil {
		return 0, err
	}

	runID := newRunID()
	c := w.store.Collection()
	log := w.log.WithRun("migrate-plaintext", runID)

	keys := w.crypter.Keys()
	active := w.crypter.ActiveVersion()
	if _, err := keys.Load(active); err != nil {
		log.Err(err).Str("func", "MigrationWalker.Run").Int("version", active).Msg("active key is not loadable")
		return 0, err
	}
	if opts.NullAfter && keys.Insecure() {
		log.Error().Str("func", "MigrationWalker.Run").Msg("null-after is not allowed with an insecure key store")
		return 0, fmt.Errorf("%w: null-after with insecure dev keys", ErrEphemeralKey)
	}
	if !opts.DryRun && keys.Generated(active) {
		log.Error().Str("func", "MigrationWalker.Run").Int("version", active).Msg("active key was generated for this process only")
		return 0, fmt.Errorf("%w: version %d", ErrEphemeralKey, active)
	}
	ctx = log.WithContext(ctx)

	log.Info().
		Str("func", "MigrationWalker.Run").
		Str("collection", c.Name).
		Int("batch_size", size).
		Bool("null_after", opts.NullAfter).
		Bool("dry_run", opts.DryRun).
		Int("active_version", active).
		Msg("starting plaintext migration")

	var (
		total   int
		afterID int64
	)
	for batchNo := 1; ; batchNo++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		report, err := w.runBatch(ctx, log, afterID, size, opts)
		if err != nil {
			log.Err(err).
				Str("func", "MigrationWalker.Run").
				Int("batch", batchNo).
				Int("total", total).
				Msg("batch failed, stopping migration")
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
			Str("func", "MigrationWalker.Run").
			Int("batch", batchNo).
			Int("selected", report.Selected).
			Int("migrated", report.Processed).
			Int("skipped", report.Skipped).
			Int("total", total).
			Int64("last_id", afterID).
			Msg("batch done")
		if opts.OnBatch != nil {
			opts.OnBatch(report)
		}
	}

	log.Info().Str("func", "MigrationWalker.Run").Int("total", total).Msg("plaintext migration finished")
	return total, nil
}

func (w *MigrationWalker) runBatch(ctx context.Context, log *logger.Logger, afterID int64, size int, opts MigrationOptions) (BatchReport, error) {
	batch, err := w.store.Begin(ctx)
	if err != nil {
		return BatchReport{}, err
	}
	defer batch.Rollback()

	records, err := batch.SelectPendingPlaintext(ctx, afterID, size)
	if err != nil {
		return BatchReport{}, err
	}

	report := BatchReport{Selected: len(records), LastID: afterID, DryRun: opts.DryRun}
	for _, record := range records {
		report.LastID = record.ID

		update, err := w.convert(record, opts.NullAfter)
		if err != nil {
			report.Skipped++
			log.Warn().
				Err(err).
				Str("func", "MigrationWalker.runBatch").
				Int64("id", record.ID).
				Msg("skipping record that could not be converted")
			continue
		}
		if update.Empty() {
			continue
		}

		if err := batch.Update(ctx, update); err != nil {
			return BatchReport{}, err
		}
		report.Processed++
	}

	if opts.DryRun {
		return report, batch.Rollback()
	}
	return report, batch.Commit()
}

// convert encrypts every field of r whose plaintext is set and whose
// ciphertext is missing.
func (w *MigrationWalker) convert(r models.Record, nullAfter bool) (models.RecordUpdate, error) {
	version := r.Version
	if version == 0 {
		version = w.crypter.ActiveVersion()
	}

	update := models.NewRecordUpdate(r.ID, version)
	for _, f := range w.store.Collection().LegacyFields() {
		if !r.HasPlain(f.Name) || r.HasEncrypted(f.Name) {
			continue
		}
		plain := *r.Plain[f.Name]

		blob, index, err := w.seal(f, plain, version)
		if err != nil {
			return models.RecordUpdate{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		if blob != nil {
			update.Encrypted[f.Name] = blob
			if f.Indexed() {
				update.Index[f.Name] = index
			}
		}
		if nullAfter {
			update.NullPlain = append(update.NullPlain, f.Name)
		}
	}
	return update, nil
}

func (w *MigrationWalker) seal(f models.Field, plain string, version int) ([]byte, string, error) {
	switch {
	case f.Kind == models.FieldAmount:
		amount, err := fieldcrypt.ParseAmount(plain)
		if err != nil {
			return nil, "", err
		}
		blob, err := w.crypter.EncryptAmount(amount, f.Name, version)
		return blob, "", err
	case f.Indexed():
		sealed, err := w.crypter.EncryptAndIndex(plain, f.Name, version)
		if err != nil {
			return nil, "", err
		}
		return sealed.Ciphertext, sealed.BlindIndex, nil
	default:
		blob, err := w.crypter.Encrypt(plain, f.Name, version)
		return blob, "", err
	}
}

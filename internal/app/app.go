// Package app wires configuration, keys, the database and the selected
// record collection into the dependencies a job binary needs.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ai8future/fieldcrypt"
	"github.com/ai8future/fieldcrypt/internal/config"
	"github.com/ai8future/fieldcrypt/internal/logger"
	"github.com/ai8future/fieldcrypt/internal/store"
	"github.com/ai8future/fieldcrypt/models"
)

// Job holds everything a walker run needs. Close releases it.
type Job struct {
	Config  *config.StructuredConfig
	Log     *logger.Logger
	Keys    *fieldcrypt.KeyStore
	Crypter *fieldcrypt.Crypter
	DB      *store.DB
	Records store.RecordStore
}

// NewKeyStore builds the key store described by cfg over src. With
// InsecureDevKeys set, empty slots get ephemeral generated keys and every
// generation is logged as a warning.
func NewKeyStore(cfg config.Keys, src fieldcrypt.KeySource, log *logger.Logger) (*fieldcrypt.KeyStore, error) {
	opts := keyOptions(cfg)
	if cfg.InsecureDevKeys {
		return fieldcrypt.NewInsecureDevKeyStore(src, log.Logger, opts...)
	}
	return fieldcrypt.NewKeyStore(src, opts...)
}

func keyOptions(cfg config.Keys) []fieldcrypt.Option {
	opts := []fieldcrypt.Option{fieldcrypt.WithActiveVersion(cfg.ActiveVersion)}
	if cfg.Prefix != "" {
		opts = append(opts, fieldcrypt.WithKeyPrefix(cfg.Prefix))
	}
	return opts
}

// Bootstrap resolves the active master key, connects to the database and
// binds the configured collection. Keys are read from the process
// environment.
func Bootstrap(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*Job, error) {
	return bootstrap(ctx, cfg, fieldcrypt.EnvSource{}, log)
}

func bootstrap(ctx context.Context, cfg *config.StructuredConfig, src fieldcrypt.KeySource, log *logger.Logger) (*Job, error) {
	if log == nil {
		log = logger.Nop()
	}

	collection, err := models.Lookup(cfg.Jobs.Collection)
	if err != nil {
		log.Err(err).Str("func", "app.Bootstrap").Str("collection", cfg.Jobs.Collection).Msg("unknown collection")
		return nil, err
	}

	keys, err := NewKeyStore(cfg.Keys, src, log)
	if err != nil {
		log.Err(err).Str("func", "app.Bootstrap").Int("active_version", cfg.Keys.ActiveVersion).Msg("error loading master keys")
		return nil, fmt.Errorf("loading master keys: %w", err)
	}

	crypter, err := fieldcrypt.New(keys)
	if err != nil {
		keys.Close()
		return nil, err
	}

	db, err := store.NewConnect(ctx, cfg.Storage.DB, log)
	if err != nil {
		keys.Close()
		return nil, err
	}

	records, err := store.NewRecordStore(db, collection)
	if err != nil {
		keys.Close()
		db.Close()
		return nil, err
	}

	log.Info().
		Str("func", "app.Bootstrap").
		Str("collection", collection.Name).
		Str("driver", db.Driver()).
		Int("active_version", crypter.ActiveVersion()).
		Ints("key_versions", keys.Versions()).
		Bool("insecure_keys", keys.Insecure()).
		Msg("job dependencies ready")

	return &Job{
		Config:  cfg,
		Log:     log,
		Keys:    keys,
		Crypter: crypter,
		DB:      db,
		Records: records,
	}, nil
}

// Close zeroes cached key material and closes the database.
func (j *Job) Close() error {
	j.Keys.Close()
	return j.DB.Close()
}

// BuildInfo is stamped into the job binaries with -ldflags.
type BuildInfo struct {
	Version string
	Date    string
	Commit  string
}

// Print writes the build info, substituting N/A for unset values.
func (b BuildInfo) Print(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", orNA(b.Version))
	fmt.Fprintf(w, "Build date: %s\n", orNA(b.Date))
	fmt.Fprintf(w, "Build commit: %s\n", orNA(b.Commit))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// ExitCode maps a job error to a process exit status: 0 on success, 2 for
// configuration and key errors found before any record was touched, 1
// otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, config.ErrInvalidStorageConfigs),
		errors.Is(err, config.ErrInvalidKeyConfigs),
		errors.Is(err, config.ErrInvalidJobConfigs),
		errors.Is(err, models.ErrUnknownCollection),
		errors.Is(err, fieldcrypt.ErrMissingKey),
		errors.Is(err, fieldcrypt.ErrInvalidEncoding),
		errors.Is(err, fieldcrypt.ErrKeyTooShort):
		return 2
	default:
		return 1
	}
}

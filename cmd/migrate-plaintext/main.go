// Command migrate-plaintext encrypts the legacy plaintext columns of a record
// collection in place, one batch transaction at a time.
//
//	migrate-plaintext -batch-size 500 -null-after -dry-run -collection transactions
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ai8future/fieldcrypt/internal/app"
	"github.com/ai8future/fieldcrypt/internal/config"
	"github.com/ai8future/fieldcrypt/internal/logger"
	"github.com/ai8future/fieldcrypt/internal/walker"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	app.BuildInfo{Version: buildVersion, Date: buildDate, Commit: buildCommit}.Print(os.Stdout)

	fs := flag.NewFlagSet("migrate-plaintext", flag.ExitOnError)
	flags := config.BindFlags(fs)
	nullAfter := fs.Bool("null-after", false, "Set each migrated plaintext column to NULL")
	dryRun := fs.Bool("dry-run", false, "Convert every batch, then roll it back")
	fs.Parse(os.Args[1:])

	log := logger.NewLogger("migrate-plaintext")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, flags, walker.MigrationOptions{NullAfter: *nullAfter, DryRun: *dryRun}); err != nil {
		log.Error().Err(err).Msg("migration failed")
		stop()
		os.Exit(app.ExitCode(err))
	}
}

func run(ctx context.Context, log *logger.Logger, flags *config.Flags, opts walker.MigrationOptions) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: log level: %w", config.ErrInvalidJobConfigs, err)
	}

	job, err := app.Bootstrap(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer job.Close()

	opts.BatchSize = cfg.Jobs.BatchSize
	opts.OnBatch = func(r walker.BatchReport) {
		fmt.Printf("batch %d: migrated %d of %d records (skipped %d, last id %d, dry-run %t)\n",
			r.Batch, r.Processed, r.Selected, r.Skipped, r.LastID, r.DryRun)
	}

	total, err := walker.NewMigrationWalker(job.Records, job.Crypter, log).Run(ctx, opts)
	fmt.Printf("Migrated %d %s records\n", total, job.Records.Collection().Name)
	return err
}

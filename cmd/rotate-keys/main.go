// Command rotate-keys re-encrypts every record of a collection from one
// master key version to another, one batch transaction at a time.
//
//	rotate-keys -from-version 1 -to-version 2 -batch-size 500 -max-batches 0 \
//	    -collection transactions -journal rotation.journal.zst
package main

import (
	"context"
	"errors"
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

	fs := flag.NewFlagSet("rotate-keys", flag.ExitOnError)
	flags := config.BindFlags(fs)
	from := fs.Int("from-version", 0, "Key version records are rotated away from (required)")
	to := fs.Int("to-version", 0, "Key version records are rotated to (required)")
	maxBatches := fs.Int("max-batches", 0, "Stop after this many batches (0 = unlimited)")
	journalPath := fs.String("journal", "", "Append the pre-image of every rotated record to this zstd journal")
	fs.Parse(os.Args[1:])

	log := logger.NewLogger("rotate-keys")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := walker.RotationOptions{From: *from, To: *to, MaxBatches: *maxBatches}
	if err := run(ctx, log, flags, opts, *journalPath); err != nil {
		log.Error().Err(err).Msg("rotation failed")
		stop()
		os.Exit(app.ExitCode(err))
	}
}

func run(ctx context.Context, log *logger.Logger, flags *config.Flags, opts walker.RotationOptions, journalPath string) (err error) {
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

	if journalPath != "" {
		journal, err := walker.OpenJournal(journalPath)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, journal.Close()) }()
		opts.Journal = journal
	}

	opts.BatchSize = cfg.Jobs.BatchSize
	opts.OnBatch = func(r walker.BatchReport) {
		fmt.Printf("batch %d: rotated %d of %d records (skipped %d, total %d, last id %d)\n",
			r.Batch, r.Processed, r.Selected, r.Skipped, r.Total, r.LastID)
	}

	total, err := walker.NewRotationWalker(job.Records, job.Crypter, log).Run(ctx, opts)
	fmt.Printf("Rotated %d %s records from v%d to v%d\n", total, job.Records.Collection().Name, opts.From, opts.To)
	return err
}

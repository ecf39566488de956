// Command schema applies or reports the goose schema migrations. Schema
// changes never run implicitly at job start.
//
//	schema -dir up
//	schema -dir status
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
	"github.com/ai8future/fieldcrypt/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	app.BuildInfo{Version: buildVersion, Date: buildDate, Commit: buildCommit}.Print(os.Stdout)

	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	flags := config.BindFlags(fs)
	dir := fs.String("dir", "status", "Migration direction: up or status")
	fs.Parse(os.Args[1:])

	log := logger.NewLogger("schema")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, flags, *dir); err != nil {
		log.Error().Err(err).Str("dir", *dir).Msg("schema command failed")
		stop()
		os.Exit(app.ExitCode(err))
	}
}

func run(ctx context.Context, log *logger.Logger, flags *config.Flags, dir string) error {
	if dir != "up" && dir != "status" {
		return fmt.Errorf("%w: unknown -dir %q (want up or status)", config.ErrInvalidJobConfigs, dir)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: log level: %w", config.ErrInvalidJobConfigs, err)
	}

	db, err := store.NewConnect(ctx, cfg.Storage.DB, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if dir == "up" {
		applied, err := db.Migrate(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Applied %d migrations %v\n", len(applied), applied)
		return nil
	}

	statuses, err := db.MigrationStatus(ctx)
	if err != nil {
		return err
	}
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Printf("%05d %-8s %s\n", s.Version, state, s.Path)
	}
	return nil
}

// Command migrate applies the embedded schema migrations.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mis/api/internal/config"
	"mis/api/internal/db/migrations"
	"mis/api/internal/db/postgres"
)

func main() {
	os.Exit(run())
}

func run() int {
	status := flag.Bool("status", false, "print migration state instead of applying")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("FATAL: invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.OpenSQLX(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("FATAL: DB failed", "error", err)
		return 1
	}
	defer db.Close()

	if *status {
		err = migrations.Status(ctx, db.DB, logger)
	} else {
		err = migrations.Up(ctx, db.DB, logger)
	}
	if err != nil {
		logger.Error("Migration failed", "error", err)
		return 1
	}
	return 0
}

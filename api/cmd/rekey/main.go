// Command rekey migrates stored phone blobs to the sealed v2 format.
//
//	rekey -dry-run        count what would change
//	rekey -batch 1000     upgrade in batches of 1000 rows
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"mis/api/internal/config"
	"mis/api/internal/core/services"
	"mis/api/internal/db/postgres"
	"mis/api/internal/infrastructure/crypto"
)

func main() {
	os.Exit(run())
}

func run() int {
	dryRun := flag.Bool("dry-run", false, "report what would be upgraded without writing")
	batch := flag.Int("batch", 500, "rows fetched per round trip")
	flag.Parse()

	runID := uuid.NewString()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("run_id", runID)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("FATAL: invalid configuration", "error", err)
		return 1
	}

	// Upgrade always writes the sealed format, whatever FIELD_CIPHER_FORMAT says.
	fieldCipher, err := crypto.NewFromBase64(cfg.EncryptionKey)
	if err != nil {
		logger.Error("FATAL: field cipher key rejected", "error", err)
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

	svc := services.NewRekeyService(postgres.NewPhoneBlobRepo(db), fieldCipher, logger, *batch)

	started := time.Now()
	logger.Info("🔑 Rekey pass starting", "dry_run", *dryRun, "batch", *batch)

	report, err := svc.Run(ctx, *dryRun)
	attrs := []any{
		"dry_run", *dryRun,
		"scanned", report.Scanned,
		"upgraded", report.Upgraded,
		"already_sealed", report.AlreadySealed,
		"failed", report.Failed,
		"conflicts", report.Conflicts,
		"elapsed", time.Since(started).String(),
	}
	if err != nil {
		logger.Error("Rekey pass aborted", append(attrs, "error", err)...)
		return 1
	}
	logger.Info("✅ Rekey pass complete", attrs...)

	if report.Failed > 0 {
		return 2
	}
	return 0
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"mis/api/internal/core/domain"
)

const defaultRekeyBatchSize = 500

// FieldUpgrader rewrites a legacy blob in the authenticated format.
type FieldUpgrader interface {
	Upgrade(blob string) (upgraded string, changed bool, err error)
}

// RekeyReport counts what a single pass over the households table did.
type RekeyReport struct {
	Scanned       int `json:"scanned"`
	Upgraded      int `json:"upgraded"`
	AlreadySealed int `json:"already_sealed"`
	Failed        int `json:"failed"`
	Conflicts     int `json:"conflicts"`
}

// RekeyService migrates stored phone blobs to the sealed format in id order.
type RekeyService struct {
	store     domain.PhoneBlobStore
	upgrader  FieldUpgrader
	logger    *slog.Logger
	batchSize int
}

func NewRekeyService(store domain.PhoneBlobStore, upgrader FieldUpgrader, logger *slog.Logger, batchSize int) *RekeyService {
	if batchSize <= 0 {
		batchSize = defaultRekeyBatchSize
	}
	return &RekeyService{
		store:     store,
		upgrader:  upgrader,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Run walks every household once. Rows that cannot be revealed are counted and
// skipped; storage errors abort the pass. With dryRun nothing is written.
func (s *RekeyService) Run(ctx context.Context, dryRun bool) (RekeyReport, error) {
	var report RekeyReport
	afterID := 0

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		batch, err := s.store.ListAfter(ctx, afterID, s.batchSize)
		if err != nil {
			return report, fmt.Errorf("failed to list phone blobs after %d: %w", afterID, err)
		}

		for _, row := range batch {
			afterID = row.HouseholdID
			report.Scanned++

			upgraded, changed, err := s.upgrader.Upgrade(row.EncryptedPhone)
			if err != nil {
				report.Failed++
				s.logger.Warn("Skipping unrecoverable phone",
					slog.Int("household_id", row.HouseholdID),
					slog.String("error", err.Error()),
				)
				continue
			}
			if !changed {
				report.AlreadySealed++
				continue
			}
			if dryRun {
				report.Upgraded++
				continue
			}

			ok, err := s.store.Replace(ctx, row.HouseholdID, row.EncryptedPhone, upgraded)
			if err != nil {
				return report, fmt.Errorf("failed to replace phone for household %d: %w", row.HouseholdID, err)
			}
			if !ok {
				// A concurrent write replaced the blob; it is already in the configured format.
				report.Conflicts++
				continue
			}
			report.Upgraded++
		}

		if len(batch) < s.batchSize {
			return report, nil
		}
	}
}

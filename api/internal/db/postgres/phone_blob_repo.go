package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mis/api/internal/core/domain"
)

// PhoneBlobRepo implements domain.PhoneBlobStore for the re-encryption job.
type PhoneBlobRepo struct {
	db *sqlx.DB
}

func NewPhoneBlobRepo(db *sqlx.DB) *PhoneBlobRepo {
	return &PhoneBlobRepo{db: db}
}

// ListAfter uses keyset pagination so a long pass never rescans finished rows.
func (r *PhoneBlobRepo) ListAfter(ctx context.Context, afterID, limit int) ([]domain.PhoneBlob, error) {
	var blobs []domain.PhoneBlob
	const query = `SELECT id, encrypted_phone FROM households WHERE id > $1 ORDER BY id LIMIT $2`

	if err := r.db.SelectContext(ctx, &blobs, query, afterID, limit); err != nil {
		return nil, fmt.Errorf("failed to select phone blobs: %w", err)
	}
	return blobs, nil
}

// Replace is a compare-and-swap on the stored blob so a concurrent write wins.
func (r *PhoneBlobRepo) Replace(ctx context.Context, householdID int, old, updated string) (bool, error) {
	const query = `UPDATE households SET encrypted_phone = $1 WHERE id = $2 AND encrypted_phone = $3`

	res, err := r.db.ExecContext(ctx, query, updated, householdID, old)
	if err != nil {
		return false, fmt.Errorf("failed to update phone blob: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"mis/api/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memHouseholdRepo is an in-memory domain.HouseholdRepository and domain.PhoneBlobStore.
type memHouseholdRepo struct {
	mu        sync.Mutex
	rows      map[int]domain.Household
	nextID    int
	createErr error
	listErr   error
	replaces  int
}

func newMemHouseholdRepo() *memHouseholdRepo {
	return &memHouseholdRepo{rows: make(map[int]domain.Household)}
}

func (r *memHouseholdRepo) Create(_ context.Context, h *domain.Household) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}

	r.nextID++
	h.ID = r.nextID
	h.Program = domain.ProgramRef{ID: h.ProgramID, Name: "Inua Jamii"}
	h.Location = domain.LocationPath{
		Sublocation: "Gatina",
		Location:    "Kawangware",
		Subcounty:   "Dagoretti North",
		County:      "Nairobi",
	}
	r.rows[h.ID] = *h
	return nil
}

func (r *memHouseholdRepo) GetByID(_ context.Context, id int) (*domain.Household, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &h, nil
}

func (r *memHouseholdRepo) List(_ context.Context) ([]domain.Household, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}

	out := make([]domain.Household, 0, len(r.rows))
	for _, id := range r.sortedIDs() {
		out = append(out, r.rows[id])
	}
	return out, nil
}

func (r *memHouseholdRepo) ListAfter(_ context.Context, afterID, limit int) ([]domain.PhoneBlob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}

	var out []domain.PhoneBlob
	for _, id := range r.sortedIDs() {
		if id <= afterID {
			continue
		}
		out = append(out, domain.PhoneBlob{HouseholdID: id, EncryptedPhone: r.rows[id].EncryptedPhone})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memHouseholdRepo) Replace(_ context.Context, id int, old, updated string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.rows[id]
	if !ok || h.EncryptedPhone != old {
		return false, nil
	}
	h.EncryptedPhone = updated
	r.rows[id] = h
	r.replaces++
	return true, nil
}

// put stores a row with a raw blob, bypassing the service.
func (r *memHouseholdRepo) put(blob string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.rows[r.nextID] = domain.Household{ID: r.nextID, EncryptedPhone: blob}
	return r.nextID
}

func (r *memHouseholdRepo) blob(id int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id].EncryptedPhone
}

func (r *memHouseholdRepo) sortedIDs() []int {
	ids := make([]int, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

type brokenCipher struct{}

func (brokenCipher) Protect(string) (string, error) {
	return "", errors.New("crypto: encryption failure: iv generation: entropy pool unavailable")
}

func (brokenCipher) Reveal(string) (string, error) {
	return "", errors.New("crypto: decryption failure: invalid padding")
}

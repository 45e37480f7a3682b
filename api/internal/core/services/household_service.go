package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mis/api/internal/core/domain"
)

type HouseholdService struct {
	repo   domain.HouseholdRepository
	cipher domain.FieldCipher
	logger *slog.Logger
}

func NewHouseholdService(
	repo domain.HouseholdRepository,
	cipher domain.FieldCipher,
	logger *slog.Logger,
) *HouseholdService {
	return &HouseholdService{
		repo:   repo,
		cipher: cipher,
		logger: logger,
	}
}

// CreateHousehold protects the phone and persists the record, then reads it back
// so the caller sees exactly what a later GET will return.
func (s *HouseholdService) CreateHousehold(ctx context.Context, in domain.NewHousehold) (*domain.HouseholdView, error) {
	// 🛡️ The plaintext phone never leaves this function except as a blob.
	blob, err := s.cipher.Protect(in.Phone)
	if err != nil {
		s.logger.Error("Phone protection failed", slog.String("error", err.Error()))
		return nil, domain.ErrProtectFailed
	}

	h := &domain.Household{
		ProgramID:      in.ProgramID,
		SublocationID:  in.SublocationID,
		HeadFirstName:  strings.TrimSpace(in.HeadFirstName),
		HeadLastName:   strings.TrimSpace(in.HeadLastName),
		HeadIDNumber:   strings.TrimSpace(in.HeadIDNumber),
		EncryptedPhone: blob,
	}

	if err := s.repo.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to persist household: %w", err)
	}

	stored, err := s.repo.GetByID(ctx, h.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created household: %w", err)
	}

	return s.reveal(stored)
}

func (s *HouseholdService) GetHousehold(ctx context.Context, id int) (*domain.HouseholdView, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reveal(h)
}

// ListHouseholds fails as a whole if any phone cannot be revealed; no partial pages.
func (s *HouseholdService) ListHouseholds(ctx context.Context) ([]domain.HouseholdView, error) {
	households, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list households: %w", err)
	}

	views := make([]domain.HouseholdView, 0, len(households))
	for i := range households {
		v, err := s.reveal(&households[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *HouseholdService) reveal(h *domain.Household) (*domain.HouseholdView, error) {
	phone, err := s.cipher.Reveal(h.EncryptedPhone)
	if err != nil {
		// Log the household and the failure class only, never the blob.
		s.logger.Error("Phone reveal failed",
			slog.Int("household_id", h.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("household %d: %w", h.ID, errors.Join(domain.ErrUnrecoverableField, err))
	}

	return &domain.HouseholdView{
		ID:            h.ID,
		HeadFirstName: h.HeadFirstName,
		HeadLastName:  h.HeadLastName,
		HeadIDNumber:  h.HeadIDNumber,
		Phone:         phone,
		Program:       h.Program,
		Location:      h.Location,
	}, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mis/api/internal/core/domain"
)

// HouseholdRepo implements domain.HouseholdRepository over pgx.
// encrypted_phone holds the field cipher blob verbatim.
type HouseholdRepo struct {
	pool *pgxpool.Pool
}

func NewHouseholdRepo(pool *pgxpool.Pool) *HouseholdRepo {
	return &HouseholdRepo{pool: pool}
}

// SQLSTATE for a row naming a missing program or sublocation.
const foreignKeyViolation = "23503"

// Eagerly loads the program and the sublocation -> county chain in one round trip.
const householdSelect = `
	SELECT h.id, h.program_id, h.sublocation_id,
	       h.head_first_name, h.head_last_name, h.head_id_number,
	       h.encrypted_phone, h.created_at,
	       p.id, p.name,
	       sl.name, l.name, sc.name, c.name
	FROM households h
	JOIN programs p      ON h.program_id = p.id
	JOIN sublocations sl ON h.sublocation_id = sl.id
	JOIN locations l     ON sl.location_id = l.id
	JOIN subcounties sc  ON l.subcounty_id = sc.id
	JOIN counties c      ON sc.county_id = c.id
`

// Create inserts the household and scans the generated id and timestamp back.
func (r *HouseholdRepo) Create(ctx context.Context, h *domain.Household) error {
	const query = `
		INSERT INTO households (program_id, sublocation_id, head_first_name, head_last_name, head_id_number, encrypted_phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		h.ProgramID,
		h.SublocationID,
		h.HeadFirstName,
		h.HeadLastName,
		h.HeadIDNumber,
		h.EncryptedPhone,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("%w: %s", domain.ErrInvalidReference, pgErr.ConstraintName)
		}
		return fmt.Errorf("failed to insert household: %w", err)
	}
	return nil
}

func (r *HouseholdRepo) GetByID(ctx context.Context, id int) (*domain.Household, error) {
	row := r.pool.QueryRow(ctx, householdSelect+` WHERE h.id = $1`, id)

	h, err := scanHousehold(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query household: %w", err)
	}
	return h, nil
}

func (r *HouseholdRepo) List(ctx context.Context) ([]domain.Household, error) {
	rows, err := r.pool.Query(ctx, householdSelect+` ORDER BY h.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list households: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Household, error) {
		h, err := scanHousehold(row)
		if err != nil {
			return domain.Household{}, err
		}
		return *h, nil
	})
}

func scanHousehold(row pgx.Row) (*domain.Household, error) {
	var h domain.Household
	err := row.Scan(
		&h.ID, &h.ProgramID, &h.SublocationID,
		&h.HeadFirstName, &h.HeadLastName, &h.HeadIDNumber,
		&h.EncryptedPhone, &h.CreatedAt,
		&h.Program.ID, &h.Program.Name,
		&h.Location.Sublocation, &h.Location.Location, &h.Location.Subcounty, &h.Location.County,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

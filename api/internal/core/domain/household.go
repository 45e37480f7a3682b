package domain

import (
	"context"
	"time"
)

// ProgramRef is the eagerly loaded program a household is enrolled in.
type ProgramRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// LocationPath is the flattened geographic hierarchy above a sublocation.
type LocationPath struct {
	Sublocation string `json:"sublocation"`
	Location    string `json:"location"`
	Subcounty   string `json:"subcounty"`
	County      string `json:"county"`
}

// Household is the persisted record. EncryptedPhone is the blob exactly as stored.
type Household struct {
	ID             int
	ProgramID      int
	SublocationID  int
	HeadFirstName  string
	HeadLastName   string
	HeadIDNumber   string
	EncryptedPhone string
	Program        ProgramRef
	Location       LocationPath
	CreatedAt      time.Time
}

// NewHousehold is validated write intent. Phone is plaintext and never reaches storage as such.
type NewHousehold struct {
	ProgramID     int
	SublocationID int
	HeadFirstName string
	HeadLastName  string
	HeadIDNumber  string
	Phone         string
}

// HouseholdView is the read model returned to clients, with the phone revealed.
type HouseholdView struct {
	ID            int          `json:"id"`
	HeadFirstName string       `json:"head_first_name"`
	HeadLastName  string       `json:"head_last_name"`
	HeadIDNumber  string       `json:"head_id_number"`
	Phone         string       `json:"phone"`
	Program       ProgramRef   `json:"program"`
	Location      LocationPath `json:"location"`
}

// HouseholdRepository persists households. It only ever sees the protected phone.
type HouseholdRepository interface {
	Create(ctx context.Context, h *Household) error
	GetByID(ctx context.Context, id int) (*Household, error)
	List(ctx context.Context) ([]Household, error)
}

// HouseholdService is the caller path of the field cipher.
type HouseholdService interface {
	CreateHousehold(ctx context.Context, in NewHousehold) (*HouseholdView, error)
	GetHousehold(ctx context.Context, id int) (*HouseholdView, error)
	ListHouseholds(ctx context.Context) ([]HouseholdView, error)
}

// PhoneBlob is one stored protected phone, keyed by household.
type PhoneBlob struct {
	HouseholdID    int    `db:"id"`
	EncryptedPhone string `db:"encrypted_phone"`
}

// PhoneBlobStore is the batch access the re-encryption job needs.
type PhoneBlobStore interface {
	// ListAfter returns up to limit blobs with id > afterID in id order.
	ListAfter(ctx context.Context, afterID, limit int) ([]PhoneBlob, error)

	// Replace swaps the blob only if it still equals old; false means it changed underneath.
	Replace(ctx context.Context, householdID int, old, updated string) (bool, error)
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"mis/api/internal/core/domain"
)

// Kenyan MSISDN in international form, as issued to beneficiaries.
var kenyanPhone = regexp.MustCompile(`^254[0-9]{9}$`)

// Use a single instance of Validate, it caches struct info
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	v.RegisterValidation("ke_phone", func(fl validator.FieldLevel) bool {
		return kenyanPhone.MatchString(fl.Field().String())
	})
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// ==============================================================================
// 1. Request Payloads (Input Validation)
// ==============================================================================

type CreateHouseholdRequest struct {
	ProgramID     RefID     `json:"program_id" validate:"required,gt=0"`
	SublocationID RefID     `json:"sublocation_id" validate:"required,gt=0"`
	HeadFirstName string    `json:"head_first_name" validate:"required,notblank,max=100"`
	HeadLastName  string    `json:"head_last_name" validate:"required,notblank,max=100"`
	HeadIDNumber  string    `json:"head_id_number" validate:"required,notblank,min=5,max=20"`
	Phone         FieldText `json:"phone" validate:"required,ke_phone"`
}

// ==============================================================================
// 2. The Handler Struct (Dependency Injection)
// ==============================================================================

type HouseholdHandler struct {
	Service domain.HouseholdService
	Logger  *slog.Logger
}

func NewHouseholdHandler(service domain.HouseholdService, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{
		Service: service,
		Logger:  logger,
	}
}

// ==============================================================================
// 3. HTTP Methods
// ==============================================================================

// List handles GET /api/v1/households
func (h *HouseholdHandler) List(w http.ResponseWriter, r *http.Request) {
	households, err := h.Service.ListHouseholds(r.Context())
	if err != nil {
		HandleError(w, r, h.Logger, err, "Failed to fetch households")
		return
	}
	writeJSON(w, http.StatusOK, households)
}

// GetByID handles GET /api/v1/households/{id}
func (h *HouseholdHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid household ID")
		return
	}

	household, err := h.Service.GetHousehold(r.Context(), id)
	if err != nil {
		HandleError(w, r, h.Logger, err, "Failed to fetch household")
		return
	}
	writeJSON(w, http.StatusOK, household)
}

// Create handles POST /api/v1/households
func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateHouseholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := validate.Struct(req); err != nil {
		HandleError(w, r, h.Logger, err, "Failed to create household")
		return
	}

	created, err := h.Service.CreateHousehold(r.Context(), domain.NewHousehold{
		ProgramID:     int(req.ProgramID),
		SublocationID: int(req.SublocationID),
		HeadFirstName: req.HeadFirstName,
		HeadLastName:  req.HeadLastName,
		HeadIDNumber:  req.HeadIDNumber,
		Phone:         string(req.Phone),
	})
	if err != nil {
		HandleError(w, r, h.Logger, err, "Failed to create household")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

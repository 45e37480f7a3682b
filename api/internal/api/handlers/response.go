package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"mis/api/internal/core/domain"
)

type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Status: "error", Message: message})
}

// HandleError maps domain and validation errors to HTTP semantics. fallback is the
// message for unexpected failures.
// 🛡️ Cryptographic and SQL detail stays in the log, never in the response.
func HandleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	var verrs validator.ValidationErrors

	switch {
	case errors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, validationMessage(verrs))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Household not found")
	case errors.Is(err, domain.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, "Failed to create household")
	case errors.Is(err, domain.ErrUnrecoverableField), errors.Is(err, domain.ErrProtectFailed):
		writeError(w, http.StatusInternalServerError, "Failed to process record")
	default:
		logger.Error("Request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// validationMessage reports missing fields first, then format problems.
func validationMessage(verrs validator.ValidationErrors) string {
	tags := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "notblank", "gt":
			return "All fields are required"
		}
		tags[fe.Field()] = fe.Tag()
	}

	if _, ok := tags["phone"]; ok {
		return "Invalid phone number format. Use format: 254XXXXXXXXX"
	}
	if _, ok := tags["head_id_number"]; ok {
		return "Invalid ID number length"
	}
	return "Invalid household payload"
}

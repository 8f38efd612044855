package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/eshaffer321/costshare/internal/api/dto"
	"github.com/eshaffer321/costshare/internal/application/billing"
	"github.com/eshaffer321/costshare/internal/domain/validator"
)

// Base provides shared functionality for all handlers.
type Base struct {
	billing *billing.Service
	logger  *slog.Logger
}

// NewBase creates a new base handler backed by the billing service.
func NewBase(svc *billing.Service, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{billing: svc, logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// WriteServiceError maps a billing service error to a response.
func (b *Base) WriteServiceError(w http.ResponseWriter, err error) {
	var invalid *validator.OverrideValidation
	switch {
	case errors.Is(err, billing.ErrServiceNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError(err.Error()))
	case errors.As(err, &invalid):
		b.WriteError(w, http.StatusBadRequest,
			dto.ValidationError(err.Error(), invalid.Missing, invalid.Unexpected, invalid.Negative))
	case errors.Is(err, billing.ErrInvalidOverride), errors.Is(err, billing.ErrInvalidFeedback):
		b.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error(), nil, nil, nil))
	default:
		b.logger.Error("request failed", "error", err)
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	}
}

// ParseBoolParam parses a boolean query parameter with a default value.
func ParseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

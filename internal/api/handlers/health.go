package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eshaffer321/costshare/internal/api/dto"
	"github.com/eshaffer321/costshare/internal/application/billing"
)

// HealthHandler reports whether the feedback store answers.
type HealthHandler struct {
	*Base
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(svc *billing.Service, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		Base: NewBase(svc, logger),
	}
}

// ServeHTTP handles GET /health. It answers 503 when the schema version
// cannot be read.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	version, err := h.billing.SchemaVersion()
	if err != nil {
		h.logger.Warn("health check failed", "error", err)
		h.WriteJSON(w, http.StatusServiceUnavailable, dto.UnavailableHealthResponse())
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewHealthResponse(version))
}

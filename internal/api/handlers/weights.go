package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/costshare/internal/api/dto"
	"github.com/eshaffer321/costshare/internal/application/billing"
	"github.com/eshaffer321/costshare/internal/domain/allocator"
)

// WeightsHandler handles allocation override requests.
type WeightsHandler struct {
	*Base
}

// NewWeightsHandler creates a new weights handler.
func NewWeightsHandler(svc *billing.Service, logger *slog.Logger) *WeightsHandler {
	return &WeightsHandler{
		Base: NewBase(svc, logger),
	}
}

// Set handles PUT /api/services/{id}/weights - stores an override.
func (h *WeightsHandler) Set(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "id")
	if serviceID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("service ID is required"))
		return
	}

	var req dto.SetWeightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	if err := h.billing.SetOverride(serviceID, allocator.Weights(req.Weights)); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.StatusResponse{Status: "saved", ServiceID: serviceID})
}

// Clear handles DELETE /api/services/{id}/weights - removes an override.
func (h *WeightsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "id")
	if serviceID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("service ID is required"))
		return
	}

	if err := h.billing.ClearOverride(serviceID); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.StatusResponse{Status: "cleared", ServiceID: serviceID})
}

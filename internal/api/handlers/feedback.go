package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/eshaffer321/costshare/internal/api/dto"
	"github.com/eshaffer321/costshare/internal/application/billing"
)

// FeedbackHandler handles per-service feedback requests.
type FeedbackHandler struct {
	*Base
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(svc *billing.Service, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		Base: NewBase(svc, logger),
	}
}

// List handles GET /api/feedback - returns all stored feedback.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	feedback, err := h.billing.Feedback()
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.FeedbackListResponse{
		Feedback: feedback,
		Count:    len(feedback),
	})
}

// Replace handles POST /api/feedback - replaces all stored feedback.
func (h *FeedbackHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req dto.ReplaceFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	if err := h.billing.ReplaceFeedback(req.Feedback); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.StatusResponse{Status: "ok"})
}

// Update handles POST /api/feedback/service - partially updates one service.
func (h *FeedbackHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.FeedbackUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	if req.ServiceID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("service_id is required"))
		return
	}

	update := req.ToUpdate()
	if update.IsEmpty() {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("no fields to update"))
		return
	}

	f, err := h.billing.UpdateFeedback(req.ServiceID, update)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, f)
}

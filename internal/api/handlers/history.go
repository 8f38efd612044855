package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/eshaffer321/costshare/internal/api/dto"
	"github.com/eshaffer321/costshare/internal/application/billing"
)

// HistoryHandler handles monthly snapshot requests.
type HistoryHandler struct {
	*Base
	now func() time.Time
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(svc *billing.Service, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		Base: NewBase(svc, logger),
		now:  time.Now,
	}
}

// List handles GET /api/history - returns recorded snapshots by period.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.billing.History()
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.HistoryResponse{
		Snapshots: snapshots,
		Count:     len(snapshots),
	})
}

// Record handles POST /api/snapshot - records the current month.
func (h *HistoryHandler) Record(w http.ResponseWriter, r *http.Request) {
	snap, err := h.billing.RecordSnapshot(h.now())
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, snap)
}

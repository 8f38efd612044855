package handlers

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/eshaffer321/costshare/internal/api/dto"
	"github.com/eshaffer321/costshare/internal/application/billing"
	"github.com/eshaffer321/costshare/internal/domain/allocator"
	"github.com/eshaffer321/costshare/internal/domain/money"
)

// BillingHandler handles billing and catalog requests.
type BillingHandler struct {
	*Base
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(svc *billing.Service, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		Base: NewBase(svc, logger),
	}
}

// Get handles GET /api/billing - computes per-project billing.
// Projects with no shares are omitted unless ?all=true.
func (h *BillingHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.billing.Compute()
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	includeEmpty := ParseBoolParam(r, "all", false)

	response := dto.BillingResponse{
		Projects:     make([]dto.ProjectBillingResponse, 0, len(report.Projects)),
		Summary:      report.Summary,
		Warnings:     report.Warnings,
		ServiceCount: report.ServiceCount,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
	}

	for _, pb := range report.Projects {
		if len(pb.Shares) == 0 && !includeEmpty {
			continue
		}
		response.Projects = append(response.Projects, toProjectBillingResponse(pb))
	}
	sortProjects(response.Projects)

	h.WriteJSON(w, http.StatusOK, response)
}

// Services handles GET /api/services - returns the effective catalog.
func (h *BillingHandler) Services(w http.ResponseWriter, r *http.Request) {
	entries, err := h.billing.Services()
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	response := dto.ServiceListResponse{
		Services: make([]dto.ServiceResponse, 0, len(entries)),
		Count:    len(entries),
	}
	for _, e := range entries {
		response.Services = append(response.Services, toServiceResponse(e))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// sortProjects orders by descending total, then ID, with the unassigned
// bucket last.
func sortProjects(projects []dto.ProjectBillingResponse) {
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i], projects[j]
		if (a.ID == allocator.UnassignedProjectID) != (b.ID == allocator.UnassignedProjectID) {
			return b.ID == allocator.UnassignedProjectID
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.ID < b.ID
	})
}

func toProjectBillingResponse(pb *allocator.ProjectBilling) dto.ProjectBillingResponse {
	return dto.ProjectBillingResponse{
		ID:       pb.Project.ID,
		Name:     pb.Project.Name,
		TagLabel: pb.Project.TagLabel,
		TagClass: pb.Project.TagClass,
		Client:   pb.Project.Client,
		Billable: pb.Project.Billable,
		Total:    money.RoundCents(pb.Total),
		Services: pb.Shares,
	}
}

func toServiceResponse(e billing.CatalogEntry) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:           e.Service.ID,
		Name:         e.Service.Name,
		Category:     e.Service.Category,
		Cost:         money.RoundCents(e.Service.Cost),
		CostSource:   string(e.CostSource),
		CostEstimate: e.Estimate,
		Notes:        e.Notes,
		Projects:     e.Service.ProjectIDs,
		Weights:      e.Weights,
		WeightSource: string(e.WeightSource),
		Feedback:     e.Feedback,
	}
}

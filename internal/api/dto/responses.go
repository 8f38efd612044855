package dto

import (
	"time"

	"github.com/eshaffer321/costshare/internal/domain/allocator"
	"github.com/eshaffer321/costshare/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	SchemaVersion int64  `json:"schema_version,omitempty"`
}

// ProjectBillingResponse is one project's allocated costs.
type ProjectBillingResponse struct {
	ID       string                     `json:"id"`
	Name     string                     `json:"name"`
	TagLabel string                     `json:"tag_label"`
	TagClass string                     `json:"tag_class,omitempty"`
	Client   string                     `json:"client,omitempty"`
	Billable bool                       `json:"billable"`
	Total    float64                    `json:"total"`
	Services []allocator.AllocatedShare `json:"services"`
}

// BillingResponse is returned by GET /api/billing.
type BillingResponse struct {
	Projects     []ProjectBillingResponse `json:"projects"`
	Summary      allocator.Summary        `json:"summary"`
	Warnings     []allocator.Warning      `json:"warnings"`
	ServiceCount int                      `json:"service_count"`
	GeneratedAt  string                   `json:"generated_at"`
}

// ServiceResponse is one entry of the effective catalog.
type ServiceResponse struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	Category     string                   `json:"category"`
	Cost         float64                  `json:"cost"`
	CostSource   string                   `json:"cost_source"`
	CostEstimate string                   `json:"cost_estimate,omitempty"`
	Notes        string                   `json:"notes,omitempty"`
	Projects     []string                 `json:"projects"`
	Weights      map[string]int           `json:"weights"`
	WeightSource string                   `json:"weight_source"`
	Feedback     *storage.ServiceFeedback `json:"feedback,omitempty"`
}

// ServiceListResponse is returned by GET /api/services.
type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
	Count    int               `json:"count"`
}

// FeedbackListResponse is returned by GET /api/feedback.
type FeedbackListResponse struct {
	Feedback []*storage.ServiceFeedback `json:"feedback"`
	Count    int                        `json:"count"`
}

// HistoryResponse is returned by GET /api/history.
type HistoryResponse struct {
	Snapshots []*storage.Snapshot `json:"snapshots"`
	Count     int                 `json:"count"`
}

// StatusResponse acknowledges a write.
type StatusResponse struct {
	Status    string `json:"status"`
	ServiceID string `json:"service_id,omitempty"`
}

// NewHealthResponse reports a reachable store at the given schema version.
func NewHealthResponse(schemaVersion int64) HealthResponse {
	return HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		SchemaVersion: schemaVersion,
	}
}

// UnavailableHealthResponse reports a store that could not be queried.
func UnavailableHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "unavailable",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

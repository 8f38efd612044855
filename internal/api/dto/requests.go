package dto

import "github.com/eshaffer321/costshare/internal/infrastructure/storage"

// FeedbackUpdateRequest is the body of POST /api/feedback/service.
// Omitted fields are left unchanged.
type FeedbackUpdateRequest struct {
	ServiceID   string          `json:"service_id"`
	ActualCost  *float64        `json:"actual_cost,omitempty"`
	Status      *string         `json:"status,omitempty"`
	UserNotes   *string         `json:"user_notes,omitempty"`
	ActionTaken *string         `json:"action_taken,omitempty"`
	Plan        *string         `json:"plan,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Projects    *[]string       `json:"projects,omitempty"`
	Weights     *map[string]int `json:"weights,omitempty"`
}

// ToUpdate converts the request to a storage partial update.
func (r FeedbackUpdateRequest) ToUpdate() storage.FeedbackUpdate {
	return storage.FeedbackUpdate{
		ActualCost:  r.ActualCost,
		Status:      r.Status,
		UserNotes:   r.UserNotes,
		ActionTaken: r.ActionTaken,
		Plan:        r.Plan,
		Category:    r.Category,
		Projects:    r.Projects,
		Weights:     r.Weights,
	}
}

// ReplaceFeedbackRequest is the body of POST /api/feedback.
// It replaces all stored feedback.
type ReplaceFeedbackRequest struct {
	Feedback []*storage.ServiceFeedback `json:"feedback"`
}

// SetWeightsRequest is the body of PUT /api/services/{id}/weights.
type SetWeightsRequest struct {
	Weights map[string]int `json:"weights"`
}

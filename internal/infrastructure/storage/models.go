package storage

import "time"

// ServiceFeedback is user-entered data about one service.
type ServiceFeedback struct {
	ServiceID   string   `json:"service_id"`
	ActualCost  *float64 `json:"actual_cost,omitempty"` // overrides the catalog estimate
	Status      string   `json:"status,omitempty"`
	UserNotes   string   `json:"user_notes,omitempty"`
	ActionTaken string   `json:"action_taken,omitempty"`
	Plan        string   `json:"plan,omitempty"`
	Category    string   `json:"category,omitempty"`

	// Projects replaces the scanned project list when non-nil
	Projects []string `json:"projects,omitempty"`

	// Weights is the allocation override (project ID -> weight)
	Weights map[string]int `json:"weights,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// FeedbackUpdate is a partial update. Nil fields are left unchanged.
type FeedbackUpdate struct {
	ActualCost  *float64        `json:"actual_cost,omitempty"`
	Status      *string         `json:"status,omitempty"`
	UserNotes   *string         `json:"user_notes,omitempty"`
	ActionTaken *string         `json:"action_taken,omitempty"`
	Plan        *string         `json:"plan,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Projects    *[]string       `json:"projects,omitempty"`
	Weights     *map[string]int `json:"weights,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u FeedbackUpdate) IsEmpty() bool {
	return u.ActualCost == nil && u.Status == nil && u.UserNotes == nil &&
		u.ActionTaken == nil && u.Plan == nil && u.Category == nil &&
		u.Projects == nil && u.Weights == nil
}

// Apply writes the non-nil fields of u into f
func (u FeedbackUpdate) Apply(f *ServiceFeedback) {
	if u.ActualCost != nil {
		cost := *u.ActualCost
		f.ActualCost = &cost
	}
	if u.Status != nil {
		f.Status = *u.Status
	}
	if u.UserNotes != nil {
		f.UserNotes = *u.UserNotes
	}
	if u.ActionTaken != nil {
		f.ActionTaken = *u.ActionTaken
	}
	if u.Plan != nil {
		f.Plan = *u.Plan
	}
	if u.Category != nil {
		f.Category = *u.Category
	}
	if u.Projects != nil {
		f.Projects = append([]string{}, (*u.Projects)...)
	}
	if u.Weights != nil {
		f.Weights = copyWeights(*u.Weights)
	}
}

// Snapshot is the stored summary of one month's allocation
type Snapshot struct {
	ID           string             `json:"id"`
	Period       string             `json:"date"` // YYYY-MM
	RecordedAt   time.Time          `json:"timestamp"`
	Total        float64            `json:"total"`
	Billable     float64            `json:"billable"`
	Internal     float64            `json:"internal"`
	Unassigned   float64            `json:"unassigned"`
	ServiceCount int                `json:"service_count"`
	ByProject    map[string]float64 `json:"by_project"`
	ByCategory   map[string]float64 `json:"by_category"`
	ByClient     map[string]float64 `json:"by_client"`
}

func copyWeights(w map[string]int) map[string]int {
	if w == nil {
		return nil
	}
	out := make(map[string]int, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

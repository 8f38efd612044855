// Package allocator distributes the monthly cost of shared services across
// the projects that use them.
//
// Each service's weights are resolved (override, configured default, or an
// even split), normalized against their actual sum and applied to the
// service's effective cost:
//
//	share = cost * weight / totalWeight
//
// Services with no projects land in the synthetic unassigned bucket.
package allocator

// UnassignedProjectID identifies the synthetic bucket that collects services
// with no associated project.
const UnassignedProjectID = "_none"

// Project is a billing target. Projects come from static configuration and
// are immutable during a run.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TagLabel string `json:"tag_label"`
	TagClass string `json:"tag_class"`
	Client   string `json:"client"`
	Billable bool   `json:"billable"`
}

// Service is a scanned subscription with its effective monthly cost.
type Service struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Cost       float64  `json:"cost"`
	ProjectIDs []string `json:"projects"`
}

// Weights maps project ID to an unnormalized, non-negative weight.
// Weights are conventionally percentage points but need not sum to 100.
type Weights map[string]int

// WeightSource records which resolution tier produced a service's weights.
type WeightSource string

const (
	SourceOverride   WeightSource = "override"
	SourceDefault    WeightSource = "default"
	SourceEvenSplit  WeightSource = "even_split"
	SourceUnassigned WeightSource = "unassigned"
)

// AllocatedShare is the part of one service's cost attributed to one project.
type AllocatedShare struct {
	ServiceID   string       `json:"service_id"`
	ServiceName string       `json:"service_name"`
	Category    string       `json:"category"`
	Cost        float64      `json:"cost"`
	Share       float64      `json:"share"`
	Percent     int          `json:"percent"`
	Shared      bool         `json:"shared"`
	Source      WeightSource `json:"source"`
}

// ProjectBilling aggregates every share attributed to a project.
type ProjectBilling struct {
	Project Project          `json:"project"`
	Shares  []AllocatedShare `json:"shares"`
	Total   float64          `json:"total"`
}

// WarningCode classifies a non-fatal allocation diagnostic.
type WarningCode string

const (
	// WarnUnknownProject means a service referenced a project ID that is not
	// configured. The ID was skipped.
	WarnUnknownProject WarningCode = "unknown_project"

	// WarnZeroWeight means every resolved weight was zero, so every share of
	// the service is zero.
	WarnZeroWeight WarningCode = "zero_weight"

	// WarnNoValidProjects means none of the service's project IDs are
	// configured and its cost was not allocated anywhere.
	WarnNoValidProjects WarningCode = "no_valid_projects"
)

// Warning is a diagnostic attached to a Result. Warnings never stop allocation.
type Warning struct {
	Code      WarningCode `json:"code"`
	ServiceID string      `json:"service_id"`
	ProjectID string      `json:"project_id,omitempty"`
	Message   string      `json:"message"`
}

// Result is the output of ComputeBilling.
type Result struct {
	Projects map[string]*ProjectBilling `json:"projects"`
	Warnings []Warning                  `json:"warnings"`
}

// Unassigned returns the synthetic bucket for services with no project.
func (r *Result) Unassigned() *ProjectBilling {
	return r.Projects[UnassignedProjectID]
}

// unassignedProject is the Project record of the synthetic bucket.
func unassignedProject() Project {
	return Project{
		ID:       UnassignedProjectID,
		Name:     "Unassigned",
		TagLabel: "N/A",
		Billable: false,
	}
}

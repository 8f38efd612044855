package allocator

import (
	"fmt"
	"math"
	"sort"
)

// fallbackTotalWeight replaces a zero weight sum so division stays defined.
// Every share is zero in that case.
const fallbackTotalWeight = 100

// WeightResolver resolves the weights for one service.
type WeightResolver interface {
	Resolve(serviceID string, projectIDs []string) Resolution
}

// Engine computes per-project billing from a snapshot of services.
type Engine struct {
	resolver WeightResolver
}

// NewEngine creates an engine backed by the given resolver.
func NewEngine(resolver WeightResolver) *Engine {
	return &Engine{resolver: resolver}
}

// ComputeBilling allocates every service's cost to its projects.
//
// The result holds one entry per known project plus the unassigned bucket.
// It never fails: unknown project IDs are skipped and zero weight sums yield
// zero shares, both reported as warnings.
func (e *Engine) ComputeBilling(services []Service, projects []Project) *Result {
	result := &Result{
		Projects: make(map[string]*ProjectBilling, len(projects)+1),
		Warnings: []Warning{},
	}

	for _, p := range projects {
		result.Projects[p.ID] = &ProjectBilling{Project: p, Shares: []AllocatedShare{}}
	}
	result.Projects[UnassignedProjectID] = &ProjectBilling{
		Project: unassignedProject(),
		Shares:  []AllocatedShare{},
	}

	for _, svc := range services {
		if len(svc.ProjectIDs) == 0 {
			e.assignUnallocated(result, svc)
			continue
		}
		e.allocate(result, svc)
	}

	for _, pb := range result.Projects {
		sort.SliceStable(pb.Shares, func(i, j int) bool {
			return pb.Shares[i].Share > pb.Shares[j].Share
		})
	}

	return result
}

// assignUnallocated routes a service with no projects to the unassigned bucket.
func (e *Engine) assignUnallocated(result *Result, svc Service) {
	bucket := result.Projects[UnassignedProjectID]
	bucket.Shares = append(bucket.Shares, AllocatedShare{
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Category:    svc.Category,
		Cost:        svc.Cost,
		Share:       svc.Cost,
		Percent:     100,
		Shared:      false,
		Source:      SourceUnassigned,
	})
	bucket.Total += svc.Cost
}

// allocate splits one service across its known projects.
func (e *Engine) allocate(result *Result, svc Service) {
	resolution := e.resolver.Resolve(svc.ID, svc.ProjectIDs)

	// Weights for IDs outside the service's list, or for unknown projects,
	// never enter the denominator.
	var totalWeight int
	valid := 0
	for _, id := range svc.ProjectIDs {
		if _, known := result.Projects[id]; !known || id == UnassignedProjectID {
			result.Warnings = append(result.Warnings, Warning{
				Code:      WarnUnknownProject,
				ServiceID: svc.ID,
				ProjectID: id,
				Message:   fmt.Sprintf("service %s references unknown project %s", svc.ID, id),
			})
			continue
		}
		valid++
		totalWeight += resolution.Weights[id]
	}

	if valid == 0 {
		result.Warnings = append(result.Warnings, Warning{
			Code:      WarnNoValidProjects,
			ServiceID: svc.ID,
			Message:   fmt.Sprintf("service %s has no known projects; $%.2f not allocated", svc.ID, svc.Cost),
		})
		return
	}

	if totalWeight == 0 {
		result.Warnings = append(result.Warnings, Warning{
			Code:      WarnZeroWeight,
			ServiceID: svc.ID,
			Message:   fmt.Sprintf("service %s has zero total weight; shares are zero", svc.ID),
		})
		totalWeight = fallbackTotalWeight
	}

	shared := len(svc.ProjectIDs) > 1
	for _, id := range svc.ProjectIDs {
		pb, known := result.Projects[id]
		if !known || id == UnassignedProjectID {
			continue
		}

		w := resolution.Weights[id]
		share := svc.Cost * float64(w) / float64(totalWeight)

		pb.Shares = append(pb.Shares, AllocatedShare{
			ServiceID:   svc.ID,
			ServiceName: svc.Name,
			Category:    svc.Category,
			Cost:        svc.Cost,
			Share:       share,
			Percent:     int(math.Round(float64(w) * 100 / float64(totalWeight))),
			Shared:      shared,
			Source:      resolution.Source,
		})
		pb.Total += share
	}
}

// Package validator checks user input before it reaches the feedback store.
//
// The override validator ensures a weight override names exactly the projects
// a service is currently associated with. Partial or stale overrides are
// rejected rather than applied.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eshaffer321/costshare/internal/domain/allocator"
)

// OverrideValidation contains the result of validating a weight override.
type OverrideValidation struct {
	// Valid is true if the override can be persisted
	Valid bool

	// Missing lists service projects with no weight in the override
	Missing []string

	// Unexpected lists override keys that are not service projects
	Unexpected []string

	// Negative lists projects given a negative weight
	Negative []string

	// Reason explains why validation failed (empty if valid)
	Reason string
}

// Error implements error so a failed validation can be returned directly.
func (v *OverrideValidation) Error() string {
	return v.Reason
}

// ValidateOverride checks that the key set of weights equals the service's
// project set and that no weight is negative.
//
// Duplicate project IDs on the service count once.
func ValidateOverride(service allocator.Service, weights allocator.Weights) *OverrideValidation {
	expected := make(map[string]bool, len(service.ProjectIDs))
	for _, id := range service.ProjectIDs {
		expected[id] = true
	}

	v := &OverrideValidation{}
	for id := range expected {
		if _, ok := weights[id]; !ok {
			v.Missing = append(v.Missing, id)
		}
	}
	for id, w := range weights {
		if !expected[id] {
			v.Unexpected = append(v.Unexpected, id)
		}
		if w < 0 {
			v.Negative = append(v.Negative, id)
		}
	}
	sort.Strings(v.Missing)
	sort.Strings(v.Unexpected)
	sort.Strings(v.Negative)

	var reasons []string
	if len(expected) == 0 {
		reasons = append(reasons, fmt.Sprintf("service %s has no projects to weight", service.ID))
	}
	if len(v.Missing) > 0 {
		reasons = append(reasons, "missing weights for "+strings.Join(v.Missing, ", "))
	}
	if len(v.Unexpected) > 0 {
		reasons = append(reasons, "unexpected projects "+strings.Join(v.Unexpected, ", "))
	}
	if len(v.Negative) > 0 {
		reasons = append(reasons, "negative weights for "+strings.Join(v.Negative, ", "))
	}

	if len(reasons) == 0 {
		v.Valid = true
		return v
	}

	v.Reason = fmt.Sprintf("invalid override for %s: %s", service.ID, strings.Join(reasons, "; "))
	return v
}

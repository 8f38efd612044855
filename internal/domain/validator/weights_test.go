package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eshaffer321/costshare/internal/domain/allocator"
)

func TestValidateOverride_Valid(t *testing.T) {
	svc := allocator.Service{ID: "svc", ProjectIDs: []string{"A", "B"}}

	result := ValidateOverride(svc, allocator.Weights{"A": 25, "B": 75})

	assert.True(t, result.Valid)
	assert.Empty(t, result.Reason)
	assert.Empty(t, result.Missing)
	assert.Empty(t, result.Unexpected)
}

func TestValidateOverride_ZeroWeightsAllowed(t *testing.T) {
	svc := allocator.Service{ID: "svc", ProjectIDs: []string{"A", "B"}}

	result := ValidateOverride(svc, allocator.Weights{"A": 0, "B": 0})

	assert.True(t, result.Valid)
}

func TestValidateOverride_DuplicateProjectsCountOnce(t *testing.T) {
	svc := allocator.Service{ID: "svc", ProjectIDs: []string{"A", "A", "B"}}

	result := ValidateOverride(svc, allocator.Weights{"A": 50, "B": 50})

	assert.True(t, result.Valid)
}

func TestValidateOverride_Missing(t *testing.T) {
	svc := allocator.Service{ID: "svc", ProjectIDs: []string{"A", "B", "C"}}

	result := ValidateOverride(svc, allocator.Weights{"A": 50, "B": 50})

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"C"}, result.Missing)
	assert.Contains(t, result.Reason, "missing weights for C")
}

func TestValidateOverride_Unexpected(t *testing.T) {
	svc := allocator.Service{ID: "svc", ProjectIDs: []string{"A"}}

	result := ValidateOverride(svc, allocator.Weights{"A": 50, "Z": 50})

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Z"}, result.Unexpected)
	assert.Contains(t, result.Reason, "unexpected projects Z")
}

func TestValidateOverride_Negative(t *testing.T) {
	svc := allocator.Service{ID: "svc", ProjectIDs: []string{"A", "B"}}

	result := ValidateOverride(svc, allocator.Weights{"A": -10, "B": 110})

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"A"}, result.Negative)
}

func TestValidateOverride_NoProjects(t *testing.T) {
	svc := allocator.Service{ID: "svc"}

	result := ValidateOverride(svc, allocator.Weights{})

	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "has no projects")
	assert.Equal(t, result.Reason, result.Error())
}

func TestValidateOverride_EmptyOverride(t *testing.T) {
	svc := allocator.Service{ID: "svc", ProjectIDs: []string{"A", "B"}}

	result := ValidateOverride(svc, nil)

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"A", "B"}, result.Missing)
}

package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eshaffer321/costshare/internal/application/billing"
	"github.com/eshaffer321/costshare/internal/domain/allocator"
	"github.com/eshaffer321/costshare/internal/infrastructure/storage"
)

func sampleReport() *billing.Report {
	return &billing.Report{
		Projects: map[string]*allocator.ProjectBilling{
			"alpha": {
				Project: allocator.Project{ID: "alpha", Name: "Alpha", TagLabel: "ALP", Client: "Acme", Billable: true},
				Shares: []allocator.AllocatedShare{
					{ServiceID: "llm", ServiceName: "LLM API", Share: 75, Percent: 75, Shared: true, Source: allocator.SourceOverride},
				},
				Total: 75,
			},
			"lab": {
				Project: allocator.Project{ID: "lab", Name: "Lab", TagLabel: "LAB"},
				Shares:  []allocator.AllocatedShare{},
			},
			allocator.UnassignedProjectID: {
				Project: allocator.Project{ID: allocator.UnassignedProjectID, Name: "Unassigned", TagLabel: "N/A"},
				Shares: []allocator.AllocatedShare{
					{ServiceID: "domain", ServiceName: "Domain", Share: 12, Percent: 100, Source: allocator.SourceUnassigned},
				},
				Total: 12,
			},
		},
		Summary: allocator.Summary{
			Total: 87, Billable: 75, Unassigned: 12,
			ByClient: map[string]float64{"Acme": 75},
		},
		Warnings: []allocator.Warning{
			{Code: allocator.WarnUnknownProject, ServiceID: "llm", ProjectID: "ghost", Message: "service llm references unknown project ghost"},
		},
		ServiceCount: 2,
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sampleReport(), false)
	out := buf.String()

	assert.Contains(t, out, "Alpha [ALP]")
	assert.Contains(t, out, "LLM API (shared)")
	assert.Contains(t, out, "$75.00")
	assert.NotContains(t, out, "Lab [LAB]")
	assert.Less(t, strings.Index(out, "Alpha"), strings.Index(out, "Unassigned"))
	assert.Contains(t, out, "Summary: Total=$87.00 Billable=$75.00 Internal=$0.00 Unassigned=$12.00 Services=2")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "[unknown_project]")
}

func TestPrintReport_IncludeEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sampleReport(), true)

	assert.Contains(t, buf.String(), "Lab [LAB]")
}

func TestPrintHistory(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		PrintHistory(&buf, nil)
		assert.Equal(t, "No snapshots recorded.\n", buf.String())
	})

	t.Run("rows", func(t *testing.T) {
		var buf bytes.Buffer
		PrintHistory(&buf, []*storage.Snapshot{
			{Period: "2026-09", Total: 100, RecordedAt: time.Date(2026, 9, 30, 18, 0, 0, 0, time.UTC)},
			{Period: "2026-10", Total: 120.5, ServiceCount: 9, RecordedAt: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)},
		})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Len(t, lines, 3)
		assert.Contains(t, lines[0], "PERIOD")
		assert.Contains(t, lines[2], "2026-10")
		assert.Contains(t, lines[2], "$120.50")
	})
}

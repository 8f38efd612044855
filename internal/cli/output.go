package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/eshaffer321/costshare/internal/application/billing"
	"github.com/eshaffer321/costshare/internal/domain/allocator"
	"github.com/eshaffer321/costshare/internal/infrastructure/storage"
)

// PrintReport prints per-project billing as a table followed by the summary
func PrintReport(w io.Writer, report *billing.Report, includeEmpty bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, pb := range orderedProjects(report.Projects) {
		if len(pb.Shares) == 0 && !includeEmpty {
			continue
		}

		kind := "internal"
		if pb.Project.Billable {
			kind = "billable"
		}
		fmt.Fprintf(tw, "%s [%s]\t%s\t\t$%.2f\n", pb.Project.Name, pb.Project.TagLabel, kind, pb.Total)

		for _, s := range pb.Shares {
			shared := ""
			if s.Shared {
				shared = " (shared)"
			}
			fmt.Fprintf(tw, "  %s%s\t%s\t%d%%\t$%.2f\n", s.ServiceName, shared, s.Source, s.Percent, s.Share)
		}
	}
	_ = tw.Flush()

	sum := report.Summary
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Summary: Total=$%.2f Billable=$%.2f Internal=$%.2f Unassigned=$%.2f Services=%d\n",
		sum.Total, sum.Billable, sum.Internal, sum.Unassigned, report.ServiceCount)

	if len(sum.ByClient) > 0 {
		fmt.Fprintln(w, "\nBy client:")
		for _, client := range sortedKeys(sum.ByClient) {
			fmt.Fprintf(w, "  %-24s $%.2f\n", client, sum.ByClient[client])
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warn := range report.Warnings {
			fmt.Fprintf(w, "  - [%s] %s\n", warn.Code, warn.Message)
		}
	}
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintHistory prints one line per recorded snapshot
func PrintHistory(w io.Writer, snapshots []*storage.Snapshot) {
	if len(snapshots) == 0 {
		fmt.Fprintln(w, "No snapshots recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tTOTAL\tBILLABLE\tINTERNAL\tUNASSIGNED\tSERVICES\tRECORDED")
	for _, s := range snapshots {
		fmt.Fprintf(tw, "%s\t$%.2f\t$%.2f\t$%.2f\t$%.2f\t%d\t%s\n",
			s.Period, s.Total, s.Billable, s.Internal, s.Unassigned, s.ServiceCount,
			s.RecordedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

// orderedProjects sorts by descending total, then ID, with unassigned last
func orderedProjects(projects map[string]*allocator.ProjectBilling) []*allocator.ProjectBilling {
	out := make([]*allocator.ProjectBilling, 0, len(projects))
	for _, pb := range projects {
		out = append(out, pb)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		aNone := a.Project.ID == allocator.UnassignedProjectID
		bNone := b.Project.ID == allocator.UnassignedProjectID
		if aNone != bNone {
			return bNone
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Project.ID < b.Project.ID
	})
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

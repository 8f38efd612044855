package allocator

import "github.com/eshaffer321/costshare/internal/domain/money"

// Summary holds cent-rounded totals derived from a Result.
type Summary struct {
	Total      float64            `json:"total"`
	Billable   float64            `json:"billable"`
	Internal   float64            `json:"internal"`
	Unassigned float64            `json:"unassigned"`
	ByProject  map[string]float64 `json:"by_project"`
	ByCategory map[string]float64 `json:"by_category"`
	ByClient   map[string]float64 `json:"by_client"`
}

// Summarize totals a Result per project, category and client.
// ByClient only counts billable projects.
func Summarize(r *Result) Summary {
	var total, billable, internal, unassigned money.Accumulator
	byProject := make(map[string]*money.Accumulator)
	byCategory := make(map[string]*money.Accumulator)
	byClient := make(map[string]*money.Accumulator)

	add := func(m map[string]*money.Accumulator, key string, amount float64) {
		acc, ok := m[key]
		if !ok {
			acc = &money.Accumulator{}
			m[key] = acc
		}
		acc.Add(amount)
	}

	for id, pb := range r.Projects {
		for _, s := range pb.Shares {
			total.Add(s.Share)
			add(byProject, id, s.Share)
			add(byCategory, s.Category, s.Share)

			switch {
			case id == UnassignedProjectID:
				unassigned.Add(s.Share)
			case pb.Project.Billable:
				billable.Add(s.Share)
				add(byClient, pb.Project.Client, s.Share)
			default:
				internal.Add(s.Share)
			}
		}
	}

	return Summary{
		Total:      total.Total(),
		Billable:   billable.Total(),
		Internal:   internal.Total(),
		Unassigned: unassigned.Total(),
		ByProject:  totals(byProject),
		ByCategory: totals(byCategory),
		ByClient:   totals(byClient),
	}
}

func totals(m map[string]*money.Accumulator) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, acc := range m {
		out[k] = acc.Total()
	}
	return out
}

package billing

import (
	"github.com/eshaffer321/costshare/internal/domain/allocator"
	"github.com/eshaffer321/costshare/internal/domain/money"
	"github.com/eshaffer321/costshare/internal/infrastructure/config"
	"github.com/eshaffer321/costshare/internal/infrastructure/storage"
)

// DefaultCategory is used when neither feedback nor config names a category.
const DefaultCategory = "other"

// CostSource records where a service's effective cost came from.
type CostSource string

const (
	CostActual   CostSource = "actual"   // user-entered actual_cost
	CostEstimate CostSource = "estimate" // parsed from cost_estimate
	CostNone     CostSource = "none"     // nothing parseable, counted as 0
)

// CatalogEntry is one service with its effective allocation inputs.
type CatalogEntry struct {
	Service      allocator.Service        `json:"service"`
	CostSource   CostSource               `json:"cost_source"`
	Estimate     string                   `json:"cost_estimate,omitempty"`
	Notes        string                   `json:"notes,omitempty"`
	Feedback     *storage.ServiceFeedback `json:"feedback,omitempty"`
	Weights      allocator.Weights        `json:"weights"`
	WeightSource allocator.WeightSource   `json:"weight_source"`
}

// Catalog is a point-in-time snapshot of everything ComputeBilling needs.
// It is built fresh for every request and never mutated afterwards.
type Catalog struct {
	Projects  []allocator.Project
	Entries   []CatalogEntry
	Overrides map[string]allocator.Weights
	Defaults  map[string]allocator.Weights

	index map[string]int
}

// BuildCatalog merges configured services with stored feedback.
// Feedback for services that are not configured is ignored.
func BuildCatalog(cfg *config.Config, feedback []*storage.ServiceFeedback) *Catalog {
	byService := make(map[string]*storage.ServiceFeedback, len(feedback))
	for _, f := range feedback {
		byService[f.ServiceID] = f
	}

	c := &Catalog{
		Projects:  cfg.AllocatorProjects(),
		Entries:   make([]CatalogEntry, 0, len(cfg.Services)),
		Overrides: make(map[string]allocator.Weights),
		Defaults:  cfg.DefaultWeights(),
		index:     make(map[string]int, len(cfg.Services)),
	}
	allProjects := cfg.ProjectIDs()

	for _, sc := range cfg.Services {
		if _, dup := c.index[sc.ID]; dup {
			continue
		}
		fb := byService[sc.ID]

		cost, source := effectiveCost(sc, fb)
		svc := allocator.Service{
			ID:         sc.ID,
			Name:       sc.Name,
			Category:   effectiveCategory(sc, fb),
			Cost:       cost,
			ProjectIDs: effectiveProjects(sc, fb, allProjects),
		}
		if svc.Name == "" {
			svc.Name = sc.ID
		}

		if fb != nil && len(fb.Weights) > 0 {
			c.Overrides[sc.ID] = allocator.Weights(fb.Weights)
		}

		c.index[sc.ID] = len(c.Entries)
		c.Entries = append(c.Entries, CatalogEntry{
			Service:    svc,
			CostSource: source,
			Estimate:   sc.CostEstimate,
			Notes:      sc.Notes,
			Feedback:   fb,
		})
	}

	resolver := c.Resolver()
	for i := range c.Entries {
		e := &c.Entries[i]
		if len(e.Service.ProjectIDs) == 0 {
			e.Weights = allocator.Weights{}
			e.WeightSource = allocator.SourceUnassigned
			continue
		}
		res := resolver.Resolve(e.Service.ID, e.Service.ProjectIDs)
		e.Weights = res.Weights
		e.WeightSource = res.Source
	}

	return c
}

// Resolver returns the override/default/even-split resolver for this catalog.
func (c *Catalog) Resolver() *allocator.Resolver {
	return allocator.NewDefaultResolver(c.Overrides, c.Defaults)
}

// Services returns the allocation inputs in configuration order.
func (c *Catalog) Services() []allocator.Service {
	services := make([]allocator.Service, 0, len(c.Entries))
	for _, e := range c.Entries {
		services = append(services, e.Service)
	}
	return services
}

// Find looks up a service by ID.
func (c *Catalog) Find(serviceID string) (*CatalogEntry, bool) {
	i, ok := c.index[serviceID]
	if !ok {
		return nil, false
	}
	return &c.Entries[i], true
}

func effectiveCost(sc config.ServiceConfig, fb *storage.ServiceFeedback) (float64, CostSource) {
	if fb != nil && fb.ActualCost != nil {
		return *fb.ActualCost, CostActual
	}
	if amount, ok := money.ParseAmount(sc.CostEstimate); ok {
		return amount, CostEstimate
	}
	return 0, CostNone
}

func effectiveCategory(sc config.ServiceConfig, fb *storage.ServiceFeedback) string {
	switch {
	case fb != nil && fb.Category != "":
		return fb.Category
	case sc.Category != "":
		return sc.Category
	default:
		return DefaultCategory
	}
}

func effectiveProjects(sc config.ServiceConfig, fb *storage.ServiceFeedback, allProjects []string) []string {
	switch {
	case fb != nil && fb.Projects != nil:
		return dedupe(fb.Projects)
	case sc.AllProjects:
		return dedupe(allProjects)
	default:
		return dedupe(sc.Projects)
	}
}

// dedupe removes repeated IDs, keeping first occurrence order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

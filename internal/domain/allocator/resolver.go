package allocator

import "math"

// Resolution is the outcome of resolving a service's weights.
type Resolution struct {
	Weights Weights
	Source  WeightSource
}

// Strategy is one tier of weight resolution. Resolve returns ok=false when
// the tier has nothing to say about the service, letting the next tier try.
type Strategy interface {
	Source() WeightSource
	Resolve(serviceID string, projectIDs []string) (Weights, bool)
}

// OverrideStrategy returns user-entered weights. An empty override does not
// count as a match.
type OverrideStrategy struct {
	Overrides map[string]Weights
}

// Source implements Strategy.
func (s OverrideStrategy) Source() WeightSource { return SourceOverride }

// Resolve implements Strategy.
func (s OverrideStrategy) Resolve(serviceID string, _ []string) (Weights, bool) {
	w, ok := s.Overrides[serviceID]
	if !ok || len(w) == 0 {
		return nil, false
	}
	return w, true
}

// DefaultStrategy returns weights from static configuration.
type DefaultStrategy struct {
	Defaults map[string]Weights
}

// Source implements Strategy.
func (s DefaultStrategy) Source() WeightSource { return SourceDefault }

// Resolve implements Strategy.
func (s DefaultStrategy) Resolve(serviceID string, _ []string) (Weights, bool) {
	w, ok := s.Defaults[serviceID]
	if !ok {
		return nil, false
	}
	return w, true
}

// EvenSplitStrategy gives every project round(100/n). The weights are not
// corrected to sum to 100 (3 projects get 33 each); the engine normalizes
// against the real sum.
type EvenSplitStrategy struct{}

// Source implements Strategy.
func (EvenSplitStrategy) Source() WeightSource { return SourceEvenSplit }

// Resolve implements Strategy. It always matches.
func (EvenSplitStrategy) Resolve(_ string, projectIDs []string) (Weights, bool) {
	w := make(Weights, len(projectIDs))
	if len(projectIDs) == 0 {
		return w, true
	}
	each := int(math.Round(100 / float64(len(projectIDs))))
	for _, id := range projectIDs {
		w[id] = each
	}
	return w, true
}

// Resolver tries its strategies in order; the first match wins.
type Resolver struct {
	strategies []Strategy
}

// NewResolver creates a resolver over the given strategies. If none of them
// match, the resolver falls back to an even split.
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// NewDefaultResolver builds the standard override → default → even split chain.
func NewDefaultResolver(overrides, defaults map[string]Weights) *Resolver {
	return NewResolver(
		OverrideStrategy{Overrides: overrides},
		DefaultStrategy{Defaults: defaults},
		EvenSplitStrategy{},
	)
}

// Resolve returns the weights for a service. The returned map is the
// strategy's own map and must not be modified.
func (r *Resolver) Resolve(serviceID string, projectIDs []string) Resolution {
	for _, s := range r.strategies {
		if w, ok := s.Resolve(serviceID, projectIDs); ok {
			return Resolution{Weights: w, Source: s.Source()}
		}
	}
	w, _ := EvenSplitStrategy{}.Resolve(serviceID, projectIDs)
	return Resolution{Weights: w, Source: SourceEvenSplit}
}

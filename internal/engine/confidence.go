package engine

// ConfidenceComponent is one weighted sub-score of the confidence calculation.
// Weights across all components are expected to sum to at most 1.0.
type ConfidenceComponent struct {
	Value  float64
	Weight float64
}

// Boost is a flat additive bonus applied after the weighted components.
type Boost struct {
	Name  string
	Value float64
}

// ComputeConfidence builds a bounded 0..cap confidence score from a base
// value, weighted sub-scores, and additive boosts:
//
//	raw = base + Σ(component.Value * component.Weight) + Σ(boosts)
//
// The result is clipped to [0, cap].
func ComputeConfidence(base float64, components map[string]ConfidenceComponent, boosts []Boost, cap float64) float64 {
	raw := base
	for _, c := range components {
		raw += c.Value * c.Weight
	}
	for _, b := range boosts {
		raw += b.Value
	}
	if raw > cap {
		raw = cap
	}
	if raw < 0 {
		raw = 0
	}
	return raw
}

// Package engine implements the weighted-factor forecast computation: a base
// rate plus a sum of per-factor adjustments, with validation of the factor set
// and a bounded confidence score. The engine is pure arithmetic: it performs
// no I/O, holds no shared state, and is safe to call concurrently with
// distinct inputs.
package engine

import (
	"math"
)

// Category groups factors by the kind of signal they carry.
type Category string

const (
	CategoryCoreLabor        Category = "core_labor"
	CategoryTradeData        Category = "trade_data"
	CategoryLeadingIndicator Category = "leading_indicator"
	CategoryDynamic          Category = "dynamic"
)

// Factor is one fully resolved input to the forecast. Scale has already been
// chosen by the caller (fixed historical stddev, the baseline itself, or a
// trailing stddev); the engine never infers it.
type Factor struct {
	Key         string
	Category    Category
	Weight      float64
	RawValue    float64
	Baseline    float64
	Scale       float64
	Coefficient float64
}

// Adjustment is one factor's signed percentage-point contribution.
type Adjustment struct {
	Key   string
	Value float64
}

// ForecastResult is the immutable output of one forecast computation.
// Adjustments preserve the order in which factors were supplied.
type ForecastResult struct {
	BaseRate        float64
	Adjustments     []Adjustment
	TotalAdjustment float64
	FinalValue      float64
}

// Options configures an Engine.
type Options struct {
	// WeightBudget is the required sum of all factor weights.
	WeightBudget float64
	// Tolerance is the allowed floating-point slack on the weight sum.
	// Zero means DefaultTolerance.
	Tolerance float64
	// MaxAbsAdjustment, when positive, clips each factor's adjustment to
	// [-MaxAbsAdjustment, +MaxAbsAdjustment]. Zero disables clipping.
	MaxAbsAdjustment float64
}

// DefaultTolerance is the weight-sum slack used when Options.Tolerance is zero.
const DefaultTolerance = 1e-6

// Engine computes forecasts over validated factor sets.
type Engine struct {
	weightBudget     float64
	tolerance        float64
	maxAbsAdjustment float64
}

// New creates an Engine with the given options.
func New(opts Options) *Engine {
	tol := opts.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	return &Engine{
		weightBudget:     opts.WeightBudget,
		tolerance:        tol,
		maxAbsAdjustment: opts.MaxAbsAdjustment,
	}
}

// ComputeAdjustment converts one factor's deviation from baseline into a
// signed percentage-point contribution:
//
//	d = (raw - baseline) / scale
//	adjustment = d * weight * coefficient
//
// The factor must come from a validated set; no checks happen here.
func (e *Engine) ComputeAdjustment(f Factor) float64 {
	d := (f.RawValue - f.Baseline) / f.Scale
	adj := d * f.Weight * f.Coefficient
	if e.maxAbsAdjustment > 0 {
		adj = math.Max(-e.maxAbsAdjustment, math.Min(e.maxAbsAdjustment, adj))
	}
	return adj
}

// ComputeForecast validates the factor set and sums per-factor adjustments
// onto the base rate. An empty factor set is the identity: no adjustment,
// final value equals the base rate. Same inputs always produce the same
// result.
func (e *Engine) ComputeForecast(baseRate float64, factors []Factor) (*ForecastResult, error) {
	if err := e.validateFactors(factors); err != nil {
		return nil, err
	}

	adjustments := make([]Adjustment, 0, len(factors))
	total := 0.0
	for _, f := range factors {
		adj := e.ComputeAdjustment(f)
		adjustments = append(adjustments, Adjustment{Key: f.Key, Value: adj})
		total += adj
	}

	return &ForecastResult{
		BaseRate:        baseRate,
		Adjustments:     adjustments,
		TotalAdjustment: total,
		FinalValue:      baseRate + total,
	}, nil
}

// validateFactors rejects configuration errors before any arithmetic runs:
// duplicate keys, negative weights, zero scales, and a weight sum off the
// configured budget. These abort the whole computation; partial forecasts are
// never produced.
func (e *Engine) validateFactors(factors []Factor) error {
	// The empty set is the identity forecast, exempt from the budget.
	if len(factors) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(factors))
	var duplicates, negative, zeroScale []string
	weightSum := 0.0
	for _, f := range factors {
		if seen[f.Key] {
			duplicates = append(duplicates, f.Key)
		}
		seen[f.Key] = true
		if f.Weight < 0 {
			negative = append(negative, f.Key)
		}
		if f.Scale == 0 {
			zeroScale = append(zeroScale, f.Key)
		}
		weightSum += f.Weight
	}

	if len(duplicates) > 0 {
		return &ConfigurationError{Keys: duplicates, Reason: "duplicate factor key"}
	}
	if len(negative) > 0 {
		return &ConfigurationError{Keys: negative, Reason: "negative weight"}
	}
	if len(zeroScale) > 0 {
		return &ConfigurationError{Keys: zeroScale, Reason: "zero scale"}
	}
	if math.Abs(weightSum-e.weightBudget) > e.tolerance {
		return &ConfigurationError{
			Reason: "weight sum violates configured budget",
			Detail: map[string]float64{"sum": weightSum, "budget": e.weightBudget},
		}
	}
	return nil
}

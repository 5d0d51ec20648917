// Package observe converts fetched series into fully resolved engine factors:
// latest raw value, rule-derived baseline, and a concrete scale. Missing or
// unusable data surfaces as a typed DataError naming the factor; it is never
// guessed at or silently dropped.
package observe

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/macrolabs/laborcast/internal/engine"
	"github.com/macrolabs/laborcast/internal/registry"
	"github.com/macrolabs/laborcast/models"
)

// DataError reports an observation that could not be resolved for a factor.
// The caller must fix or exclude the factor explicitly before forecasting.
type DataError struct {
	FactorKey string
	Reason    string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("factor %q: %s", e.FactorKey, e.Reason)
}

// BuildFactor resolves one registry factor definition against its fetched
// series. Observations must be sorted oldest first.
func BuildFactor(spec registry.FactorSpec, obs []models.Observation) (engine.Factor, error) {
	values := make([]float64, 0, len(obs))
	for _, o := range obs {
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return engine.Factor{}, &DataError{FactorKey: spec.Key, Reason: "non-finite observation"}
		}
		values = append(values, o.Value)
	}
	if len(values) == 0 {
		return engine.Factor{}, &DataError{FactorKey: spec.Key, Reason: "no observations"}
	}

	raw := values[len(values)-1]

	rule, err := registry.ParseBaselineRule(spec.Baseline)
	if err != nil {
		return engine.Factor{}, fmt.Errorf("factor %q: %w", spec.Key, err)
	}
	baseline, err := resolveBaseline(spec.Key, rule, values)
	if err != nil {
		return engine.Factor{}, err
	}

	scale, err := resolveScale(spec, baseline, values)
	if err != nil {
		return engine.Factor{}, err
	}

	return engine.Factor{
		Key:         spec.Key,
		Category:    engine.Category(spec.Category),
		Weight:      spec.Weight,
		RawValue:    raw,
		Baseline:    baseline,
		Scale:       scale,
		Coefficient: spec.Coefficient,
	}, nil
}

// resolveBaseline applies the factor's baseline rule to everything before the
// latest observation.
func resolveBaseline(key string, rule registry.BaselineRule, values []float64) (float64, error) {
	prior := values[:len(values)-1]
	switch rule.Kind {
	case registry.BaselineLatestPrior:
		if len(prior) < 1 {
			return 0, &DataError{FactorKey: key, Reason: "need at least 2 observations for latest_prior baseline"}
		}
		return prior[len(prior)-1], nil
	case registry.BaselineTrailingMean:
		if len(prior) < rule.Window {
			return 0, &DataError{
				FactorKey: key,
				Reason:    fmt.Sprintf("need %d prior observations for trailing mean, have %d", rule.Window, len(prior)),
			}
		}
		mean, err := stats.Mean(prior[len(prior)-rule.Window:])
		if err != nil {
			return 0, &DataError{FactorKey: key, Reason: err.Error()}
		}
		return mean, nil
	default:
		return 0, fmt.Errorf("factor %q: unknown baseline rule %q", key, rule.Kind)
	}
}

func resolveScale(spec registry.FactorSpec, baseline float64, values []float64) (float64, error) {
	switch spec.ScaleMode {
	case registry.ScaleFixed:
		return spec.Scale, nil
	case registry.ScaleBaseline:
		if baseline == 0 {
			return 0, &DataError{FactorKey: spec.Key, Reason: "zero baseline cannot be used as scale"}
		}
		return baseline, nil
	case registry.ScaleTrailingStddev:
		if len(values) < spec.ScaleWindow {
			return 0, &DataError{
				FactorKey: spec.Key,
				Reason:    fmt.Sprintf("need %d observations for trailing stddev, have %d", spec.ScaleWindow, len(values)),
			}
		}
		sd, err := stats.StandardDeviationSample(values[len(values)-spec.ScaleWindow:])
		if err != nil {
			return 0, &DataError{FactorKey: spec.Key, Reason: err.Error()}
		}
		if sd == 0 {
			return 0, &DataError{FactorKey: spec.Key, Reason: "flat series has zero trailing stddev"}
		}
		return sd, nil
	default:
		return 0, fmt.Errorf("factor %q: unknown scale_mode %q", spec.Key, spec.ScaleMode)
	}
}

// LatestValue returns the newest observation's value, for series used
// directly (the base rate).
func LatestValue(key string, obs []models.Observation) (float64, error) {
	if len(obs) == 0 {
		return 0, &DataError{FactorKey: key, Reason: "no observations"}
	}
	v := obs[len(obs)-1].Value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &DataError{FactorKey: key, Reason: "non-finite observation"}
	}
	return v, nil
}

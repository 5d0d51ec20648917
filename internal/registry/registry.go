// Package registry loads versioned factor-registry files. A registry is the
// data-side definition of one forecast model: which series feed it, how each
// factor is weighted and scaled, and how the confidence score is assembled.
// Adding, removing, or re-weighting a factor is a registry change, not a code
// change, and two registry versions can be loaded side by side for comparison.
package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Known upstream providers.
const (
	ProviderFRED = "fred"
	ProviderBLS  = "bls"
	ProviderBEA  = "bea"
)

// Baseline rule kinds.
const (
	BaselineLatestPrior  = "latest_prior"
	BaselineTrailingMean = "trailing_mean"
)

// Scale modes.
const (
	ScaleFixed          = "fixed"
	ScaleBaseline       = "baseline"
	ScaleTrailingStddev = "trailing_stddev"
)

// SeriesRef points at one upstream series.
type SeriesRef struct {
	Provider string `mapstructure:"provider"`
	SeriesID string `mapstructure:"series_id"`
}

// FactorSpec is the registry-side definition of one factor.
type FactorSpec struct {
	Key         string  `mapstructure:"key"`
	Category    string  `mapstructure:"category"`
	Weight      float64 `mapstructure:"weight"`
	Provider    string  `mapstructure:"provider"`
	SeriesID    string  `mapstructure:"series_id"`
	Baseline    string  `mapstructure:"baseline"`
	ScaleMode   string  `mapstructure:"scale_mode"`
	Scale       float64 `mapstructure:"scale"`
	ScaleWindow int     `mapstructure:"scale_window"`
	Coefficient float64 `mapstructure:"coefficient"`
}

// ComponentSpec is one weighted confidence sub-score. The value is part of
// the registry so that the ad-hoc percentages of older model versions become
// versioned data instead of constants in code.
type ComponentSpec struct {
	Value  float64 `mapstructure:"value"`
	Weight float64 `mapstructure:"weight"`
}

// BoostSpec is a flat additive confidence bonus.
type BoostSpec struct {
	Name  string  `mapstructure:"name"`
	Value float64 `mapstructure:"value"`
}

// ConfidenceSpec configures the confidence score for one registry version.
// Cap is the single configured maximum; there is exactly one per version.
type ConfidenceSpec struct {
	Base       float64                  `mapstructure:"base"`
	Cap        float64                  `mapstructure:"cap"`
	Components map[string]ComponentSpec `mapstructure:"components"`
	Boosts     []BoostSpec              `mapstructure:"boosts"`
}

// Registry is one complete, versioned factor-registry definition.
type Registry struct {
	Version      string         `mapstructure:"version"`
	WeightBudget float64        `mapstructure:"weight_budget"`
	BaseRate     SeriesRef      `mapstructure:"base_rate"`
	Confidence   ConfidenceSpec `mapstructure:"confidence"`
	Factors      []FactorSpec   `mapstructure:"factors"`
}

// BaselineRule is a parsed baseline directive.
type BaselineRule struct {
	Kind   string
	Window int
}

// Load reads and validates a registry file.
func Load(path string) (*Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var reg Registry
	if err := v.Unmarshal(&reg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registry: %w", err)
	}

	if err := reg.validate(); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	return &reg, nil
}

// validate performs structural checks only. Weight arithmetic (budget,
// duplicates, negatives) stays in the engine, which re-validates every
// computation.
func (r *Registry) validate() error {
	if r.Version == "" {
		return fmt.Errorf("missing version tag")
	}
	if r.WeightBudget <= 0 {
		return fmt.Errorf("weight_budget must be positive, got %g", r.WeightBudget)
	}
	if err := validateSeriesRef(r.BaseRate); err != nil {
		return fmt.Errorf("base_rate: %w", err)
	}
	if r.Confidence.Cap <= 0 || r.Confidence.Cap > 100 {
		return fmt.Errorf("confidence cap must be in (0, 100], got %g", r.Confidence.Cap)
	}
	componentWeight := 0.0
	for name, c := range r.Confidence.Components {
		if c.Weight < 0 {
			return fmt.Errorf("confidence component %q has negative weight", name)
		}
		componentWeight += c.Weight
	}
	if componentWeight > 1.0+1e-9 {
		return fmt.Errorf("confidence component weights sum to %g, must be <= 1.0", componentWeight)
	}
	if len(r.Factors) == 0 {
		return fmt.Errorf("no factors defined")
	}
	for _, f := range r.Factors {
		if err := validateFactorSpec(f); err != nil {
			return fmt.Errorf("factor %q: %w", f.Key, err)
		}
	}
	return nil
}

func validateSeriesRef(ref SeriesRef) error {
	switch ref.Provider {
	case ProviderFRED, ProviderBLS, ProviderBEA:
	default:
		return fmt.Errorf("unknown provider %q", ref.Provider)
	}
	if ref.SeriesID == "" {
		return fmt.Errorf("missing series_id")
	}
	return nil
}

func validateFactorSpec(f FactorSpec) error {
	if f.Key == "" {
		return fmt.Errorf("missing key")
	}
	if err := validateSeriesRef(SeriesRef{Provider: f.Provider, SeriesID: f.SeriesID}); err != nil {
		return err
	}
	if _, err := ParseBaselineRule(f.Baseline); err != nil {
		return err
	}
	switch f.ScaleMode {
	case ScaleFixed:
		if f.Scale == 0 {
			return fmt.Errorf("scale_mode fixed requires a non-zero scale")
		}
	case ScaleBaseline:
	case ScaleTrailingStddev:
		if f.ScaleWindow < 2 {
			return fmt.Errorf("scale_mode trailing_stddev requires scale_window >= 2")
		}
	default:
		return fmt.Errorf("unknown scale_mode %q", f.ScaleMode)
	}
	if f.Coefficient == 0 {
		return fmt.Errorf("coefficient must be explicit and non-zero")
	}
	return nil
}

// ParseBaselineRule parses a baseline directive: "latest_prior" or
// "trailing_mean:N" with N >= 2.
func ParseBaselineRule(s string) (BaselineRule, error) {
	if s == BaselineLatestPrior {
		return BaselineRule{Kind: BaselineLatestPrior}, nil
	}
	if rest, ok := strings.CutPrefix(s, BaselineTrailingMean+":"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 2 {
			return BaselineRule{}, fmt.Errorf("invalid trailing_mean window %q", rest)
		}
		return BaselineRule{Kind: BaselineTrailingMean, Window: n}, nil
	}
	return BaselineRule{}, fmt.Errorf("unknown baseline rule %q", s)
}

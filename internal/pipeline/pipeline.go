// Package pipeline wires one forecast run end to end: fetch every series the
// registry references (concurrently; the engine itself stays synchronous),
// build factors, compute the forecast and confidence, and assemble a
// serializable run record.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/macrolabs/laborcast/internal/engine"
	"github.com/macrolabs/laborcast/internal/observe"
	"github.com/macrolabs/laborcast/internal/registry"
	"github.com/macrolabs/laborcast/models"
)

// SchemaVersion tags run records so historical snapshots stay comparable as
// factor definitions evolve.
const SchemaVersion = "1"

// Clients maps registry provider names to their series clients.
type Clients map[string]models.SeriesClient

// Options configures a Pipeline.
type Options struct {
	Registry *registry.Registry
	Clients  Clients
	// ObservationLimit is how many recent observations to request per
	// series. Zero means DefaultObservationLimit.
	ObservationLimit int
	// MaxAbsAdjustment is passed through to the engine; zero disables
	// clipping.
	MaxAbsAdjustment float64
}

// DefaultObservationLimit covers the largest baseline and stddev windows in
// the shipped registries with room to spare.
const DefaultObservationLimit = 24

// Pipeline runs forecasts for one registry version.
type Pipeline struct {
	reg     *registry.Registry
	clients Clients
	eng     *engine.Engine
	limit   int
	logger  zerolog.Logger

	now   func() time.Time
	newID func() string
}

// New creates a Pipeline for the given registry and clients.
func New(opts Options) *Pipeline {
	limit := opts.ObservationLimit
	if limit == 0 {
		limit = DefaultObservationLimit
	}
	return &Pipeline{
		reg:     opts.Registry,
		clients: opts.Clients,
		eng: engine.New(engine.Options{
			WeightBudget:     opts.Registry.WeightBudget,
			MaxAbsAdjustment: opts.MaxAbsAdjustment,
		}),
		limit:  limit,
		logger: log.With().Str("component", "pipeline").Str("registry", opts.Registry.Version).Logger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Run fetches observations and computes one forecast.
func (p *Pipeline) Run(ctx context.Context) (*models.RunRecord, error) {
	obs, err := p.FetchObservations(ctx)
	if err != nil {
		return nil, err
	}
	return p.ComputeFrom(obs)
}

// seriesKey identifies one series across providers. BEA series IDs contain
// colons, so the separator is a slash.
func seriesKey(provider, seriesID string) string {
	return provider + "/" + seriesID
}

// FetchObservations fetches every series the registry references, in
// parallel. It is separate from ComputeFrom so that two registry versions can
// be computed over the same fetched observations.
func (p *Pipeline) FetchObservations(ctx context.Context) (map[string][]models.Observation, error) {
	refs := map[string]registry.SeriesRef{}
	add := func(ref registry.SeriesRef) {
		refs[seriesKey(ref.Provider, ref.SeriesID)] = ref
	}
	add(p.reg.BaseRate)
	for _, f := range p.reg.Factors {
		add(registry.SeriesRef{Provider: f.Provider, SeriesID: f.SeriesID})
	}

	out := make(map[string][]models.Observation, len(refs))
	var wg sync.WaitGroup
	var mu sync.Mutex
	errCh := make(chan error, len(refs))

	for key, ref := range refs {
		client, ok := p.clients[ref.Provider]
		if !ok {
			return nil, fmt.Errorf("no client configured for provider %q", ref.Provider)
		}
		wg.Add(1)
		go func(key string, ref registry.SeriesRef, client models.SeriesClient) {
			defer wg.Done()
			obs, err := client.FetchSeries(ctx, ref.SeriesID, p.limit)
			if err != nil {
				errCh <- fmt.Errorf("fetching %s: %w", key, err)
				return
			}
			mu.Lock()
			out[key] = obs
			mu.Unlock()
		}(key, ref, client)
	}

	wg.Wait()
	close(errCh)
	if len(errCh) > 0 {
		return nil, <-errCh
	}

	p.logger.Debug().Int("series", len(out)).Msg("Fetched all registry series")
	return out, nil
}

// ComputeFrom builds factors from fetched observations and computes the
// forecast. Factor order follows the registry, so adjustment breakdowns are
// stable across runs.
func (p *Pipeline) ComputeFrom(obs map[string][]models.Observation) (*models.RunRecord, error) {
	baseObs, ok := obs[seriesKey(p.reg.BaseRate.Provider, p.reg.BaseRate.SeriesID)]
	if !ok {
		return nil, fmt.Errorf("missing observations for base rate series %s", p.reg.BaseRate.SeriesID)
	}
	baseRate, err := observe.LatestValue("base_rate", baseObs)
	if err != nil {
		return nil, err
	}

	factors := make([]engine.Factor, 0, len(p.reg.Factors))
	for _, spec := range p.reg.Factors {
		series, ok := obs[seriesKey(spec.Provider, spec.SeriesID)]
		if !ok {
			return nil, fmt.Errorf("missing observations for factor %q", spec.Key)
		}
		f, err := observe.BuildFactor(spec, series)
		if err != nil {
			return nil, err
		}
		factors = append(factors, f)
	}

	result, err := p.eng.ComputeForecast(baseRate, factors)
	if err != nil {
		return nil, err
	}

	components := make(map[string]engine.ConfidenceComponent, len(p.reg.Confidence.Components))
	for name, c := range p.reg.Confidence.Components {
		components[name] = engine.ConfidenceComponent{Value: c.Value, Weight: c.Weight}
	}
	boosts := make([]engine.Boost, 0, len(p.reg.Confidence.Boosts))
	for _, b := range p.reg.Confidence.Boosts {
		boosts = append(boosts, engine.Boost{Name: b.Name, Value: b.Value})
	}
	confidence := engine.ComputeConfidence(p.reg.Confidence.Base, components, boosts, p.reg.Confidence.Cap)

	rec := p.assembleRecord(factors, result, confidence)
	p.logger.Info().
		Float64("base_rate", rec.BaseRate).
		Float64("final_value", rec.FinalValue).
		Float64("confidence", rec.Confidence).
		Msg("Forecast computed")
	return rec, nil
}

func (p *Pipeline) assembleRecord(factors []engine.Factor, result *engine.ForecastResult, confidence float64) *models.RunRecord {
	inputs := make([]models.FactorInput, 0, len(factors))
	for _, f := range factors {
		inputs = append(inputs, models.FactorInput{
			Key:         f.Key,
			Category:    string(f.Category),
			Weight:      f.Weight,
			RawValue:    f.RawValue,
			Baseline:    f.Baseline,
			Scale:       f.Scale,
			Coefficient: f.Coefficient,
		})
	}
	adjustments := make([]models.FactorAdjustment, 0, len(result.Adjustments))
	for _, a := range result.Adjustments {
		adjustments = append(adjustments, models.FactorAdjustment{Key: a.Key, Value: a.Value})
	}
	return &models.RunRecord{
		RunID:           p.newID(),
		SchemaVersion:   SchemaVersion,
		CreatedAt:       p.now().UTC(),
		RegistryVersion: p.reg.Version,
		BaseRate:        result.BaseRate,
		Factors:         inputs,
		Adjustments:     adjustments,
		TotalAdjustment: result.TotalAdjustment,
		FinalValue:      result.FinalValue,
		Confidence:      confidence,
	}
}

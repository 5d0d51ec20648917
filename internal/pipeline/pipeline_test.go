package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/macrolabs/laborcast/internal/registry"
	"github.com/macrolabs/laborcast/models"
)

type fakeClient struct {
	series map[string][]float64
	err    error

	mu    sync.Mutex
	calls int
}

func (f *fakeClient) FetchSeries(_ context.Context, seriesID string, _ int) ([]models.Observation, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	values, ok := f.series[seriesID]
	if !ok {
		return nil, fmt.Errorf("unknown series %s", seriesID)
	}
	obs := make([]models.Observation, len(values))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		obs[i] = models.Observation{Date: base.AddDate(0, i, 0), Value: v}
	}
	return obs, nil
}

func testRegistry() *registry.Registry {
	return &registry.Registry{
		Version:      "test-v1",
		WeightBudget: 1.0,
		BaseRate:     registry.SeriesRef{Provider: "fred", SeriesID: "UNRATE"},
		Confidence: registry.ConfidenceSpec{
			Base: 70,
			Cap:  95,
			Components: map[string]registry.ComponentSpec{
				"data_quality": {Value: 85, Weight: 0.25},
			},
		},
		Factors: []registry.FactorSpec{
			{
				Key: "lfpr", Category: "core_labor", Weight: 0.35,
				Provider: "fred", SeriesID: "CIVPART",
				Baseline: "latest_prior", ScaleMode: registry.ScaleFixed, Scale: 0.8,
				Coefficient: -0.15,
			},
			{
				Key: "initial_claims", Category: "core_labor", Weight: 0.65,
				Provider: "fred", SeriesID: "ICSA",
				Baseline: "latest_prior", ScaleMode: registry.ScaleFixed, Scale: 15000,
				Coefficient: 0.08,
			},
		},
	}
}

func testClients() Clients {
	return Clients{
		"fred": &fakeClient{series: map[string][]float64{
			"UNRATE":  {4.1, 4.2},
			"CIVPART": {63.2, 62.8},
			"ICSA":    {220000, 220000},
		}},
	}
}

func TestRun(t *testing.T) {
	p := New(Options{Registry: testRegistry(), Clients: testClients()})
	rec, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rec.BaseRate != 4.2 {
		t.Errorf("BaseRate = %v, want 4.2", rec.BaseRate)
	}
	// lfpr contributes 0.02625, initial_claims sits on its baseline.
	if math.Abs(rec.FinalValue-4.22625) > 1e-9 {
		t.Errorf("FinalValue = %v, want 4.22625", rec.FinalValue)
	}
	if math.Abs(rec.Confidence-91.25) > 1e-9 {
		t.Errorf("Confidence = %v, want 91.25", rec.Confidence)
	}
	if rec.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %q, want %q", rec.SchemaVersion, SchemaVersion)
	}
	if rec.RegistryVersion != "test-v1" {
		t.Errorf("RegistryVersion = %q, want test-v1", rec.RegistryVersion)
	}
	if rec.RunID == "" {
		t.Error("RunID is empty")
	}

	// Adjustment order follows the registry.
	if len(rec.Adjustments) != 2 {
		t.Fatalf("got %d adjustments, want 2", len(rec.Adjustments))
	}
	if rec.Adjustments[0].Key != "lfpr" || rec.Adjustments[1].Key != "initial_claims" {
		t.Errorf("adjustment order = %s, %s", rec.Adjustments[0].Key, rec.Adjustments[1].Key)
	}
}

func TestRunDeterministic(t *testing.T) {
	p := New(Options{Registry: testRegistry(), Clients: testClients()})
	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if first.FinalValue != second.FinalValue || first.TotalAdjustment != second.TotalAdjustment {
		t.Errorf("runs differ: %v vs %v", first.FinalValue, second.FinalValue)
	}
}

func TestRunFetchFailure(t *testing.T) {
	clients := Clients{"fred": &fakeClient{err: errors.New("upstream down")}}
	p := New(Options{Registry: testRegistry(), Clients: clients})
	if _, err := p.Run(context.Background()); err == nil {
		t.Error("expected fetch error to abort the run")
	}
}

func TestRunMissingProvider(t *testing.T) {
	reg := testRegistry()
	reg.Factors[1].Provider = "bls"
	p := New(Options{Registry: reg, Clients: testClients()})
	if _, err := p.Run(context.Background()); err == nil {
		t.Error("expected error for unconfigured provider")
	}
}

func TestRunWeightBudgetViolation(t *testing.T) {
	reg := testRegistry()
	reg.Factors[0].Weight = 0.95 // sum now 1.6 against budget 1.0
	p := New(Options{Registry: reg, Clients: testClients()})
	if _, err := p.Run(context.Background()); err == nil {
		t.Error("expected ConfigurationError for weight budget violation")
	}
}

func TestSharedObservationsAcrossRegistries(t *testing.T) {
	fake := &fakeClient{series: map[string][]float64{
		"UNRATE":  {4.1, 4.2},
		"CIVPART": {63.2, 62.8},
		"ICSA":    {220000, 220000},
	}}
	cached := NewCachedClient(fake)
	clients := Clients{"fred": cached}

	regA := testRegistry()
	regB := testRegistry()
	regB.Version = "test-v2"
	regB.Factors[0].Weight = 0.5
	regB.Factors[1].Weight = 0.5

	pa := New(Options{Registry: regA, Clients: clients})
	pb := New(Options{Registry: regB, Clients: clients})

	if _, err := pa.Run(context.Background()); err != nil {
		t.Fatalf("run A: %v", err)
	}
	if _, err := pb.Run(context.Background()); err != nil {
		t.Fatalf("run B: %v", err)
	}

	// Three distinct series, fetched once each despite two runs.
	if fake.calls != 3 {
		t.Errorf("upstream calls = %d, want 3", fake.calls)
	}
}

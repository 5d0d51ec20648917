package engine

import "testing"

func TestComputeConfidenceBelowCap(t *testing.T) {
	components := map[string]ConfidenceComponent{
		"data_quality": {Value: 85, Weight: 0.25},
	}
	got := ComputeConfidence(70, components, nil, 95)
	if !almostEqual(got, 91.25) {
		t.Errorf("ComputeConfidence() = %v, want 91.25", got)
	}
}

func TestComputeConfidenceClippedToCap(t *testing.T) {
	components := map[string]ConfidenceComponent{
		"data_quality": {Value: 85, Weight: 0.25},
	}
	got := ComputeConfidence(90, components, nil, 95)
	if got != 95 {
		t.Errorf("ComputeConfidence() = %v, want 95", got)
	}
}

func TestComputeConfidenceBoosts(t *testing.T) {
	components := map[string]ConfidenceComponent{
		"data_quality": {Value: 80, Weight: 0.20},
	}
	boosts := []Boost{
		{Name: "leading_indicators_boost", Value: 4},
		{Name: "breadth_boost", Value: 2},
	}
	got := ComputeConfidence(60, components, boosts, 95)
	if !almostEqual(got, 82) {
		t.Errorf("ComputeConfidence() = %v, want 82", got)
	}
}

func TestComputeConfidenceMonotonic(t *testing.T) {
	// Raising any single component never lowers the score; past the cap it
	// stays pinned at the cap.
	boosts := []Boost{{Name: "boost", Value: 3}}
	prev := 0.0
	for v := 0.0; v <= 200; v += 5 {
		components := map[string]ConfidenceComponent{
			"data_quality":    {Value: v, Weight: 0.25},
			"model_agreement": {Value: 70, Weight: 0.20},
		}
		got := ComputeConfidence(40, components, boosts, 95)
		if got < prev {
			t.Fatalf("confidence decreased from %v to %v at component value %v", prev, got, v)
		}
		if got > 95 {
			t.Fatalf("confidence %v exceeds cap at component value %v", got, v)
		}
		prev = got
	}
	if prev != 95 {
		t.Errorf("confidence never reached cap, final %v", prev)
	}
}

func TestComputeConfidenceFloor(t *testing.T) {
	components := map[string]ConfidenceComponent{
		"penalty": {Value: -500, Weight: 0.5},
	}
	got := ComputeConfidence(10, components, nil, 95)
	if got != 0 {
		t.Errorf("ComputeConfidence() = %v, want floor 0", got)
	}
}

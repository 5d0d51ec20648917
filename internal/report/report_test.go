package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/macrolabs/laborcast/models"
)

func testRecord(version string, final float64) *models.RunRecord {
	return &models.RunRecord{
		RunID:           "7ad9f3c2-0000-0000-0000-000000000000",
		SchemaVersion:   "1",
		CreatedAt:       time.Date(2025, 8, 1, 12, 30, 0, 0, time.UTC),
		RegistryVersion: version,
		BaseRate:        4.2,
		Factors: []models.FactorInput{
			{Key: "lfpr", Category: "core_labor", Weight: 0.35, RawValue: 62.8, Baseline: 63.2, Scale: 0.8, Coefficient: -0.15},
			{Key: "initial_claims", Category: "core_labor", Weight: 0.65, RawValue: 232000, Baseline: 225000, Scale: 15000, Coefficient: 0.08},
		},
		Adjustments: []models.FactorAdjustment{
			{Key: "lfpr", Value: 0.02625},
			{Key: "initial_claims", Value: 0.02427},
		},
		TotalAdjustment: 0.05052,
		FinalValue:      final,
		Confidence:      91.25,
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, testRecord("v3", 4.25))
	out := buf.String()

	for _, want := range []string{
		"registry v3",
		"Base rate (last observed):   4.20%",
		"lfpr",
		"core_labor",
		"+0.0262",
		"initial_claims",
		"Total adjustment",
		"Forecast:    4.25%",
		"Confidence:  91.2%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestPrintComparison(t *testing.T) {
	left := testRecord("v2", 4.24)
	right := testRecord("v3", 4.25)
	right.Adjustments = append(right.Adjustments, models.FactorAdjustment{Key: "jolts_openings", Value: -0.0100})

	var buf bytes.Buffer
	PrintComparison(&buf, left, right)
	out := buf.String()

	for _, want := range []string{
		"v2 vs v3",
		"jolts_openings",
		"n/a", // factor only present on the right
		"Spread",
		"+0.0100 pp",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("comparison missing %q:\n%s", want, out)
		}
	}
}

package snapshot

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrolabs/laborcast/models"
)

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	rec := &models.RunRecord{
		RunID:           "run-1",
		SchemaVersion:   "1",
		CreatedAt:       time.Date(2025, 8, 1, 12, 30, 0, 0, time.UTC),
		RegistryVersion: "v3",
		BaseRate:        4.2,
		Factors: []models.FactorInput{
			{Key: "lfpr", Category: "core_labor", Weight: 0.35, RawValue: 62.8, Baseline: 63.2, Scale: 0.8, Coefficient: -0.15},
		},
		Adjustments:     []models.FactorAdjustment{{Key: "lfpr", Value: 0.02625}},
		TotalAdjustment: 0.02625,
		FinalValue:      4.22625,
		Confidence:      91.25,
	}

	path, err := w.Write(rec)
	require.NoError(t, err)
	assert.Equal(t, "forecast_v3_20250801T123000Z.json", filepath.Base(path))
	assert.True(t, strings.HasPrefix(path, dir))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestNewWriterCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")
	_, err := NewWriter(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

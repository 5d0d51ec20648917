package models

import (
	"time"
)

// Observation is a single dated value from an upstream statistical series.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// FactorInput records the fully resolved inputs of one factor as they were
// handed to the forecast engine. Kept alongside the result so historical runs
// stay comparable as registry versions evolve.
type FactorInput struct {
	Key         string  `json:"key"`
	Category    string  `json:"category"`
	Weight      float64 `json:"weight"`
	RawValue    float64 `json:"raw_value"`
	Baseline    float64 `json:"baseline"`
	Scale       float64 `json:"scale"`
	Coefficient float64 `json:"coefficient"`
}

// FactorAdjustment is one factor's signed percentage-point contribution.
type FactorAdjustment struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// RunRecord is the serializable record of one complete forecast run.
type RunRecord struct {
	RunID           string             `json:"run_id"`
	SchemaVersion   string             `json:"schema_version"`
	CreatedAt       time.Time          `json:"created_at"`
	RegistryVersion string             `json:"registry_version"`
	BaseRate        float64            `json:"base_rate"`
	Factors         []FactorInput      `json:"factors"`
	Adjustments     []FactorAdjustment `json:"adjustments"`
	TotalAdjustment float64            `json:"total_adjustment"`
	FinalValue      float64            `json:"final_value"`
	Confidence      float64            `json:"confidence"`
}

// RunSummary is the condensed view of a stored run, as listed from history.
type RunSummary struct {
	RunID           string    `json:"run_id"`
	CreatedAt       time.Time `json:"created_at"`
	RegistryVersion string    `json:"registry_version"`
	BaseRate        float64   `json:"base_rate"`
	FinalValue      float64   `json:"final_value"`
	Confidence      float64   `json:"confidence"`
}

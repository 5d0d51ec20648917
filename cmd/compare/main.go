// Command compare runs two registry versions over the same fetched
// observations and prints their forecasts side by side, so a registry change
// can be judged before it becomes the default.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/macrolabs/laborcast/internal/config"
	"github.com/macrolabs/laborcast/internal/pipeline"
	"github.com/macrolabs/laborcast/internal/registry"
	"github.com/macrolabs/laborcast/internal/report"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	left, err := registry.Load(cfg.CompareRegistryPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CompareRegistryPath).Msg("Failed to load comparison registry")
	}
	right, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.RegistryPath).Msg("Failed to load factor registry")
	}
	log.Info().Str("left", left.Version).Str("right", right.Version).Msg("Comparing registries")

	// The clients memoize fetches, so both computations see identical
	// observations and each upstream series is hit once.
	clients := pipeline.NewAPIClients(pipeline.APIClientOptions{
		FredAPIKey:     cfg.FredAPIKey,
		BLSAPIKey:      cfg.BLSAPIKey,
		BEAAPIKey:      cfg.BEAAPIKey,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.RequestsPerSec,
	})

	leftRec, err := pipeline.New(pipeline.Options{
		Registry:         left,
		Clients:          clients,
		ObservationLimit: cfg.ObservationLimit,
		MaxAbsAdjustment: cfg.MaxAbsAdjustment,
	}).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("registry", left.Version).Msg("Forecast run failed")
	}

	rightRec, err := pipeline.New(pipeline.Options{
		Registry:         right,
		Clients:          clients,
		ObservationLimit: cfg.ObservationLimit,
		MaxAbsAdjustment: cfg.MaxAbsAdjustment,
	}).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("registry", right.Version).Msg("Forecast run failed")
	}

	report.PrintComparison(os.Stdout, leftRec, rightRec)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output).Level(lvl)
}

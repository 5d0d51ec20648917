package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/macrolabs/laborcast/internal/config"
	"github.com/macrolabs/laborcast/internal/database"
	"github.com/macrolabs/laborcast/internal/notify"
	"github.com/macrolabs/laborcast/internal/pipeline"
	"github.com/macrolabs/laborcast/internal/registry"
	"github.com/macrolabs/laborcast/internal/report"
	"github.com/macrolabs/laborcast/internal/snapshot"
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
	setupSignalHandling(cancel)

	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.RegistryPath).Msg("Failed to load factor registry")
	}
	log.Info().Str("registry", reg.Version).Int("factors", len(reg.Factors)).Msg("Registry loaded")

	clients := pipeline.NewAPIClients(pipeline.APIClientOptions{
		FredAPIKey:     cfg.FredAPIKey,
		BLSAPIKey:      cfg.BLSAPIKey,
		BEAAPIKey:      cfg.BEAAPIKey,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.RequestsPerSec,
	})

	p := pipeline.New(pipeline.Options{
		Registry:         reg,
		Clients:          clients,
		ObservationLimit: cfg.ObservationLimit,
		MaxAbsAdjustment: cfg.MaxAbsAdjustment,
	})

	rec, err := p.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Forecast run failed")
	}

	report.Print(os.Stdout, rec)

	if cfg.SnapshotEnabled {
		writer, err := snapshot.NewWriter(cfg.SnapshotDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare snapshot directory")
		}
		path, err := writer.Write(rec)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to write snapshot")
		}
		log.Info().Str("path", path).Msg("Snapshot written")
	}

	if cfg.HistoryEnabled() {
		db, err := database.New(database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to run history database")
		}
		defer db.Close()
		if err := db.SaveRun(rec); err != nil {
			log.Fatal().Err(err).Msg("Failed to store run")
		}
		log.Info().Str("run_id", rec.RunID).Msg("Run stored in history")
	}

	if cfg.TelegramEnabled() {
		notifier, err := notify.New(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create telegram notifier")
		}
		if err := notifier.SendRunSummary(rec); err != nil {
			log.Error().Err(err).Msg("Failed to send telegram summary")
		}
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output).Level(lvl)
}

func setupSignalHandling(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Warn().Str("signal", sig.String()).Msg("Shutting down")
		cancel()
	}()
}

package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration. Credentials come from the
// environment only; they never appear in registry files or code.
type Config struct {
	FredAPIKey string
	BLSAPIKey  string
	BEAAPIKey  string

	RegistryPath        string
	CompareRegistryPath string
	ObservationLimit    int
	MaxAbsAdjustment    float64 // 0 disables clipping

	SnapshotDir     string
	SnapshotEnabled bool

	// Postgres run history, enabled when DBHost is set.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Telegram summary, enabled when both token and chat id are set.
	TelegramBotToken string
	TelegramChatID   int64

	LogLevel       string
	RequestTimeout int // seconds
	RequestsPerSec int
}

// Load initializes configuration from environment variables. The commands
// load .env into the environment before calling this.
func Load() (*Config, error) {
	var cfg Config

	cfg.FredAPIKey = os.Getenv("FRED_API_KEY")
	cfg.BLSAPIKey = os.Getenv("BLS_API_KEY")
	cfg.BEAAPIKey = os.Getenv("BEA_API_KEY")

	cfg.RegistryPath = getEnvWithDefault("REGISTRY_PATH", "configs/registry/v3.yaml")
	cfg.CompareRegistryPath = getEnvWithDefault("COMPARE_REGISTRY_PATH", "configs/registry/v2.yaml")
	cfg.ObservationLimit = getEnvIntWithDefault("OBSERVATION_LIMIT", 24)
	cfg.MaxAbsAdjustment = getEnvFloatWithDefault("MAX_ABS_ADJUSTMENT", 0)

	cfg.SnapshotDir = getEnvWithDefault("SNAPSHOT_DIR", "data/snapshots")
	cfg.SnapshotEnabled = getEnvBoolWithDefault("SNAPSHOT_ENABLED", true)

	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = getEnvWithDefault("DB_USER", "laborcast")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "laborcast")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 2)

	return &cfg, nil
}

// HistoryEnabled reports whether the postgres run-history store is configured.
func (c *Config) HistoryEnabled() bool {
	return c.DBHost != ""
}

// TelegramEnabled reports whether the telegram notifier is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

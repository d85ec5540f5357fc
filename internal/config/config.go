package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment       string
	AppName           string
	Port              string
	LogLevel          slog.Level
	SQLitePath        string
	MigrationsPath    string
	SitesPath         string
	HTTPTimeout       time.Duration
	UserAgent         string
	RequestsPerSecond float64
	HealthPollEnabled bool
	HealthPollMinutes int
	NotifyWebhookURL  string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:       getEnv("APP_ENV", "development"),
		AppName:           getEnv("APP_NAME", "manga-site-adapters"),
		Port:              getEnv("APP_PORT", "8080"),
		SQLitePath:        getEnv("SQLITE_PATH", "./data/app.sqlite"),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "./migrations"),
		SitesPath:         getEnv("SITES_PATH", "./sites"),
		HTTPTimeout:       time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 12)) * time.Second,
		UserAgent:         strings.TrimSpace(getEnv("HTTP_USER_AGENT", "")),
		RequestsPerSecond: getEnvAsFloat("REQUESTS_PER_SECOND", 2),
		HealthPollEnabled: getEnvAsBool("HEALTH_POLL_ENABLED", true),
		HealthPollMinutes: getEnvAsInt("HEALTH_POLL_MINUTES", 30),
		NotifyWebhookURL:  strings.TrimSpace(getEnv("NOTIFY_WEBHOOK_URL", "")),
	}

	if cfg.HealthPollMinutes <= 0 {
		cfg.HealthPollMinutes = 30
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 12 * time.Second
	}
	if cfg.RequestsPerSecond < 0 {
		cfg.RequestsPerSecond = 0
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "INFO"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q, expected DEBUG|INFO|WARN|ERROR", raw)
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

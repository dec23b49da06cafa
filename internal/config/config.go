package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the command service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	// CommandFile is the alias/settings document, hot-reloaded on change.
	CommandFile string

	// Task store backends. DatabaseURL wins when both are set.
	DatabaseURL string
	SQLitePath  string

	// QueueCapacity bounds the scheduler submission queue.
	QueueCapacity int

	// TaskRetention is how long terminal task records are kept before the
	// janitor evicts them. Zero disables eviction.
	TaskRetention   time.Duration
	JanitorInterval time.Duration

	AllowAnyOrigin bool
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "deskmate"),
		CommandFile:      envOrDefault("APP_COMMAND_FILE", "deskmate.yaml"),
		DatabaseURL:      envTrimmed("DATABASE_URL"),
		SQLitePath:       envTrimmed("SQLITE_PATH"),
		QueueCapacity:    64,
		ShutdownTimeout:  15 * time.Second,
		TaskRetention:    30 * time.Minute,
		JanitorInterval:  30 * time.Second,
		AllowAnyOrigin:   false,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TaskRetention, err = durationFromEnv("APP_TASK_RETENTION", cfg.TaskRetention)
	if err != nil {
		return Config{}, err
	}
	cfg.JanitorInterval, err = durationFromEnv("APP_JANITOR_INTERVAL", cfg.JanitorInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.QueueCapacity, err = intFromEnv("APP_QUEUE_CAPACITY", cfg.QueueCapacity)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.QueueCapacity <= 0 {
		return Config{}, fmt.Errorf("APP_QUEUE_CAPACITY must be positive")
	}
	if cfg.TaskRetention < 0 {
		return Config{}, fmt.Errorf("APP_TASK_RETENTION must be >= 0")
	}
	if cfg.JanitorInterval <= 0 {
		return Config{}, fmt.Errorf("APP_JANITOR_INTERVAL must be positive")
	}
	if strings.TrimSpace(cfg.CommandFile) == "" {
		return Config{}, fmt.Errorf("APP_COMMAND_FILE must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}

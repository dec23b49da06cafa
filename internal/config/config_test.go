package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_BIND_ADDR", "APP_METRICS_NAMESPACE", "APP_COMMAND_FILE",
		"DATABASE_URL", "SQLITE_PATH", "APP_SHUTDOWN_TIMEOUT",
		"APP_TASK_RETENTION", "APP_JANITOR_INTERVAL", "APP_QUEUE_CAPACITY",
		"APP_ALLOW_ANY_ORIGIN",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want :8080", cfg.BindAddr)
	}
	if cfg.CommandFile != "deskmate.yaml" {
		t.Fatalf("CommandFile = %q, want deskmate.yaml", cfg.CommandFile)
	}
	if cfg.QueueCapacity != 64 {
		t.Fatalf("QueueCapacity = %d, want 64", cfg.QueueCapacity)
	}
	if cfg.TaskRetention != 30*time.Minute {
		t.Fatalf("TaskRetention = %v, want 30m", cfg.TaskRetention)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_BIND_ADDR", "127.0.0.1:9999")
	t.Setenv("APP_QUEUE_CAPACITY", "8")
	t.Setenv("APP_TASK_RETENTION", "5m")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BindAddr != "127.0.0.1:9999" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.QueueCapacity != 8 {
		t.Fatalf("QueueCapacity = %d, want 8", cfg.QueueCapacity)
	}
	if cfg.TaskRetention != 5*time.Minute {
		t.Fatalf("TaskRetention = %v, want 5m", cfg.TaskRetention)
	}
	if !cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin = false, want true")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("APP_QUEUE_CAPACITY", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("Load should reject a zero queue capacity")
	}

	t.Setenv("APP_QUEUE_CAPACITY", "64")
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("Load should reject an unparseable duration")
	}
}

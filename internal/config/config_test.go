package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.DB != "zbirka.sqlite3" {
		t.Fatalf("unexpected DB %q", cfg.DB)
	}
	if cfg.Addr != "127.0.0.1:3456" {
		t.Fatalf("unexpected Addr %q", cfg.Addr)
	}
	if got := cfg.MaxUploadBytes(); got != 50<<20 {
		t.Fatalf("expected 50 MiB upload limit, got %d", got)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("expected 5s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ZBIRKA_DB", "/tmp/catalog.db")
	t.Setenv("ZBIRKA_ADDR", ":9000")
	t.Setenv("ZBIRKA_LOG_LEVEL", "debug")
	t.Setenv("ZBIRKA_MAX_UPLOAD_MB", "5")
	t.Setenv("ZBIRKA_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("ZBIRKA_SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.DB != "/tmp/catalog.db" || cfg.Addr != ":9000" {
		t.Fatalf("unexpected DB/Addr %q %q", cfg.DB, cfg.Addr)
	}
	if got := cfg.MaxUploadBytes(); got != 5<<20 {
		t.Fatalf("expected 5 MiB upload limit, got %d", got)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Fatalf("expected 30s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}

	level, err := cfg.Level()
	if err != nil || level != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v (%v)", level, err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"ZBIRKA_MAX_UPLOAD_MB", "0"},
		{"ZBIRKA_MAX_UPLOAD_MB", "lots"},
		{"ZBIRKA_SHUTDOWN_TIMEOUT", "-1s"},
		{"ZBIRKA_LOG_LEVEL", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

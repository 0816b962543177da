package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	cfg := LoadConfig()

	if cfg.AppPort != "" {
		t.Errorf("expected explicit empty APP_PORT to win, got %q", cfg.AppPort)
	}
	if cfg.DBTimeout != 5*time.Second {
		t.Errorf("expected default DB timeout 5s, got %s", cfg.DBTimeout)
	}
	if cfg.RateLimitRequests != 100 {
		t.Errorf("expected 100 requests per window, got %d", cfg.RateLimitRequests)
	}
	if len(cfg.CORSOrigins) != 3 {
		t.Errorf("expected 3 default CORS origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_TIMEOUT", "250ms")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("CORS_ORIGINS", "https://memora.example, https://staging.memora.example ,")
	t.Setenv("RATE_LIMIT_WRITES", "not-a-number")

	cfg := LoadConfig()
	if cfg.DBTimeout != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.DBTimeout)
	}
	if cfg.RedisEnabled {
		t.Error("expected redis to be disabled")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://staging.memora.example" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.RateLimitWrites != 30 {
		t.Errorf("expected fallback 30 for malformed value, got %d", cfg.RateLimitWrites)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "memora", DBPort: "5433"}
	want := "host=db user=u password=p dbname=memora port=5433 sslmode=disable TimeZone=UTC"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	cfg.DatabaseURL = "postgres://x@y/z"
	if got := cfg.DSN(); got != "postgres://x@y/z" {
		t.Errorf("expected DATABASE_URL to win, got %q", got)
	}
}

package config

import (
	"testing"
	"time"
)

func setRequiredServerEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/fleet?sslmode=disable")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("ADMIN_EMAIL", "ops@example.com")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
}

func TestLoadServerDefaults(t *testing.T) {
	setRequiredServerEnv(t)

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.ProbeTimeout != 5*time.Second {
		t.Fatalf("ProbeTimeout = %v, want 5s", cfg.ProbeTimeout)
	}
	if cfg.RolloverInterval != time.Minute || !cfg.RolloverEnabled {
		t.Fatalf("unexpected rollover defaults: %+v", cfg)
	}
	if cfg.StatsTimezone != "Asia/Seoul" {
		t.Fatalf("StatsTimezone = %q, want Asia/Seoul", cfg.StatsTimezone)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("SessionTTL = %v, want 12h", cfg.SessionTTL)
	}
}

func TestLoadServerRequiresSecrets(t *testing.T) {
	for _, key := range []string{"POSTGRES_DSN", "SESSION_SECRET", "ADMIN_EMAIL", "ADMIN_PASSWORD"} {
		t.Run(key, func(t *testing.T) {
			setRequiredServerEnv(t)
			t.Setenv(key, "")
			if _, err := LoadServer(); err == nil {
				t.Fatalf("LoadServer() expected error when %s is empty", key)
			}
		})
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	setRequiredServerEnv(t)
	t.Setenv("PROBE_TIMEOUT", "2s")
	t.Setenv("ROLLOVER_ENABLED", "false")
	t.Setenv("REALTIME_BUFFER", "64")
	t.Setenv("STATS_TIMEZONE", "UTC")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.ProbeTimeout != 2*time.Second {
		t.Fatalf("ProbeTimeout = %v, want 2s", cfg.ProbeTimeout)
	}
	if cfg.RolloverEnabled {
		t.Fatal("RolloverEnabled = true, want false")
	}
	if cfg.RealtimeBuffer != 64 || cfg.StatsTimezone != "UTC" {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}

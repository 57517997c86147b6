package config

import (
	"testing"
	"time"
)

func TestLoadMonitorDefaults(t *testing.T) {
	cfg, err := LoadMonitor()
	if err != nil {
		t.Fatalf("LoadMonitor() error = %v", err)
	}
	if cfg.ServerURL != "http://localhost:8080" {
		t.Fatalf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.Interval != time.Minute || cfg.MarkerPath != "rollover.db" {
		t.Fatalf("unexpected monitor defaults: %+v", cfg)
	}
}

func TestLoadMonitorOverrides(t *testing.T) {
	t.Setenv("FLEET_SERVER_URL", "http://fleet:9000")
	t.Setenv("ROLLOVER_INTERVAL", "30s")
	t.Setenv("ADMIN_EMAIL", "ops@example.com")

	cfg, err := LoadMonitor()
	if err != nil {
		t.Fatalf("LoadMonitor() error = %v", err)
	}
	if cfg.ServerURL != "http://fleet:9000" || cfg.Interval != 30*time.Second || cfg.AdminEmail != "ops@example.com" {
		t.Fatalf("unexpected monitor config: %+v", cfg)
	}
}

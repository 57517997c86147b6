package logging

import (
	"os"
	"path/filepath"
	"testing"

	"fleet-monitor/internal/config"

	"github.com/rs/zerolog/log"
)

func TestInitTeesIntoLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.log")
	Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1})
	t.Cleanup(func() { Init(config.LogConfig{Level: "info"}) })

	log.Info().Str("agent_id", "a1").Msg("heartbeat")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("expected log file to contain the entry")
	}
}

func TestNewRotatingFileDefaults(t *testing.T) {
	l := newRotatingFile(filepath.Join(t.TempDir(), "x.log"), 0, -1)
	if l.MaxSize != 10 {
		t.Fatalf("MaxSize = %d, want 10", l.MaxSize)
	}
	if l.MaxBackups != 0 {
		t.Fatalf("MaxBackups = %d, want 0", l.MaxBackups)
	}
}

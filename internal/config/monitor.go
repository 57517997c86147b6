package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// MonitorConfig configures a standalone dashboard session that runs the day
// rollover watchdog against a remote fleet server.
type MonitorConfig struct {
	ServerURL     string        `env:"FLEET_SERVER_URL" envDefault:"http://localhost:8080"`
	AdminEmail    string        `env:"ADMIN_EMAIL"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	StatsTimezone string        `env:"STATS_TIMEZONE" envDefault:"Asia/Seoul"`
	Interval      time.Duration `env:"ROLLOVER_INTERVAL" envDefault:"1m"`
	MarkerPath    string        `env:"ROLLOVER_MARKER_PATH" envDefault:"rollover.db"`
}

func LoadMonitor() (MonitorConfig, error) {
	var cfg MonitorConfig
	err := env.Parse(&cfg)
	return cfg, err
}

package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	SessionSecret string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	AdminEmail    string        `env:"ADMIN_EMAIL,required,notEmpty"`
	AdminPassword string        `env:"ADMIN_PASSWORD,required,notEmpty"`

	// StatsTimezone is the civil timezone every "today" counter is computed in.
	StatsTimezone string        `env:"STATS_TIMEZONE" envDefault:"Asia/Seoul"`
	ProbeTimeout  time.Duration `env:"PROBE_TIMEOUT" envDefault:"5s"`

	RolloverEnabled    bool          `env:"ROLLOVER_ENABLED" envDefault:"true"`
	RolloverInterval   time.Duration `env:"ROLLOVER_INTERVAL" envDefault:"1m"`
	RolloverMarkerPath string        `env:"ROLLOVER_MARKER_PATH"`

	RealtimeBuffer int `env:"REALTIME_BUFFER" envDefault:"500"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}

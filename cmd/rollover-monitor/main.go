package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-monitor/internal/civil"
	"fleet-monitor/internal/config"
	"fleet-monitor/internal/logging"
	"fleet-monitor/internal/rollover"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	config.LoadDotEnv()
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadMonitor()
	if err != nil {
		log.Fatal().Err(err).Msg("load monitor config failed")
	}

	flags := pflag.NewFlagSet("rollover-monitor", pflag.ExitOnError)
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "fleet server base url")
	flags.StringVar(&cfg.AdminEmail, "email", cfg.AdminEmail, "dashboard admin email")
	flags.StringVar(&cfg.StatsTimezone, "tz", cfg.StatsTimezone, "canonical stats timezone")
	flags.DurationVar(&cfg.Interval, "interval", cfg.Interval, "poll interval")
	flags.StringVar(&cfg.MarkerPath, "marker", cfg.MarkerPath, "sqlite file holding the last checked day")
	once := flags.Bool("once", false, "run a single check and exit")
	_ = flags.Parse(os.Args[1:])

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Fatal().Msg("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}
	cal, err := civil.NewCalendar(cfg.StatsTimezone, quartz.NewReal())
	if err != nil {
		log.Fatal().Err(err).Msg("stats timezone invalid")
	}
	markers, err := rollover.OpenSQLiteMarker(cfg.MarkerPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open rollover marker failed")
	}
	defer markers.Close()

	resetter := rollover.NewHTTPResetter(cfg.ServerURL, cfg.AdminEmail, cfg.AdminPassword, 10*time.Second)
	monitor := rollover.NewMonitor(cal, markers, resetter, func(day civil.Day, n int) {
		// The server publishes the invalidation to its own subscribers.
		log.Info().Str("day", day.String()).Int("agents", n).Msg("dashboard caches invalidated")
	}, cfg.Interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		out, err := monitor.Check(ctx)
		if err != nil {
			log.Error().Err(err).Str("outcome", string(out)).Msg("rollover check failed")
			os.Exit(1)
		}
		log.Info().Str("outcome", string(out)).Msg("rollover check done")
		return
	}
	log.Info().Str("server", cfg.ServerURL).Dur("interval", cfg.Interval).Str("marker", cfg.MarkerPath).Msg("rollover monitor started")
	if err := monitor.Run(ctx); err != nil {
		log.Error().Err(err).Msg("rollover monitor stopped")
	}
}

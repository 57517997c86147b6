package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appagent "fleet-monitor/internal/app/agent"
	appdashboard "fleet-monitor/internal/app/dashboard"
	apphealth "fleet-monitor/internal/app/health"
	appingest "fleet-monitor/internal/app/ingest"
	appsession "fleet-monitor/internal/app/session"
	"fleet-monitor/internal/civil"
	"fleet-monitor/internal/config"
	"fleet-monitor/internal/logging"
	"fleet-monitor/internal/mcpserver"
	"fleet-monitor/internal/realtime"
	"fleet-monitor/internal/rollover"
	"fleet-monitor/internal/store"
	httptransport "fleet-monitor/internal/transport/http"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	config.LoadDotEnv()
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	cal, err := civil.NewCalendar(cfg.StatsTimezone, quartz.NewReal())
	if err != nil {
		log.Fatal().Err(err).Msg("stats timezone invalid")
	}
	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	hub := realtime.NewHub(cfg.RealtimeBuffer)
	ingestSvc := appingest.NewService(st, cal, hub)
	prober := apphealth.NewProber(st, ingestSvc, hub, cfg.ProbeTimeout)
	dashboardSvc := appdashboard.NewService(st, cal)
	resetter := rollover.NewStoreResetter(st)

	r := httptransport.NewRouter(httptransport.Deps{
		DB:        st,
		Calendar:  cal,
		Hub:       hub,
		Ingest:    ingestSvc,
		Prober:    prober,
		Dashboard: dashboardSvc,
		Agents:    appagent.NewService(st, hub),
		Sessions: appsession.NewService(appsession.Config{
			Secret:        cfg.SessionSecret,
			TTL:           cfg.SessionTTL,
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		}, cal.Clock()),
		Resetter: resetter,
		MCP:      mcpserver.New(dashboardSvc, prober).Handler(),
	})
	httptransport.LogRoutes(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.RolloverEnabled {
		markers, closeMarkers, err := openMarkers(cfg.RolloverMarkerPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open rollover marker failed")
		}
		defer closeMarkers()
		monitor := rollover.NewMonitor(cal, markers, resetter, func(day civil.Day, n int) {
			hub.Publish(realtime.EventStatsReset, "", map[string]any{"day": day.String(), "reset": n})
		}, cfg.RolloverInterval)
		g.Go(func() error { return monitor.Run(gctx) })
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("stats_timezone", cfg.StatsTimezone).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		// Closing the hub ends open event streams so Shutdown can drain.
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

// openMarkers keeps the server session's marker in memory unless a sqlite
// path is configured.
func openMarkers(path string) (rollover.MarkerStore, func(), error) {
	if path == "" {
		return rollover.NewMemoryMarker(), func() {}, nil
	}
	m, err := rollover.OpenSQLiteMarker(path)
	if err != nil {
		return nil, nil, err
	}
	return m, func() { _ = m.Close() }, nil
}

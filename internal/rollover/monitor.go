// Package rollover watches for the canonical day changing and resets the
// today counters once per new day.
package rollover

import (
	"context"
	"expvar"
	"time"

	"fleet-monitor/internal/civil"

	"github.com/rs/zerolog/log"
)

var (
	metricChecksTotal = expvar.NewInt("rollover_checks_total")
	metricResetsTotal = expvar.NewInt("rollover_resets_total")
	metricResetErrors = expvar.NewInt("rollover_reset_errors_total")
)

type Outcome string

const (
	OutcomeInitialized Outcome = "initialized"
	OutcomeUnchanged   Outcome = "unchanged"
	OutcomeReset       Outcome = "reset"
	OutcomeResetFailed Outcome = "reset_failed"
)

// InvalidateFunc tells downstream consumers that cached aggregates are stale.
type InvalidateFunc func(day civil.Day, agentsReset int)

type Monitor struct {
	cal        *civil.Calendar
	markers    MarkerStore
	resetter   Resetter
	invalidate InvalidateFunc
	interval   time.Duration
}

func NewMonitor(cal *civil.Calendar, markers MarkerStore, resetter Resetter, invalidate InvalidateFunc, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{cal: cal, markers: markers, resetter: resetter, invalidate: invalidate, interval: interval}
}

// Check runs one pass. On a day change the marker moves to today even when the
// reset fails, so a store outage cannot turn every poll into another reset.
func (m *Monitor) Check(ctx context.Context) (Outcome, error) {
	metricChecksTotal.Add(1)
	today := m.cal.Today()
	last, ok, err := m.markers.Load(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return OutcomeInitialized, m.markers.Save(ctx, today)
	}
	if last == today {
		return OutcomeUnchanged, nil
	}

	n, resetErr := m.resetter.ResetToday(ctx, today)
	if err := m.markers.Save(ctx, today); err != nil {
		log.Error().Err(err).Str("day", today.String()).Msg("failed to save rollover marker")
	}
	// Cached views are stale once the day moved, whether or not the reset took.
	if m.invalidate != nil {
		m.invalidate(today, n)
	}
	if resetErr != nil {
		metricResetErrors.Add(1)
		log.Error().Err(resetErr).Str("from", last.String()).Str("to", today.String()).Msg("today counter reset failed")
		return OutcomeResetFailed, resetErr
	}
	metricResetsTotal.Add(1)
	log.Info().Str("from", last.String()).Str("to", today.String()).Int("agents", n).Msg("today counters reset")
	return OutcomeReset, nil
}

// Run checks once immediately, then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	if _, err := m.Check(ctx); err != nil {
		log.Warn().Err(err).Msg("initial rollover check failed")
	}
	w := m.cal.Clock().TickerFunc(ctx, m.interval, func() error {
		if _, err := m.Check(ctx); err != nil {
			log.Warn().Err(err).Msg("rollover check failed")
		}
		return nil
	}, "rollover")
	err := w.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

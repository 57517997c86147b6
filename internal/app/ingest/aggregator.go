package ingest

import (
	"context"

	"fleet-monitor/internal/realtime"
	"fleet-monitor/internal/store"
	"fleet-monitor/internal/telemetry"
)

// ApplyCountedStat records one unit of work. The store procedure is the only
// place counters are read and written; nothing here does read-modify-write.
func (s *Service) ApplyCountedStat(ctx context.Context, cs telemetry.CountedStat) error {
	day, hour := s.cal.Slot(s.cal.Now())
	err := s.store.ApplyCountedStat(ctx, store.CountedStat{
		AgentID:        cs.AgentID,
		APIType:        cs.APIType,
		ResponseTimeMS: cs.ResponseTimeMS,
		IsError:        cs.IsError,
		CountAPI:       cs.CountAPI,
		CountTask:      cs.CountTask,
		Day:            day.Time(),
		Hour:           hour,
	})
	if err != nil {
		metricCounterUpdateDropped.Add(1)
		return err
	}
	metricCounterUpdateTotal.Add(1)
	s.publish(realtime.EventStatsChanged, cs.AgentID, map[string]any{
		"api_type": cs.APIType,
		"day":      day.String(),
		"hour":     hour,
	})
	return nil
}

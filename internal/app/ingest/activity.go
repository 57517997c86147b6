package ingest

import (
	"context"

	"fleet-monitor/internal/realtime"
	"fleet-monitor/internal/store"
	"fleet-monitor/internal/telemetry"

	"github.com/rs/zerolog/log"
)

// AppendLog inserts one immutable activity row. Entries without an agent id
// are refused so no log row is ever orphaned.
func (s *Service) AppendLog(ctx context.Context, entry telemetry.ActivityLog) (store.ActivityLog, error) {
	if entry.AgentID == "" {
		metricActivityLogDropped.Add(1)
		log.Warn().Str("action", entry.Action).Msg("dropping activity log without agent id")
		return store.ActivityLog{}, ErrOrphanLog
	}
	row, err := s.store.InsertActivityLog(ctx, store.ActivityLog{
		AgentID:        entry.AgentID,
		Action:         entry.Action,
		Type:           entry.Type,
		Status:         entry.Status,
		ResponseTimeMS: entry.ResponseTimeMS,
		UserName:       entry.UserName,
		ImageURL:       entry.ImageURL,
		CreatedAt:      s.cal.Now(),
	})
	if err != nil {
		metricActivityLogDropped.Add(1)
		return store.ActivityLog{}, err
	}
	metricActivityLogTotal.Add(1)
	s.publish(realtime.EventActivityAppended, row.AgentID, row)
	return row, nil
}

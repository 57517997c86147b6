package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ApplyCountedStat runs update_agent_stats, which changes the agent counters,
// the api breakdown, the daily and the hourly rows as one unit.
func (s *Store) ApplyCountedStat(ctx context.Context, in CountedStat) error {
	_, err := s.Pool.Exec(ctx, `SELECT update_agent_stats($1, $2, $3, $4, $5, $6, $7, $8)`,
		in.AgentID, in.APIType, in.ResponseTimeMS, in.IsError, in.CountAPI, in.CountTask,
		dateParam(in.Day), int32(in.Hour))
	return err
}

// ResetTodayCounters zeroes today-scoped counters still stamped with a day
// before day. It returns the number of agents that were reset.
func (s *Store) ResetTodayCounters(ctx context.Context, day time.Time) (int, error) {
	var n int32
	if err := s.Pool.QueryRow(ctx, `SELECT reset_today_counters($1)`, dateParam(day)).Scan(&n); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Store) ListBreakdowns(ctx context.Context, agentID string) ([]ApiBreakdown, error) {
	rows, err := s.Pool.Query(ctx, `SELECT agent_id, api_type, today_count, total_count, stats_day, updated_at
		FROM api_breakdowns WHERE agent_id = $1 ORDER BY total_count DESC, api_type ASC`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ApiBreakdown{}
	for rows.Next() {
		var (
			b   ApiBreakdown
			day pgtype.Date
		)
		if err := rows.Scan(&b.AgentID, &b.APIType, &b.TodayCount, &b.TotalCount, &day, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.StatsDay = day.Time
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListDailyStats returns the newest limit days for the agent.
func (s *Store) ListDailyStats(ctx context.Context, agentID string, limit int) ([]DailyStat, error) {
	if limit <= 0 {
		limit = 7
	}
	rows, err := s.Pool.Query(ctx, `SELECT agent_id, stat_date, tasks, api_calls, breakdown, updated_at
		FROM daily_stats WHERE agent_id = $1 ORDER BY stat_date DESC LIMIT $2`, agentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DailyStat{}
	for rows.Next() {
		var (
			d   DailyStat
			day pgtype.Date
		)
		if err := rows.Scan(&d.AgentID, &day, &d.Tasks, &d.APICalls, &d.Breakdown, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.Date = day.Time
		if d.Breakdown == nil {
			d.Breakdown = map[string]int64{}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListHourlyStats returns only the hourly rows claimed for day. Rows left over
// from an earlier day at the same hour-of-day are excluded.
func (s *Store) ListHourlyStats(ctx context.Context, agentID string, day time.Time) ([]HourlyStat, error) {
	rows, err := s.Pool.Query(ctx, `SELECT agent_id, hour, tasks, api_calls, stat_date, updated_at
		FROM hourly_stats WHERE agent_id = $1 AND stat_date = $2 ORDER BY hour ASC`, agentID, dateParam(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []HourlyStat{}
	for rows.Next() {
		var (
			h    HourlyStat
			hour int16
			date pgtype.Date
		)
		if err := rows.Scan(&h.AgentID, &hour, &h.Tasks, &h.APICalls, &date, &h.UpdatedAt); err != nil {
			return nil, err
		}
		h.Hour = int(hour)
		h.StatDate = date.Time
		out = append(out, h)
	}
	return out, rows.Err()
}

// Package dashboard serves the read-only views the fleet dashboard renders.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"fleet-monitor/internal/civil"
	"fleet-monitor/internal/store"
)

const (
	defaultDailyDays    = 7
	maxDailyDays        = 90
	defaultActivityRows = 50
	maxActivityRows     = 200
)

type Store interface {
	ListAgents(ctx context.Context) ([]store.Agent, error)
	GetAgent(ctx context.Context, id string) (*store.Agent, error)
	ListBreakdowns(ctx context.Context, agentID string) ([]store.ApiBreakdown, error)
	ListHourlyStats(ctx context.Context, agentID string, day time.Time) ([]store.HourlyStat, error)
	ListDailyStats(ctx context.Context, agentID string, limit int) ([]store.DailyStat, error)
	ListActivityLogs(ctx context.Context, f store.ActivityFilter) ([]store.ActivityLog, error)
	FleetSummary(ctx context.Context, day time.Time) (store.FleetSummary, error)
}

type Service struct {
	store Store
	cal   *civil.Calendar
}

func NewService(st Store, cal *civil.Calendar) *Service {
	return &Service{store: st, cal: cal}
}

// Agents lists every agent. Today counters left over from an earlier day read
// as zero even before the rollover reset has run.
func (s *Service) Agents(ctx context.Context) (*AgentsResponse, error) {
	today := s.cal.Today()
	items, err := s.store.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]store.Agent, 0, len(items))
	for _, a := range items {
		out = append(out, a.ForDay(today.Time()))
	}
	return &AgentsResponse{Day: today.String(), Items: out}, nil
}

func (s *Service) Agent(ctx context.Context, agentID string) (*AgentDetailResponse, error) {
	agent, err := s.lookup(ctx, agentID)
	if err != nil {
		return nil, err
	}
	today := s.cal.Today()
	rows, err := s.store.ListBreakdowns(ctx, agent.ID)
	if err != nil {
		return nil, err
	}
	breakdowns := make([]store.ApiBreakdown, 0, len(rows))
	for _, b := range rows {
		breakdowns = append(breakdowns, b.ForDay(today.Time()))
	}
	return &AgentDetailResponse{Day: today.String(), Agent: agent.ForDay(today.Time()), Breakdowns: breakdowns}, nil
}

// Hourly returns all 24 buckets of canonical today, zero-filled.
func (s *Service) Hourly(ctx context.Context, agentID string) (*HourlyResponse, error) {
	agent, err := s.lookup(ctx, agentID)
	if err != nil {
		return nil, err
	}
	today := s.cal.Today()
	rows, err := s.store.ListHourlyStats(ctx, agent.ID, today.Time())
	if err != nil {
		return nil, err
	}
	hours := make([]HourBucket, 24)
	for h := range hours {
		hours[h].Hour = h
	}
	for _, r := range rows {
		if r.Hour < 0 || r.Hour > 23 || civil.DayOf(r.StatDate) != today {
			continue
		}
		hours[r.Hour].Tasks = r.Tasks
		hours[r.Hour].APICalls = r.APICalls
	}
	return &HourlyResponse{AgentID: agent.ID, Day: today.String(), Hours: hours}, nil
}

func (s *Service) Daily(ctx context.Context, agentID string, days int) (*DailyResponse, error) {
	agent, err := s.lookup(ctx, agentID)
	if err != nil {
		return nil, err
	}
	days = clampDays(days)
	items, err := s.store.ListDailyStats(ctx, agent.ID, days)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []store.DailyStat{}
	}
	return &DailyResponse{AgentID: agent.ID, Days: days, Items: items}, nil
}

func (s *Service) Activity(ctx context.Context, agentID string, limit, offset int) (*ActivityResponse, error) {
	if offset < 0 {
		return nil, ErrInvalidRequest
	}
	limit = clampActivityLimit(limit)
	items, err := s.store.ListActivityLogs(ctx, store.ActivityFilter{
		AgentID: strings.TrimSpace(agentID),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []store.ActivityLog{}
	}
	return &ActivityResponse{Items: items, Limit: limit, Offset: offset}, nil
}

func (s *Service) Summary(ctx context.Context) (*SummaryResponse, error) {
	today := s.cal.Today()
	sum, err := s.store.FleetSummary(ctx, today.Time())
	if err != nil {
		return nil, err
	}
	return &SummaryResponse{Day: today.String(), FleetSummary: sum}, nil
}

func (s *Service) lookup(ctx context.Context, agentID string) (*store.Agent, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return nil, ErrInvalidRequest
	}
	agent, err := s.store.GetAgent(ctx, agentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, err
	}
	return agent, nil
}

func clampDays(days int) int {
	if days <= 0 {
		return defaultDailyDays
	}
	if days > maxDailyDays {
		return maxDailyDays
	}
	return days
}

func clampActivityLimit(limit int) int {
	if limit <= 0 {
		return defaultActivityRows
	}
	if limit > maxActivityRows {
		return maxActivityRows
	}
	return limit
}

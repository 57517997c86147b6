package dashboard

import "fleet-monitor/internal/store"

type AgentsResponse struct {
	Day   string        `json:"day"`
	Items []store.Agent `json:"items"`
}

type AgentDetailResponse struct {
	Day        string               `json:"day"`
	Agent      store.Agent          `json:"agent"`
	Breakdowns []store.ApiBreakdown `json:"breakdowns"`
}

type HourBucket struct {
	Hour     int   `json:"hour"`
	Tasks    int64 `json:"tasks"`
	APICalls int64 `json:"api_calls"`
}

type HourlyResponse struct {
	AgentID string       `json:"agent_id"`
	Day     string       `json:"day"`
	Hours   []HourBucket `json:"hours"`
}

type DailyResponse struct {
	AgentID string            `json:"agent_id"`
	Days    int               `json:"days"`
	Items   []store.DailyStat `json:"items"`
}

type ActivityResponse struct {
	Items  []store.ActivityLog `json:"items"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

type SummaryResponse struct {
	Day string `json:"day"`
	store.FleetSummary
}

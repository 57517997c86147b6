package store

import "time"

const (
	StatusOnline     = "online"
	StatusOffline    = "offline"
	StatusProcessing = "processing"
	StatusError      = "error"

	APIStatusUnknown = "unknown"
	APIStatusHealthy = "healthy"
	APIStatusError   = "error"
)

func ValidAgentStatus(s string) bool {
	switch s {
	case StatusOnline, StatusOffline, StatusProcessing, StatusError:
		return true
	default:
		return false
	}
}

type Agent struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	ClientID          string     `json:"client_id,omitempty"`
	ClientName        string     `json:"client_name,omitempty"`
	Model             string     `json:"model"`
	Account           string     `json:"account"`
	Status            string     `json:"status"`
	APIStatus         string     `json:"api_status"`
	BaseURL           string     `json:"base_url,omitempty"`
	APIKey            string     `json:"-"`
	TotalAPICalls     int64      `json:"total_api_calls"`
	TodayAPICalls     int64      `json:"today_api_calls"`
	TotalTasks        int64      `json:"total_tasks"`
	TodayTasks        int64      `json:"today_tasks"`
	ErrorCount        int64      `json:"error_count"`
	ErrorRate         float64    `json:"error_rate"`
	TotalResponseTime float64    `json:"total_response_time"`
	ResponseCount     int64      `json:"response_count"`
	AvgResponseTime   float64    `json:"avg_response_time"`
	StatsDay          *time.Time `json:"stats_day,omitempty"`
	LastActive        *time.Time `json:"last_active,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// IsMock reports whether the agent is passive: without a base URL there is
// nothing to probe.
func (a Agent) IsMock() bool {
	return a.BaseURL == ""
}

// ForDay returns a copy whose today counters read as zero when they were last
// written on an earlier day than day.
func (a Agent) ForDay(day time.Time) Agent {
	if a.StatsDay == nil || a.StatsDay.Before(day) {
		a.TodayAPICalls = 0
		a.TodayTasks = 0
	}
	return a
}

// DisplayLabel picks the agent name, then the owning client's name, then the id.
func (a Agent) DisplayLabel() string {
	return DisplayLabel(a.ID, a.Name, a.ClientName)
}

func DisplayLabel(id, name, clientName string) string {
	if name != "" {
		return name
	}
	if clientName != "" {
		return clientName
	}
	return id
}

type NewAgent struct {
	ID         string
	Name       string
	ClientName string
	Model      string
	Account    string
	BaseURL    string
	APIKey     string
}

type AgentPatch struct {
	Status  *string
	Model   *string
	Account *string
}

// Heartbeat carries the optional metadata an agent reports with its heartbeat.
type Heartbeat struct {
	AgentID string
	Model   string
	BaseURL string
	Account string
	APIKey  string
}

// AgentLabel is what a heartbeat upsert returns for building the log line.
type AgentLabel struct {
	ID         string
	Name       string
	ClientName string
}

func (l AgentLabel) String() string {
	return DisplayLabel(l.ID, l.Name, l.ClientName)
}

type CountedStat struct {
	AgentID        string
	APIType        string
	ResponseTimeMS float64
	IsError        bool
	CountAPI       bool
	CountTask      bool
	Day            time.Time
	Hour           int
}

type ApiBreakdown struct {
	AgentID    string    `json:"agent_id"`
	APIType    string    `json:"api_type"`
	TodayCount int64     `json:"today_count"`
	TotalCount int64     `json:"total_count"`
	StatsDay   time.Time `json:"stats_day"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ForDay zeroes TodayCount when the row belongs to an earlier day.
func (b ApiBreakdown) ForDay(day time.Time) ApiBreakdown {
	if b.StatsDay.Before(day) {
		b.TodayCount = 0
	}
	return b
}

type DailyStat struct {
	AgentID   string           `json:"agent_id"`
	Date      time.Time        `json:"date"`
	Tasks     int64            `json:"tasks"`
	APICalls  int64            `json:"api_calls"`
	Breakdown map[string]int64 `json:"breakdown"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type HourlyStat struct {
	AgentID   string    `json:"agent_id"`
	Hour      int       `json:"hour"`
	Tasks     int64     `json:"tasks"`
	APICalls  int64     `json:"api_calls"`
	StatDate  time.Time `json:"stat_date"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ActivityLog struct {
	ID             int64     `json:"id"`
	AgentID        string    `json:"agent_id"`
	AgentName      string    `json:"agent_name,omitempty"`
	Action         string    `json:"action"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	ResponseTimeMS float64   `json:"response_time"`
	UserName       string    `json:"user_name,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ActivityFilter struct {
	AgentID string
	Limit   int
	Offset  int
}

type FleetSummary struct {
	Agents          int     `json:"agents"`
	Online          int     `json:"online"`
	TodayAPICalls   int64   `json:"today_api_calls"`
	TotalAPICalls   int64   `json:"total_api_calls"`
	TodayTasks      int64   `json:"today_tasks"`
	TotalTasks      int64   `json:"total_tasks"`
	AvgResponseTime float64 `json:"avg_response_time"`
	AvgErrorRate    float64 `json:"avg_error_rate"`
}

// Package telemetry turns raw agent payloads into the closed set of
// obligations the ingestion pipeline acts on.
package telemetry

import (
	"errors"

	"fleet-monitor/internal/store"
)

const (
	APITypeHeartbeat    = "heartbeat"
	APITypeStatusChange = "status_change"
	APITypeActivityLog  = "activity_log"

	LogTypePlain   = "log"
	LogStatusOK    = "success"
	LogStatusError = "error"
)

var (
	ErrMissingAgentID = errors.New("agentId is required")
	ErrMissingStatus  = errors.New("status is required for status_change")
	ErrInvalidStatus  = errors.New("status must be online|offline|processing|error")
	ErrNoObligation   = errors.New("payload carries nothing to record")
)

type Kind string

const (
	KindHeartbeat    Kind = "heartbeat"
	KindStatusChange Kind = "status_change"
	KindCountedStat  Kind = "counted_stat"
	KindActivityLog  Kind = "activity_log"
)

// Obligation is one unit of work derived from a payload.
type Obligation interface {
	Kind() Kind
}

type Heartbeat struct {
	AgentID string
	Model   string
	BaseURL string
	Account string
	APIKey  string
}

func (Heartbeat) Kind() Kind { return KindHeartbeat }

type StatusChange struct {
	AgentID string
	Status  string
}

func (StatusChange) Kind() Kind { return KindStatusChange }

type CountedStat struct {
	AgentID        string
	APIType        string
	ResponseTimeMS float64
	IsError        bool
	CountAPI       bool
	CountTask      bool
}

func (CountedStat) Kind() Kind { return KindCountedStat }

type ActivityLog struct {
	AgentID        string
	Action         string
	Type           string
	Status         string
	ResponseTimeMS float64
	UserName       string
	ImageURL       string
}

func (ActivityLog) Kind() Kind { return KindActivityLog }

// Event is a classified payload. Obligations keep a fixed order: heartbeat or
// status change first, then the counted stat, then the activity log.
type Event struct {
	AgentID     string
	Obligations []Obligation
}

func (e Event) Has(k Kind) bool {
	for _, o := range e.Obligations {
		if o.Kind() == k {
			return true
		}
	}
	return false
}

// Classify evaluates the api type once against the three sentinels. Any other
// non-empty value is a counted stat keyed by that type, and a log action rides
// along independently of the type.
func Classify(p Payload) (Event, error) {
	n := normalize(p)
	ev := Event{AgentID: n.agentID}

	switch n.apiType {
	case APITypeHeartbeat:
		ev.Obligations = append(ev.Obligations, Heartbeat{
			AgentID: n.agentID,
			Model:   n.model,
			BaseURL: n.baseURL,
			Account: n.account,
			APIKey:  n.apiKey,
		})
	case APITypeStatusChange:
		if n.status == "" {
			return Event{}, ErrMissingStatus
		}
		if !store.ValidAgentStatus(n.status) {
			return Event{}, ErrInvalidStatus
		}
		ev.Obligations = append(ev.Obligations, StatusChange{AgentID: n.agentID, Status: n.status})
	case APITypeActivityLog, "":
	default:
		ev.Obligations = append(ev.Obligations, CountedStat{
			AgentID:        n.agentID,
			APIType:        n.apiType,
			ResponseTimeMS: n.response,
			IsError:        n.isError,
			CountAPI:       n.countAPI,
			CountTask:      n.countTask,
		})
	}

	if n.action != "" {
		ev.Obligations = append(ev.Obligations, ActivityLog{
			AgentID:        n.agentID,
			Action:         n.action,
			Type:           logType(n),
			Status:         logStatus(n),
			ResponseTimeMS: n.response,
			UserName:       n.userName,
			ImageURL:       n.imageURL,
		})
	}

	if len(ev.Obligations) == 0 {
		return Event{}, ErrNoObligation
	}
	if n.agentID == "" {
		return Event{}, ErrMissingAgentID
	}
	return ev, nil
}

func logType(n normalized) string {
	if n.logType != "" {
		return n.logType
	}
	if n.apiType == "" || n.apiType == APITypeActivityLog {
		return LogTypePlain
	}
	return n.apiType
}

func logStatus(n normalized) string {
	if n.logType != "" {
		return n.logType
	}
	if n.isError {
		return LogStatusError
	}
	return LogStatusOK
}

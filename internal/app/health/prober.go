// Package health actively probes agents that expose a base URL.
package health

import (
	"context"
	"errors"
	"expvar"
	"strings"
	"time"

	"fleet-monitor/internal/realtime"
	"fleet-monitor/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

var (
	metricProbesTotal   = expvar.NewInt("probes_total")
	metricProbesHealthy = expvar.NewInt("probes_healthy_total")
	metricProbesFailed  = expvar.NewInt("probes_failed_total")
)

type Store interface {
	GetAgent(ctx context.Context, id string) (*store.Agent, error)
	UpdateAgentHealth(ctx context.Context, agentID, status, apiStatus string) error
}

// HeartbeatSink records proof of life through the regular ingestion path.
type HeartbeatSink interface {
	Heartbeat(ctx context.Context, agentID string) error
}

type Result struct {
	AgentID   string `json:"agent_id"`
	Status    string `json:"status"`
	APIStatus string `json:"api_status"`
	Mock      bool   `json:"mock"`
	Detail    string `json:"detail,omitempty"`
}

// Healthy is the overall probe verdict.
func (r Result) Healthy() bool {
	return r.Mock || r.APIStatus == store.APIStatusHealthy
}

type Prober struct {
	store  Store
	sink   HeartbeatSink
	pub    realtime.Publisher
	client *httpClient
}

func NewProber(st Store, sink HeartbeatSink, pub realtime.Publisher, timeout time.Duration) *Prober {
	return &Prober{store: st, sink: sink, pub: pub, client: newHTTPClient(timeout)}
}

// Probe checks liveness then verification for one agent. Reachability
// failures are folded into the result; only an unknown agent or a failed
// status write is returned as an error.
func (p *Prober) Probe(ctx context.Context, agentID string) (Result, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return Result{}, ErrInvalidRequest
	}
	agent, err := p.store.GetAgent(ctx, agentID)
	if errors.Is(err, store.ErrNotFound) {
		return Result{}, ErrAgentNotFound
	}
	if err != nil {
		return Result{}, err
	}
	if agent.IsMock() {
		return Result{AgentID: agentID, Status: agent.Status, APIStatus: agent.APIStatus, Mock: true}, nil
	}

	metricProbesTotal.Add(1)
	res := p.check(ctx, agent)
	if err := p.store.UpdateAgentHealth(ctx, agentID, res.Status, res.APIStatus); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, ErrAgentNotFound
		}
		return Result{}, err
	}
	if p.pub != nil {
		p.pub.Publish(realtime.EventAgentChanged, agentID, map[string]any{
			"status":     res.Status,
			"api_status": res.APIStatus,
		})
	}

	if res.APIStatus != store.APIStatusHealthy {
		metricProbesFailed.Add(1)
		log.Info().Str("agent_id", agentID).Str("status", res.Status).Str("api_status", res.APIStatus).Str("detail", res.Detail).Msg("agent probe failed")
		return res, nil
	}
	metricProbesHealthy.Add(1)
	if p.sink != nil {
		if err := p.sink.Heartbeat(ctx, agentID); err != nil {
			log.Warn().Err(err).Str("agent_id", agentID).Msg("synthetic heartbeat failed")
		}
	}
	return res, nil
}

// check runs the two calls in order; verification means nothing until
// liveness has succeeded.
func (p *Prober) check(ctx context.Context, agent *store.Agent) Result {
	res := Result{AgentID: agent.ID, Status: store.StatusOffline, APIStatus: store.APIStatusError}
	base := strings.TrimRight(agent.BaseURL, "/")

	if _, _, err := p.client.get(ctx, base+"/health"); err != nil {
		res.Detail = "liveness: " + err.Error()
		return res
	}
	res.Status = store.StatusOnline

	_, body, err := p.client.post(ctx, base+"/verify", []byte(`{}`))
	if err != nil {
		res.Detail = "verify: " + err.Error()
		return res
	}
	if gjson.GetBytes(body, "success").Type == gjson.True {
		res.APIStatus = store.APIStatusHealthy
	} else {
		res.Detail = "verify: success flag not set"
	}
	return res
}

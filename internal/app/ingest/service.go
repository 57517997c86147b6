package ingest

import (
	"context"
	"fmt"

	"fleet-monitor/internal/civil"
	"fleet-monitor/internal/realtime"
	"fleet-monitor/internal/store"
	"fleet-monitor/internal/telemetry"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Store is the slice of the aggregate store the ingestion path writes through.
type Store interface {
	TouchHeartbeat(ctx context.Context, hb store.Heartbeat) (store.AgentLabel, error)
	SetAgentStatus(ctx context.Context, agentID, status string) error
	ApplyCountedStat(ctx context.Context, in store.CountedStat) error
	InsertActivityLog(ctx context.Context, entry store.ActivityLog) (store.ActivityLog, error)
}

type Service struct {
	store Store
	cal   *civil.Calendar
	pub   realtime.Publisher
}

func NewService(st Store, cal *civil.Calendar, pub realtime.Publisher) *Service {
	return &Service{store: st, cal: cal, pub: pub}
}

// Ingest classifies one payload and runs every obligation it carries. The
// obligations are independent and run concurrently; each failure is either
// propagated or swallowed according to obligationPolicy.
func (s *Service) Ingest(ctx context.Context, p telemetry.Payload) (*Result, error) {
	metricIngestTotal.Add(1)
	ev, err := telemetry.Classify(p)
	if err != nil {
		metricIngestInvalidTotal.Add(1)
		log.Warn().Err(err).Str("agent_id", p.AgentID).Str("api_type", p.APIType).Msg("rejected telemetry payload")
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	res := &Result{AgentID: ev.AgentID, Outcomes: make([]Outcome, len(ev.Obligations))}
	var g errgroup.Group
	for i, ob := range ev.Obligations {
		g.Go(func() error {
			err := s.run(ctx, ob)
			out := Outcome{Kind: ob.Kind(), Err: err}
			defer func() { res.Outcomes[i] = out }()
			if err == nil {
				return nil
			}
			policy := policyFor(ob.Kind())
			out.Swallowed = policy == swallow
			logFailure(ev.AgentID, ob.Kind(), policy, err)
			if policy == propagate {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metricIngestFailedTotal.Add(1)
		return res, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return res, nil
}

// Heartbeat synthesizes a heartbeat for agentID through the regular ingestion
// path.
func (s *Service) Heartbeat(ctx context.Context, agentID string) error {
	_, err := s.Ingest(ctx, telemetry.Payload{AgentID: agentID, APIType: telemetry.APITypeHeartbeat})
	return err
}

func (s *Service) run(ctx context.Context, ob telemetry.Obligation) error {
	switch o := ob.(type) {
	case telemetry.Heartbeat:
		return s.applyHeartbeat(ctx, o)
	case telemetry.StatusChange:
		return s.applyStatusChange(ctx, o)
	case telemetry.CountedStat:
		return s.ApplyCountedStat(ctx, o)
	case telemetry.ActivityLog:
		_, err := s.AppendLog(ctx, o)
		return err
	default:
		return fmt.Errorf("unknown obligation %T", ob)
	}
}

func (s *Service) applyHeartbeat(ctx context.Context, hb telemetry.Heartbeat) error {
	metricHeartbeatTotal.Add(1)
	label, err := s.store.TouchHeartbeat(ctx, store.Heartbeat{
		AgentID: hb.AgentID,
		Model:   hb.Model,
		BaseURL: hb.BaseURL,
		Account: hb.Account,
		APIKey:  hb.APIKey,
	})
	if err != nil {
		return err
	}
	s.publish(realtime.EventAgentChanged, hb.AgentID, map[string]any{"status": store.StatusOnline})

	// The heartbeat's own log line is best effort like any other log.
	if _, err := s.AppendLog(ctx, telemetry.ActivityLog{
		AgentID: hb.AgentID,
		Action:  heartbeatAction(label),
		Type:    telemetry.APITypeHeartbeat,
		Status:  telemetry.LogStatusOK,
	}); err != nil {
		logFailure(hb.AgentID, telemetry.KindActivityLog, swallow, err)
	}
	return nil
}

func heartbeatAction(label store.AgentLabel) string {
	return label.String() + " heartbeat"
}

func (s *Service) applyStatusChange(ctx context.Context, sc telemetry.StatusChange) error {
	if err := s.store.SetAgentStatus(ctx, sc.AgentID, sc.Status); err != nil {
		return err
	}
	s.publish(realtime.EventAgentChanged, sc.AgentID, map[string]any{"status": sc.Status})
	return nil
}

func (s *Service) publish(event, agentID string, data any) {
	if s.pub != nil {
		s.pub.Publish(event, agentID, data)
	}
}

func logFailure(agentID string, kind telemetry.Kind, policy failurePolicy, err error) {
	e := log.Error()
	if policy == swallow {
		e = log.Warn()
	}
	e.Err(err).
		Str("agent_id", agentID).
		Str("obligation", string(kind)).
		Str("policy", policy.String()).
		Msg("telemetry obligation failed")
}

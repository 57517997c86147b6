// Package agent holds the operator-side edits of the agent registry.
package agent

import (
	"context"
	"errors"
	"strings"

	"fleet-monitor/internal/realtime"
	"fleet-monitor/internal/store"

	"github.com/rs/zerolog/log"
)

type Store interface {
	CreateAgent(ctx context.Context, in store.NewAgent) error
	GetAgent(ctx context.Context, id string) (*store.Agent, error)
	UpdateAgentProfile(ctx context.Context, agentID string, p store.AgentPatch) (*store.Agent, error)
}

type Service struct {
	store Store
	pub   realtime.Publisher
}

func NewService(st Store, pub realtime.Publisher) *Service {
	return &Service{store: st, pub: pub}
}

// Register adds an agent to the registry. Without an explicit id one is
// generated.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*store.Agent, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidRequest
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = store.NewID("agt")
	}
	err := s.store.CreateAgent(ctx, store.NewAgent{
		ID:         id,
		Name:       name,
		ClientName: strings.TrimSpace(in.ClientName),
		Model:      strings.TrimSpace(in.Model),
		Account:    strings.TrimSpace(in.Account),
		BaseURL:    strings.TrimRight(strings.TrimSpace(in.BaseURL), "/"),
		APIKey:     strings.TrimSpace(in.APIKey),
	})
	if errors.Is(err, store.ErrConflict) {
		return nil, ErrAgentExists
	}
	if err != nil {
		return nil, err
	}
	created, err := s.store.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Info().Str("agent_id", id).Str("name", name).Msg("agent registered")
	s.publish(created)
	return created, nil
}

// Patch applies a manual toggle or metadata edit. Absent fields are kept.
func (s *Service) Patch(ctx context.Context, agentID string, in PatchInput) (*store.Agent, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return nil, ErrInvalidRequest
	}
	if in.Status == nil && in.Model == nil && in.Account == nil {
		return nil, ErrInvalidRequest
	}
	if in.Status != nil {
		v := strings.ToLower(strings.TrimSpace(*in.Status))
		if !store.ValidAgentStatus(v) {
			return nil, ErrInvalidStatus
		}
		in.Status = &v
	}
	updated, err := s.store.UpdateAgentProfile(ctx, agentID, store.AgentPatch{
		Status:  in.Status,
		Model:   in.Model,
		Account: in.Account,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, err
	}
	s.publish(updated)
	return updated, nil
}

func (s *Service) publish(a *store.Agent) {
	if s.pub == nil || a == nil {
		return
	}
	s.pub.Publish(realtime.EventAgentChanged, a.ID, map[string]any{
		"status":     a.Status,
		"api_status": a.APIStatus,
	})
}

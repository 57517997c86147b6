package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const agentColumns = `a.id, a.name, COALESCE(a.client_id, ''), COALESCE(c.name, ''), a.model, a.account,
	a.status, a.api_status, a.base_url, a.api_key,
	a.total_api_calls, a.today_api_calls, a.total_tasks, a.today_tasks,
	a.error_count, a.error_rate, a.total_response_time, a.response_count, a.avg_response_time,
	a.stats_day, a.last_active, a.created_at`

const agentFrom = ` FROM agents a LEFT JOIN clients c ON c.id = a.client_id`

func scanAgent(row pgx.Row) (*Agent, error) {
	var (
		a          Agent
		baseURL    pgtype.Text
		apiKey     pgtype.Text
		statsDay   pgtype.Date
		lastActive pgtype.Timestamptz
	)
	err := row.Scan(
		&a.ID, &a.Name, &a.ClientID, &a.ClientName, &a.Model, &a.Account,
		&a.Status, &a.APIStatus, &baseURL, &apiKey,
		&a.TotalAPICalls, &a.TodayAPICalls, &a.TotalTasks, &a.TodayTasks,
		&a.ErrorCount, &a.ErrorRate, &a.TotalResponseTime, &a.ResponseCount, &a.AvgResponseTime,
		&statsDay, &lastActive, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.BaseURL = textVal(baseURL)
	a.APIKey = textVal(apiKey)
	a.StatsDay = datePtrVal(statsDay)
	a.LastActive = timePtrVal(lastActive)
	return &a, nil
}

func (s *Store) GetAgent(ctx context.Context, id string) (*Agent, error) {
	a, err := scanAgent(s.Pool.QueryRow(ctx, `SELECT `+agentColumns+agentFrom+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return a, nil
}

func (s *Store) ListAgents(ctx context.Context) ([]Agent, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+agentColumns+agentFrom+` ORDER BY a.created_at ASC, a.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// CreateAgent registers an agent, creating its client by name when needed.
func (s *Store) CreateAgent(ctx context.Context, in NewAgent) error {
	return pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		var clientID pgtype.Text
		if in.ClientName != "" {
			var id string
			err := tx.QueryRow(ctx, `INSERT INTO clients (id, name) VALUES ($1, $2)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id`, NewID("cli"), in.ClientName).Scan(&id)
			if err != nil {
				return err
			}
			clientID = textParam(id)
		}
		_, err := tx.Exec(ctx, `INSERT INTO agents (id, name, client_id, model, account, base_url, api_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			in.ID, in.Name, clientID, in.Model, in.Account, textParam(in.BaseURL), textParam(in.APIKey))
		return mapConflict(err)
	})
}

// TouchHeartbeat marks the agent online, refreshes last_active and merges any
// reported metadata. Unknown agents are created on first heartbeat.
func (s *Store) TouchHeartbeat(ctx context.Context, hb Heartbeat) (AgentLabel, error) {
	label := AgentLabel{ID: hb.AgentID}
	err := s.Pool.QueryRow(ctx, `WITH up AS (
			INSERT INTO agents (id, status, last_active, model, account, base_url, api_key)
			VALUES ($1, 'online', now(), $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				status = 'online',
				last_active = now(),
				model = COALESCE(NULLIF(EXCLUDED.model, ''), agents.model),
				account = COALESCE(NULLIF(EXCLUDED.account, ''), agents.account),
				base_url = COALESCE(EXCLUDED.base_url, agents.base_url),
				api_key = COALESCE(EXCLUDED.api_key, agents.api_key)
			RETURNING name, client_id
		)
		SELECT up.name, COALESCE(c.name, '') FROM up LEFT JOIN clients c ON c.id = up.client_id`,
		hb.AgentID, hb.Model, hb.Account, textParam(hb.BaseURL), textParam(hb.APIKey),
	).Scan(&label.Name, &label.ClientName)
	if err != nil {
		return AgentLabel{}, err
	}
	return label, nil
}

// SetAgentStatus records a status change reported by the agent itself.
func (s *Store) SetAgentStatus(ctx context.Context, agentID, status string) error {
	_, err := s.Pool.Exec(ctx, `INSERT INTO agents (id, status, last_active) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, last_active = now()`, agentID, status)
	return err
}

// UpdateAgentHealth persists the outcome of a health probe.
func (s *Store) UpdateAgentHealth(ctx context.Context, agentID, status, apiStatus string) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE agents SET status = $2, api_status = $3, last_active = now() WHERE id = $1`,
		agentID, status, apiStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAgentProfile applies an operator edit. Nil fields are left unchanged.
func (s *Store) UpdateAgentProfile(ctx context.Context, agentID string, p AgentPatch) (*Agent, error) {
	var status, model, account pgtype.Text
	if p.Status != nil {
		status = pgtype.Text{String: *p.Status, Valid: true}
	}
	if p.Model != nil {
		model = pgtype.Text{String: *p.Model, Valid: true}
	}
	if p.Account != nil {
		account = pgtype.Text{String: *p.Account, Valid: true}
	}
	tag, err := s.Pool.Exec(ctx, `UPDATE agents SET
			status = COALESCE($2, status),
			model = COALESCE($3, model),
			account = COALESCE($4, account)
		WHERE id = $1`, agentID, status, model, account)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetAgent(ctx, agentID)
}

func (s *Store) FleetSummary(ctx context.Context, day time.Time) (FleetSummary, error) {
	var out FleetSummary
	err := s.Pool.QueryRow(ctx, `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'online'),
			COALESCE(SUM(CASE WHEN stats_day = $1 THEN today_api_calls ELSE 0 END), 0)::BIGINT,
			COALESCE(SUM(total_api_calls), 0)::BIGINT,
			COALESCE(SUM(CASE WHEN stats_day = $1 THEN today_tasks ELSE 0 END), 0)::BIGINT,
			COALESCE(SUM(total_tasks), 0)::BIGINT,
			COALESCE(AVG(avg_response_time) FILTER (WHERE response_count > 0), 0),
			COALESCE(AVG(error_rate) FILTER (WHERE response_count > 0), 0)
		FROM agents`, dateParam(day),
	).Scan(&out.Agents, &out.Online, &out.TodayAPICalls, &out.TotalAPICalls,
		&out.TodayTasks, &out.TotalTasks, &out.AvgResponseTime, &out.AvgErrorRate)
	if err != nil {
		return FleetSummary{}, err
	}
	return out, nil
}

package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	appagent "fleet-monitor/internal/app/agent"
	appsession "fleet-monitor/internal/app/session"
	"fleet-monitor/internal/civil"
	"fleet-monitor/internal/realtime"
	"fleet-monitor/internal/rollover"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type AdminHandlers struct {
	db       Pinger
	agents   *appagent.Service
	sessions *appsession.Service
	resetter rollover.Resetter
	pub      realtime.Publisher
	cal      *civil.Calendar
}

func NewAdminHandlers(db Pinger, agents *appagent.Service, sessions *appsession.Service, resetter rollover.Resetter, pub realtime.Publisher, cal *civil.Calendar) *AdminHandlers {
	return &AdminHandlers{db: db, agents: agents, sessions: sessions, resetter: resetter, pub: pub, cal: cal}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AdminHandlers) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricLoginTotal.Add(1)
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.sessions.Login(req.Email, req.Password)
		if err != nil {
			metricLoginFailedTotal.Add(1)
			switch {
			case errors.Is(err, appsession.ErrInvalidRequest):
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			case errors.Is(err, appsession.ErrInvalidCredentials):
				log.Warn().Str("email", req.Email).Msg("dashboard login rejected")
				WriteHTTPError(w, http.StatusUnauthorized, "invalid_credentials")
			default:
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *AdminHandlers) RegisterAgent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in appagent.RegisterInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		agent, err := h.agents.Register(r.Context(), in)
		if err != nil {
			writeAgentError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, agent)
	}
}

func (h *AdminHandlers) PatchAgent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in appagent.PatchInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		agent, err := h.agents.Patch(r.Context(), chi.URLParam(r, "agent_id"), in)
		if err != nil {
			writeAgentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	}
}

type rolloverResetRequest struct {
	Day string `json:"day"`
}

// RolloverReset zeroes today counters for the given day, or canonical today,
// and tells every connected dashboard to refetch.
func (h *AdminHandlers) RolloverReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rolloverResetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		day := h.cal.Today()
		if v := strings.TrimSpace(req.Day); v != "" {
			parsed, err := civil.ParseDay(v)
			if err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_day")
				return
			}
			day = parsed
		}
		n, err := h.resetter.ResetToday(r.Context(), day)
		if err != nil {
			log.Error().Err(err).Str("day", day.String()).Msg("today counter reset failed")
			WriteHTTPError(w, http.StatusInternalServerError, "store_error")
			return
		}
		metricRolloverResetTotal.Add(1)
		if h.pub != nil {
			h.pub.Publish(realtime.EventStatsReset, "", map[string]any{"day": day.String(), "reset": n})
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "day": day.String(), "reset": n})
	}
}

func writeAgentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appagent.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, appagent.ErrInvalidStatus):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_status")
	case errors.Is(err, appagent.ErrAgentExists):
		WriteHTTPError(w, http.StatusConflict, "agent_exists")
	case errors.Is(err, appagent.ErrAgentNotFound):
		WriteHTTPError(w, http.StatusNotFound, "agent_not_found")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}

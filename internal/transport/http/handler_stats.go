package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	apphealth "fleet-monitor/internal/app/health"
	appingest "fleet-monitor/internal/app/ingest"
	"fleet-monitor/internal/telemetry"
)

const maxStatsBody = 1 << 20

type StatsHandlers struct {
	ingest *appingest.Service
	prober *apphealth.Prober
}

func NewStatsHandlers(ingest *appingest.Service, prober *apphealth.Prober) *StatsHandlers {
	return &StatsHandlers{ingest: ingest, prober: prober}
}

// Ingest accepts one telemetry payload from an agent.
func (h *StatsHandlers) Ingest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricStatsRequestsTotal.Add(1)
		var p telemetry.Payload
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStatsBody)).Decode(&p); err != nil {
			metricStatsRequestErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		_, err := h.ingest.Ingest(r.Context(), p)
		if err != nil {
			metricStatsRequestErrors.Add(1)
			switch {
			case errors.Is(err, appingest.ErrInvalidRequest):
				WriteHTTPError(w, http.StatusBadRequest, validationMessage(err))
			default:
				WriteHTTPError(w, http.StatusInternalServerError, "store_error")
			}
			return
		}
		writeJSON(w, http.StatusOK, appingest.Response{Success: true})
	}
}

type manualCheckRequest struct {
	AgentID string `json:"agentId"`
}

// CheckManual runs an on-demand health probe for one agent.
func (h *StatsHandlers) CheckManual() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricManualChecksTotal.Add(1)
		var req manualCheckRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStatsBody)).Decode(&req); err != nil {
			metricManualCheckErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		res, err := h.prober.Probe(r.Context(), req.AgentID)
		if err != nil {
			metricManualCheckErrors.Add(1)
			switch {
			case errors.Is(err, apphealth.ErrInvalidRequest):
				WriteHTTPError(w, http.StatusBadRequest, "agentId is required")
			case errors.Is(err, apphealth.ErrAgentNotFound):
				WriteHTTPError(w, http.StatusNotFound, "agent_not_found")
			default:
				WriteHTTPError(w, http.StatusInternalServerError, "store_error")
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    res.Healthy(),
			"status":     res.Status,
			"api_status": res.APIStatus,
		})
	}
}

func validationMessage(err error) string {
	for _, known := range []error{
		telemetry.ErrMissingAgentID,
		telemetry.ErrMissingStatus,
		telemetry.ErrInvalidStatus,
		telemetry.ErrNoObligation,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return appingest.ErrInvalidRequest.Error()
}

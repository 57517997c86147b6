package httptransport

import (
	"errors"
	"net/http"
	"strconv"

	appdashboard "fleet-monitor/internal/app/dashboard"

	"github.com/go-chi/chi/v5"
)

type DashboardHandlers struct {
	svc *appdashboard.Service
}

func NewDashboardHandlers(svc *appdashboard.Service) *DashboardHandlers {
	return &DashboardHandlers{svc: svc}
}

func (h *DashboardHandlers) Agents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Agents(r.Context())
		if err != nil {
			writeDashboardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *DashboardHandlers) Agent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Agent(r.Context(), chi.URLParam(r, "agent_id"))
		if err != nil {
			writeDashboardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *DashboardHandlers) Hourly() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Hourly(r.Context(), chi.URLParam(r, "agent_id"))
		if err != nil {
			writeDashboardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *DashboardHandlers) Daily() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := 0
		if v := r.URL.Query().Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_days")
				return
			}
			days = n
		}
		resp, err := h.svc.Daily(r.Context(), chi.URLParam(r, "agent_id"), days)
		if err != nil {
			writeDashboardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *DashboardHandlers) Activity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		resp, err := h.svc.Activity(r.Context(), r.URL.Query().Get("agent_id"), limit, offset)
		if err != nil {
			writeDashboardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *DashboardHandlers) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Summary(r.Context())
		if err != nil {
			writeDashboardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeDashboardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appdashboard.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, appdashboard.ErrAgentNotFound):
		WriteHTTPError(w, http.StatusNotFound, "agent_not_found")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}

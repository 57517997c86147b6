package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	appagent "fleet-monitor/internal/app/agent"
	appdashboard "fleet-monitor/internal/app/dashboard"
	apphealth "fleet-monitor/internal/app/health"
	appingest "fleet-monitor/internal/app/ingest"
	appsession "fleet-monitor/internal/app/session"
	"fleet-monitor/internal/civil"
	"fleet-monitor/internal/realtime"
	"fleet-monitor/internal/rollover"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	DB        Pinger
	Calendar  *civil.Calendar
	Hub       *realtime.Hub
	Ingest    *appingest.Service
	Prober    *apphealth.Prober
	Dashboard *appdashboard.Service
	Agents    *appagent.Service
	Sessions  *appsession.Service
	Resetter  rollover.Resetter
	MCP       http.Handler
}

func NewRouter(d Deps) *chi.Mux {
	statsHandlers := NewStatsHandlers(d.Ingest, d.Prober)
	dashboardHandlers := NewDashboardHandlers(d.Dashboard)
	adminHandlers := NewAdminHandlers(d.DB, d.Agents, d.Sessions, d.Resetter, d.Hub, d.Calendar)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	r.Route("/stats", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Use(IngestCORS())
		r.Post("/", statsHandlers.Ingest())
		r.Post("/check-manual", statsHandlers.CheckManual())
	})

	if d.MCP != nil {
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		mcpRoute := r.With(APILogMiddleware(), SessionAuthMiddleware(d.Sessions))
		mcpRoute.Method(http.MethodPost, "/mcp", d.MCP)
		mcpRoute.Method(http.MethodGet, "/mcp", d.MCP)
		mcpRoute.Method(http.MethodDelete, "/mcp", d.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Use(DashboardCORS())
		r.Post("/auth/login", adminHandlers.Login())

		r.Group(func(r chi.Router) {
			r.Use(SessionAuthMiddleware(d.Sessions))
			r.Get("/agents", dashboardHandlers.Agents())
			r.Post("/agents", adminHandlers.RegisterAgent())
			r.Get("/agents/{agent_id}", dashboardHandlers.Agent())
			r.Patch("/agents/{agent_id}", adminHandlers.PatchAgent())
			r.Get("/agents/{agent_id}/hourly", dashboardHandlers.Hourly())
			r.Get("/agents/{agent_id}/daily", dashboardHandlers.Daily())
			r.Get("/activity", dashboardHandlers.Activity())
			r.Get("/fleet/summary", dashboardHandlers.Summary())
			r.Post("/rollover/reset", adminHandlers.RolloverReset())

			r.Get("/realtime/events", realtime.EventsHandler(d.Hub))
			r.Get("/realtime/ws", realtime.WebSocketHandler(d.Hub))

			r.Route("/debug", func(r chi.Router) {
				r.Use(BodyCaptureMiddleware(4096))
				r.Get("/vars", expvar.Handler().ServeHTTP)
			})
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}

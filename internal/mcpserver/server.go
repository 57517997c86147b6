package mcpserver

import (
	"net/http"

	appdashboard "fleet-monitor/internal/app/dashboard"
	apphealth "fleet-monitor/internal/app/health"

	"github.com/mark3labs/mcp-go/server"
)

// Server exposes fleet views and on-demand probes as MCP tools.
type Server struct {
	dashboard *appdashboard.Service
	prober    *apphealth.Prober

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(dashboard *appdashboard.Service, prober *apphealth.Prober) *Server {
	mcpSrv := server.NewMCPServer(
		"fleet-monitor",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s := &Server{
		dashboard:  dashboard,
		prober:     prober,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerFleetTools()
	s.registerProbeTools()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

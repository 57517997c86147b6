package mcpserver

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerProbeTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"probe_agent",
			mcp.WithDescription("Run a liveness and verification probe against an agent's base url"),
			mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent id")),
		),
		s.handleProbeAgent,
	)
}

func (s *Server) handleProbeAgent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID := strings.TrimSpace(request.GetString("agent_id", ""))
	if agentID == "" {
		return toolError("invalid_request", "agent_id is required"), nil
	}
	res, err := s.prober.Probe(ctx, agentID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{
		"success":    res.Healthy(),
		"agent_id":   res.AgentID,
		"status":     res.Status,
		"api_status": res.APIStatus,
		"mock":       res.Mock,
		"detail":     res.Detail,
	}), nil
}

package mcpserver

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerFleetTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"fleet_overview",
			mcp.WithDescription("Fleet totals for canonical today plus every agent with its counters"),
		),
		s.handleFleetOverview,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_agent",
			mcp.WithDescription("One agent with its api breakdown and today's hourly buckets"),
			mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent id")),
		),
		s.handleGetAgent,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_activity",
			mcp.WithDescription("Recent activity log rows, newest first"),
			mcp.WithString("agent_id", mcp.Description("Optional agent id filter")),
			mcp.WithNumber("limit", mcp.Description("Page size, default 50, max 200")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleListActivity,
	)
}

func (s *Server) handleFleetOverview(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := s.dashboard.Summary(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	agents, err := s.dashboard.Agents(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{
		"summary": summary,
		"agents":  agents.Items,
	}), nil
}

func (s *Server) handleGetAgent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID := strings.TrimSpace(request.GetString("agent_id", ""))
	if agentID == "" {
		return toolError("invalid_request", "agent_id is required"), nil
	}
	detail, err := s.dashboard.Agent(ctx, agentID)
	if err != nil {
		return mapDomainError(err), nil
	}
	hourly, err := s.dashboard.Hourly(ctx, agentID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{
		"day":        detail.Day,
		"agent":      detail.Agent,
		"breakdowns": detail.Breakdowns,
		"hours":      hourly.Hours,
	}), nil
}

func (s *Server) handleListActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset := clampPagination(request.GetInt("limit", defaultPageLimit), request.GetInt("offset", 0), maxPageLimit)
	resp, err := s.dashboard.Activity(ctx, request.GetString("agent_id", ""), limit, offset)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

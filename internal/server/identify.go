package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerIdentify registers the bb_identify handshake tool.
func (s *Server) registerIdentify() {
	s.mcp.AddTool(
		mcp.NewTool("bb_identify",
			mcp.WithDescription("Declare which agent you are. Call once at session start, before any write. Rejected when the server was started with a fixed identity, or after a different id was already declared."),
			mcp.WithString("agent_id", mcp.Required(), mcp.Description("Your agent identifier (e.g., 'claude-backend', 'cursor-frontend')")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			agentID, err := requireString(args, "agent_id")
			if err != nil {
				return nil, err
			}

			result, err := s.ids.Identify(agentID)
			if err != nil {
				return nil, err
			}

			s.logger.Printf("Identified as %s (source=%s)", result.AgentID, result.Source)
			return jsonResult(result)
		},
	)
}

package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/domain"
)

// registerStatusTools registers bb_set_status, bb_get_status, and
// bb_reset_status.
func (s *Server) registerStatusTools() {
	s.mcp.AddTool(
		mcp.NewTool("bb_set_status",
			mcp.WithDescription("Update your presence on the blackboard. Only the fields you pass change; last_seen always refreshes. Blockers are kept only while status is 'blocked'."),
			mcp.WithString("current_task", mcp.Description("What you are working on right now")),
			mcp.WithNumber("progress", mcp.Description("Completion estimate 0-100")),
			mcp.WithString("status", mcp.Description("One of idle|planning|coding|testing|reviewing|blocked")),
			mcp.WithString("blockers", mcp.Description("What you are blocked on (only meaningful with status 'blocked')")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			agentID, err := s.ids.Require()
			if err != nil {
				return nil, err
			}
			args := req.GetArguments()

			var u app.StatusUpdate
			if v, ok := args["current_task"].(string); ok {
				u.CurrentTask = &v
			}
			if v, ok := args["progress"].(float64); ok {
				n := int(v)
				u.Progress = &n
			}
			if v, ok := args["status"].(string); ok {
				status, err := domain.ParseAgentStatus(v)
				if err != nil {
					return nil, err
				}
				if status == domain.StatusOffline {
					return nil, domain.Invalidf("status offline is assigned by liveness demotion, not set directly")
				}
				u.Status = &status
			}
			if v, ok := args["blockers"].(string); ok {
				u.Blockers = &v
			}

			var agent domain.Agent
			if err := app.Retry(func() error {
				var err error
				agent, err = s.svc.SetStatus(agentID, u)
				return err
			}); err != nil {
				return nil, err
			}

			s.logger.Printf("Status update: %s -> %s", agentID, agent.Status)
			return jsonResult(agent)
		},
	)

	s.mcp.AddTool(
		mcp.NewTool("bb_get_status",
			mcp.WithDescription("Read agent presence. With agent_id, one agent; without, every agent with its liveness (active/stale/offline). Listing demotes agents unseen for 30+ minutes to offline."),
			mcp.WithString("agent_id", mcp.Description("Agent to look up; omit for the full roster")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			s.touchCaller()

			if agentID := optionalString(args, "agent_id"); agentID != "" {
				var agent domain.AgentWithLiveness
				if err := app.Retry(func() error {
					var err error
					agent, err = s.svc.GetStatus(agentID)
					return err
				}); err != nil {
					return nil, err
				}
				return jsonResult(agent)
			}

			var agents []domain.AgentWithLiveness
			if err := app.Retry(func() error {
				var err error
				agents, err = s.svc.ListWithLiveness()
				return err
			}); err != nil {
				return nil, err
			}
			return jsonResult(map[string]any{"agents": agents})
		},
	)

	s.mcp.AddTool(
		mcp.NewTool("bb_reset_status",
			mcp.WithDescription("Reset your presence to idle with no task, zero progress, and no blockers."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			agentID, err := s.ids.Require()
			if err != nil {
				return nil, err
			}

			var agent domain.Agent
			if err := app.Retry(func() error {
				var err error
				agent, err = s.svc.ResetStatus(agentID)
				return err
			}); err != nil {
				return nil, err
			}

			s.logger.Printf("Status reset: %s", agentID)
			return jsonResult(agent)
		},
	)
}

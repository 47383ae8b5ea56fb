package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/domain"
)

// registerFindRefs registers the cross-entity reference lookup.
func (s *Server) registerFindRefs() {
	s.mcp.AddTool(
		mcp.NewTool("bb_find_refs",
			mcp.WithDescription("Find every message and artifact referencing a target. Matching is exact on all three parts; '13' matches refs stored as either the number 13 or the string '13'."),
			mcp.WithString("ref", mcp.Required(), mcp.Description("The target as 'where:what:ref' (e.g., 'tt:task:123', 'bb:msg:42')")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			refStr, err := requireString(args, "ref")
			if err != nil {
				return nil, err
			}
			ref, err := domain.ParseRef(refStr)
			if err != nil {
				return nil, err
			}
			s.touchCaller()

			var results app.RefResults
			if err := app.Retry(func() error {
				var err error
				results, err = s.svc.FindRefs(ref.Where, ref.What, ref.RefText())
				return err
			}); err != nil {
				return nil, err
			}
			return jsonResult(results)
		},
	)
}

// registerSummary registers the at-a-glance overview tool.
func (s *Server) registerSummary() {
	s.mcp.AddTool(
		mcp.NewTool("bb_summary",
			mcp.WithDescription("Get a blackboard overview: every agent with liveness, who is blocked, recent and high-priority messages, and fresh artifacts."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			s.touchCaller()

			var summary app.SummaryData
			if err := app.Retry(func() error {
				var err error
				summary, err = s.svc.Summary()
				return err
			}); err != nil {
				return nil, err
			}
			return jsonResult(summary)
		},
	)
}

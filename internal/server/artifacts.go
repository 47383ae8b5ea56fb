package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/domain"
)

// registerArtifactTools registers bb_register_artifact, bb_list_artifacts,
// and bb_get_artifact.
func (s *Server) registerArtifactTools() {
	s.mcp.AddTool(
		mcp.NewTool("bb_register_artifact",
			mcp.WithDescription("Register a produced file in the artifact registry. Re-registering the same path overwrites the previous entry entirely."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Project-relative path (e.g., 'src/auth/login.ts'); absolute paths and '..' are rejected")),
			mcp.WithString("description", mcp.Required(), mcp.Description("What the artifact is (max 1024 chars)")),
			mcp.WithString("version", mcp.Description("Free-form version label (e.g., 'v2', a commit hash)")),
			mcp.WithArray("refs", mcp.Description("References as {where, what, ref} objects, up to 20")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			agentID, err := s.ids.Require()
			if err != nil {
				return nil, err
			}
			args := req.GetArguments()

			path, err := requireString(args, "path")
			if err != nil {
				return nil, err
			}
			description, err := requireString(args, "description")
			if err != nil {
				return nil, err
			}
			refs, err := refsArg(args, "refs")
			if err != nil {
				return nil, err
			}

			var artifact domain.Artifact
			if err := app.Retry(func() error {
				var err error
				artifact, err = s.svc.RegisterArtifact(app.RegisterArtifactParams{
					Path:        path,
					ProducedBy:  agentID,
					Description: description,
					Version:     optionalString(args, "version"),
					Refs:        refs,
				})
				return err
			}); err != nil {
				return nil, err
			}

			s.logger.Printf("Artifact registered: %s by %s", artifact.Path, agentID)
			return jsonResult(artifact)
		},
	)

	s.mcp.AddTool(
		mcp.NewTool("bb_list_artifacts",
			mcp.WithDescription("List registered artifacts, newest first."),
			mcp.WithString("produced_by", mcp.Description("Only artifacts registered by this agent")),
			mcp.WithString("ref", mcp.Description("Only artifacts referencing this target, as 'where:what:ref'")),
			mcp.WithNumber("limit", mcp.Description("Maximum results (default 50, max 100)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			s.touchCaller()

			var filter domain.ArtifactFilter
			filter.ProducedBy = optionalString(args, "produced_by")
			if refStr := optionalString(args, "ref"); refStr != "" {
				ref, err := domain.ParseRef(refStr)
				if err != nil {
					return nil, err
				}
				filter.Ref = &ref
			}
			limit := optionalInt(args, "limit", 0)

			var artifacts []domain.Artifact
			if err := app.Retry(func() error {
				var err error
				artifacts, err = s.svc.ListArtifacts(filter, limit)
				return err
			}); err != nil {
				return nil, err
			}
			return jsonResult(map[string]any{"artifacts": artifacts})
		},
	)

	s.mcp.AddTool(
		mcp.NewTool("bb_get_artifact",
			mcp.WithDescription("Fetch one artifact by its exact path."),
			mcp.WithString("path", mcp.Required(), mcp.Description("The path the artifact was registered under")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			path, err := requireString(args, "path")
			if err != nil {
				return nil, err
			}
			s.touchCaller()

			var artifact domain.Artifact
			if err := app.Retry(func() error {
				var err error
				artifact, err = s.svc.GetArtifact(path)
				return err
			}); err != nil {
				return nil, err
			}
			return jsonResult(artifact)
		},
	)
}

package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/domain"
)

// registerMessagingTools registers bb_post_message, bb_read_messages, and
// bb_get_thread.
func (s *Server) registerMessagingTools() {
	s.mcp.AddTool(
		mcp.NewTool("bb_post_message",
			mcp.WithDescription("Post a message to the shared log. Use tags for topics, refs to link tickets/files/messages, and in_reply_to to thread a reply."),
			mcp.WithString("content", mcp.Required(), mcp.Description("Message body (max 65536 chars)")),
			mcp.WithArray("tags", mcp.Description("Topic tags, up to 10 (e.g., ['auth', 'blocker'])")),
			mcp.WithString("priority", mcp.Description("low|normal|high|critical (default normal)")),
			mcp.WithNumber("in_reply_to", mcp.Description("Id of the message this replies to; must exist")),
			mcp.WithArray("refs", mcp.Description("References as {where, what, ref} objects, up to 20")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			agentID, err := s.ids.Require()
			if err != nil {
				return nil, err
			}
			args := req.GetArguments()

			content, err := requireString(args, "content")
			if err != nil {
				return nil, err
			}
			tags, err := tagsArg(args, "tags")
			if err != nil {
				return nil, err
			}
			priority, err := domain.ParsePriority(optionalString(args, "priority"))
			if err != nil {
				return nil, err
			}
			refs, err := refsArg(args, "refs")
			if err != nil {
				return nil, err
			}

			var msg domain.Message
			if err := app.Retry(func() error {
				var err error
				msg, err = s.svc.PostMessage(app.PostMessageParams{
					FromAgent: agentID,
					Content:   content,
					Tags:      tags,
					Priority:  priority,
					InReplyTo: optionalInt64Ptr(args, "in_reply_to"),
					Refs:      refs,
				})
				return err
			}); err != nil {
				return nil, err
			}

			s.logger.Printf("Message #%d posted by %s", msg.ID, agentID)
			return jsonResult(msg)
		},
	)

	s.mcp.AddTool(
		mcp.NewTool("bb_read_messages",
			mcp.WithDescription("Read recent messages, newest first. All filters combine with AND; multiple tags combine with OR."),
			mcp.WithString("since", mcp.Description("Only messages newer than this, as <n><s|m|h|d|w> (e.g., '2h')")),
			mcp.WithArray("tags", mcp.Description("Match messages carrying any of these tags")),
			mcp.WithString("from", mcp.Description("Only messages from this agent")),
			mcp.WithString("priority", mcp.Description("Minimum priority: low|normal|high|critical")),
			mcp.WithString("ref", mcp.Description("Only messages referencing this target, as 'where:what:ref'")),
			mcp.WithNumber("limit", mcp.Description("Maximum results (default 20, max 100)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			s.touchCaller()

			filter, err := messageFilterFromArgs(args, s.svc)
			if err != nil {
				return nil, err
			}
			limit := optionalInt(args, "limit", 0)

			var messages []domain.Message
			if err := app.Retry(func() error {
				var err error
				messages, err = s.svc.ListMessages(filter, limit)
				return err
			}); err != nil {
				return nil, err
			}
			return jsonResult(map[string]any{"messages": messages})
		},
	)

	s.mcp.AddTool(
		mcp.NewTool("bb_get_thread",
			mcp.WithDescription("Fetch a message and its direct replies, oldest first. One level only: replies to replies have their own threads."),
			mcp.WithNumber("message_id", mcp.Required(), mcp.Description("Id of the thread root (or any message)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			id := optionalInt64Ptr(args, "message_id")
			if id == nil {
				return nil, domain.Invalidf("message_id is required")
			}
			s.touchCaller()

			var thread []domain.Message
			if err := app.Retry(func() error {
				var err error
				thread, err = s.svc.GetThread(*id)
				return err
			}); err != nil {
				return nil, err
			}
			return jsonResult(map[string]any{"thread": thread})
		},
	)
}

// messageFilterFromArgs builds the list filter shared by bb_read_messages.
func messageFilterFromArgs(args map[string]any, svc *app.Service) (domain.MessageFilter, error) {
	var filter domain.MessageFilter

	if since := optionalString(args, "since"); since != "" {
		d, err := domain.ParseDuration(since)
		if err != nil {
			return domain.MessageFilter{}, err
		}
		t := svc.Now().Add(-d)
		filter.Since = &t
	}
	tags, err := tagsArg(args, "tags")
	if err != nil {
		return domain.MessageFilter{}, err
	}
	filter.Tags = tags
	filter.FromAgent = optionalString(args, "from")

	if p := optionalString(args, "priority"); p != "" {
		priority, err := domain.ParsePriority(p)
		if err != nil {
			return domain.MessageFilter{}, err
		}
		filter.MinPriority = priority
	}
	if refStr := optionalString(args, "ref"); refStr != "" {
		ref, err := domain.ParseRef(refStr)
		if err != nil {
			return domain.MessageFilter{}, err
		}
		filter.Ref = &ref
	}
	return filter, nil
}

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/domain"
)

// newPostCmd creates the "bb post" subcommand.
func newPostCmd(opts *globalOpts) *cobra.Command {
	var (
		tags     []string
		priority string
		replyTo  int64
		refStrs  []string
	)

	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Post a message to the shared log",
		Long:  "Appends a message. Use --tag for topics, --ref to link targets\n(where:what:ref), and --reply-to to thread a reply.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			parsedPriority, err := domain.ParsePriority(priority)
			if err != nil {
				return err
			}
			refs, err := parseRefFlags(refStrs)
			if err != nil {
				return err
			}
			var inReplyTo *int64
			if cmd.Flags().Changed("reply-to") {
				inReplyTo = &replyTo
			}

			params := app.PostMessageParams{
				FromAgent: opts.agentID(cfg),
				Content:   strings.Join(args, " "),
				Tags:      tags,
				Priority:  parsedPriority,
				InReplyTo: inReplyTo,
				Refs:      refs,
			}

			var msg domain.Message
			if err := app.Retry(func() error {
				var err error
				msg, err = svc.PostMessage(params)
				return err
			}); err != nil {
				return err
			}

			if opts.jsonOut {
				return emitJSON(cmd.OutOrStdout(), msg)
			}
			successf(opts, "Message #%d posted", msg.ID)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&tags, "tag", nil, "topic tag (repeatable, up to 10)")
	cmd.Flags().StringVar(&priority, "priority", "", "low|normal|high|critical (default normal)")
	cmd.Flags().Int64Var(&replyTo, "reply-to", 0, "id of the message this replies to")
	cmd.Flags().StringArrayVar(&refStrs, "ref", nil, "reference as where:what:ref (repeatable, up to 20)")
	return cmd
}

// parseRefFlags parses repeated --ref flags into references.
func parseRefFlags(refStrs []string) ([]domain.Reference, error) {
	if len(refStrs) == 0 {
		return nil, nil
	}
	refs := make([]domain.Reference, 0, len(refStrs))
	for _, s := range refStrs {
		r, err := domain.ParseRef(s)
		if err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, nil
}

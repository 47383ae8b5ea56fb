package main

import (
	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/domain"
)

// newLogCmd creates the "bb log" subcommand.
func newLogCmd(opts *globalOpts) *cobra.Command {
	var (
		since    string
		tags     []string
		from     string
		priority string
		refStr   string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Read recent messages",
		Long:  "Lists messages newest first. All filters combine with AND;\nrepeated --tag flags combine with OR.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			var filter domain.MessageFilter
			if filter.Since, err = sinceTime(since, svc.Now()); err != nil {
				return err
			}
			filter.Tags = tags
			filter.FromAgent = from
			if priority != "" {
				if filter.MinPriority, err = domain.ParsePriority(priority); err != nil {
					return err
				}
			}
			if refStr != "" {
				ref, err := domain.ParseRef(refStr)
				if err != nil {
					return err
				}
				filter.Ref = &ref
			}

			var messages []domain.Message
			if err := app.Retry(func() error {
				var err error
				messages, err = svc.ListMessages(filter, limit)
				return err
			}); err != nil {
				return err
			}

			if opts.jsonOut {
				return emitJSON(cmd.OutOrStdout(), messages)
			}
			renderMessages(cmd.OutOrStdout(), messages)
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only messages newer than <n><s|m|h|d|w> (e.g., 2h)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "match messages carrying this tag (repeatable)")
	cmd.Flags().StringVar(&from, "from", "", "only messages from this agent")
	cmd.Flags().StringVar(&priority, "priority", "", "minimum priority: low|normal|high|critical")
	cmd.Flags().StringVar(&refStr, "ref", "", "only messages referencing where:what:ref")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (default 20, max 100)")
	return cmd
}

package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/domain"
)

// newThreadCmd creates the "bb thread" subcommand.
func newThreadCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "thread <message-id>",
		Short: "Show a message and its direct replies",
		Long:  "Shows the message and its direct replies oldest first. One level\nonly: replies to replies have their own threads.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return domain.Invalidf("invalid message id %q", args[0])
			}

			svc, _, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			var thread []domain.Message
			if err := app.Retry(func() error {
				var err error
				thread, err = svc.GetThread(id)
				return err
			}); err != nil {
				return err
			}

			if opts.jsonOut {
				return emitJSON(cmd.OutOrStdout(), thread)
			}
			renderThread(cmd.OutOrStdout(), thread)
			return nil
		},
	}
}

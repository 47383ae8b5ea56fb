package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/app"
)

// newSummaryCmd creates the "bb summary" subcommand.
func newSummaryCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show a blackboard overview",
		Long:  "Shows every agent with liveness, who is blocked, recent and\nhigh-priority messages, and fresh artifacts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			var summary app.SummaryData
			if err := app.Retry(func() error {
				var err error
				summary, err = svc.Summary()
				return err
			}); err != nil {
				return err
			}

			if opts.jsonOut {
				return emitJSON(cmd.OutOrStdout(), summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Agents:")
			renderAgents(out, summary.Agents)

			if len(summary.HighPriorityMessages) > 0 {
				fmt.Fprintln(out, "\nHigh priority:")
				renderMessages(out, summary.HighPriorityMessages)
			}
			if len(summary.RecentMessages) > 0 {
				fmt.Fprintln(out, "\nRecent messages:")
				renderMessages(out, summary.RecentMessages)
			}
			if len(summary.RecentArtifacts) > 0 {
				fmt.Fprintln(out, "\nRecent artifacts:")
				renderArtifacts(out, summary.RecentArtifacts)
			}
			return nil
		},
	}
}

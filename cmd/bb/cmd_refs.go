package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/domain"
)

// newRefsCmd creates the "bb refs" subcommand.
func newRefsCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "refs <where:what:ref>",
		Short: "Find everything referencing a target",
		Long:  "Lists every message and artifact carrying the exact reference.\n'13' matches refs stored as either the number 13 or the string '13'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := domain.ParseRef(args[0])
			if err != nil {
				return err
			}

			svc, _, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			var results app.RefResults
			if err := app.Retry(func() error {
				var err error
				results, err = svc.FindRefs(ref.Where, ref.What, ref.RefText())
				return err
			}); err != nil {
				return err
			}

			if opts.jsonOut {
				return emitJSON(cmd.OutOrStdout(), results)
			}

			out := cmd.OutOrStdout()
			if len(results.Messages) == 0 && len(results.Artifacts) == 0 {
				fmt.Fprintf(out, "Nothing references %s.\n", ref)
				return nil
			}
			if len(results.Messages) > 0 {
				fmt.Fprintf(out, "Messages referencing %s:\n\n", ref)
				renderMessages(out, results.Messages)
			}
			if len(results.Artifacts) > 0 {
				fmt.Fprintf(out, "Artifacts referencing %s:\n\n", ref)
				renderArtifacts(out, results.Artifacts)
			}
			return nil
		},
	}
}

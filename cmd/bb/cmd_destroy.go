package main

import (
	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/config"
	"github.com/jaakkos/blackboard/internal/domain"
)

// newDestroyCmd creates the "bb destroy" subcommand.
func newDestroyCmd(opts *globalOpts) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the blackboard and all its data",
		Long:  "Removes the .bb directory entirely: database, config, and logs.\nRequires --confirm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return domain.Invalidf("refusing to destroy without --confirm")
			}
			dir, err := opts.projectDir()
			if err != nil {
				return err
			}
			if err := config.Destroy(dir); err != nil {
				return err
			}
			successf(opts, "Destroyed blackboard under %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "actually delete everything")
	return cmd
}

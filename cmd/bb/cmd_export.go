package main

import (
	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/app"
)

// newExportCmd creates the "bb export" subcommand.
func newExportCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Dump the whole blackboard as JSON",
		Long:  "Writes every agent, message, and artifact to stdout as one JSON\ndocument, for backup or offline inspection.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			var data app.ExportData
			if err := app.Retry(func() error {
				var err error
				data, err = svc.Export()
				return err
			}); err != nil {
				return err
			}
			return emitJSON(cmd.OutOrStdout(), data)
		},
	}
}

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/domain"
)

// newClearCmd creates the "bb clear" subcommand for bulk cleanup.
func newClearCmd(opts *globalOpts) *cobra.Command {
	var (
		messagesBefore string
		artifacts      bool
		resetOffline   bool
		confirm        bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Bulk cleanup of old data",
		Long:  "Deletes old messages (--messages-before), all artifacts\n(--artifacts), or offline agent rows (--reset-offline). With no flags,\nfalls back to the configured message_retention_days.\nRequires --confirm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return domain.Invalidf("refusing to clear without --confirm")
			}

			svc, cfg, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			var messageCutoff *time.Time
			if messagesBefore != "" {
				d, err := domain.ParseDuration(messagesBefore)
				if err != nil {
					return err
				}
				t := svc.Now().Add(-d)
				messageCutoff = &t
			} else if !artifacts && !resetOffline && cfg.MessageRetentionDays > 0 {
				t := svc.Now().AddDate(0, 0, -cfg.MessageRetentionDays)
				messageCutoff = &t
			}

			if messageCutoff == nil && !artifacts && !resetOffline {
				return domain.Invalidf("nothing to clear: pass --messages-before, --artifacts, or --reset-offline (or set message_retention_days)")
			}

			if messageCutoff != nil {
				var n int64
				if err := app.Retry(func() error {
					var err error
					n, err = svc.DeleteMessagesBefore(*messageCutoff)
					return err
				}); err != nil {
					return err
				}
				successf(opts, "Deleted %d messages older than %s", n, messageCutoff.Local().Format(time.RFC3339))
			}

			if artifacts {
				var n int64
				if err := app.Retry(func() error {
					var err error
					n, err = svc.ClearArtifacts()
					return err
				}); err != nil {
					return err
				}
				successf(opts, "Deleted %d artifacts", n)
			}

			if resetOffline {
				var n int64
				if err := app.Retry(func() error {
					var err error
					n, err = svc.DeleteOfflineAgents()
					return err
				}); err != nil {
					return err
				}
				successf(opts, "Removed %d offline agents", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&messagesBefore, "messages-before", "", "delete messages older than <n><s|m|h|d|w> (e.g., 2w)")
	cmd.Flags().BoolVar(&artifacts, "artifacts", false, "delete every artifact")
	cmd.Flags().BoolVar(&resetOffline, "reset-offline", false, "remove agents currently marked offline")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "actually delete")
	return cmd
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/domain"
)

// newStatusCmd creates the "bb status" command group. The bare command
// shows the roster; set/get/clear manage one agent's presence.
func newStatusCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show or update agent presence",
		Long:  "Without a subcommand, lists every agent with its liveness.\nListing demotes agents unseen for 30+ minutes to offline.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			var agents []domain.AgentWithLiveness
			if err := app.Retry(func() error {
				var err error
				agents, err = svc.ListWithLiveness()
				return err
			}); err != nil {
				return err
			}

			if opts.jsonOut {
				return emitJSON(cmd.OutOrStdout(), agents)
			}
			renderAgents(cmd.OutOrStdout(), agents)
			return nil
		},
	}

	cmd.AddCommand(
		newStatusSetCmd(opts),
		newStatusGetCmd(opts),
		newStatusClearCmd(opts),
	)
	return cmd
}

// newStatusSetCmd creates "bb status set".
func newStatusSetCmd(opts *globalOpts) *cobra.Command {
	var (
		task     string
		progress int
		status   string
		blockers string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update your presence",
		Long:  "Updates only the fields you pass; last_seen always refreshes.\nBlockers are kept only while --status is 'blocked'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			var u app.StatusUpdate
			if cmd.Flags().Changed("task") {
				u.CurrentTask = &task
			}
			if cmd.Flags().Changed("progress") {
				u.Progress = &progress
			}
			if cmd.Flags().Changed("status") {
				parsed, err := domain.ParseAgentStatus(status)
				if err != nil {
					return err
				}
				if parsed == domain.StatusOffline {
					return domain.Invalidf("status offline is assigned by liveness demotion, not set directly")
				}
				u.Status = &parsed
			}
			if cmd.Flags().Changed("blockers") {
				u.Blockers = &blockers
			}

			agentID := opts.agentID(cfg)
			var agent domain.Agent
			if err := app.Retry(func() error {
				var err error
				agent, err = svc.SetStatus(agentID, u)
				return err
			}); err != nil {
				return err
			}

			if opts.jsonOut {
				return emitJSON(cmd.OutOrStdout(), agent)
			}
			successf(opts, "%s is now %s", agent.ID, agent.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&task, "task", "", "what you are working on")
	cmd.Flags().IntVar(&progress, "progress", 0, "completion estimate 0-100")
	cmd.Flags().StringVar(&status, "status", "", "idle|planning|coding|testing|reviewing|blocked")
	cmd.Flags().StringVar(&blockers, "blockers", "", "what you are blocked on")
	return cmd
}

// newStatusGetCmd creates "bb status get".
func newStatusGetCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "get [agent-id]",
		Short: "Show one agent's presence",
		Long:  "Shows the given agent, or yourself when no id is passed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			agentID := opts.agentID(cfg)
			if len(args) == 1 {
				agentID = args[0]
			}

			var agent domain.AgentWithLiveness
			if err := app.Retry(func() error {
				var err error
				agent, err = svc.GetStatus(agentID)
				return err
			}); err != nil {
				return err
			}

			if opts.jsonOut {
				return emitJSON(cmd.OutOrStdout(), agent)
			}
			renderAgent(cmd.OutOrStdout(), agent)
			return nil
		},
	}
}

// newStatusClearCmd creates "bb status clear".
func newStatusClearCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Reset your presence to idle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			agentID := opts.agentID(cfg)
			var agent domain.Agent
			if err := app.Retry(func() error {
				var err error
				agent, err = svc.ResetStatus(agentID)
				return err
			}); err != nil {
				return err
			}

			if opts.jsonOut {
				return emitJSON(cmd.OutOrStdout(), agent)
			}
			successf(opts, "%s reset to idle", agent.ID)
			return nil
		},
	}
}

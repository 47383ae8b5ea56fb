package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/config"
	"github.com/jaakkos/blackboard/internal/identity"
	"github.com/jaakkos/blackboard/internal/server"
	"github.com/jaakkos/blackboard/internal/store"
)

// newMCPCmd creates the "bb mcp" subcommand: the long-lived stdio server.
func newMCPCmd(opts *globalOpts) *cobra.Command {
	var agent string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdio",
		Long:  "Serves the blackboard to an MCP client over stdio. With --agent the\nidentity is fixed for the process; otherwise BB_AGENT_ID or a one-time\nbb_identify call resolves it. Logs go to .bb/mcp.log, never stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := opts.projectDir()
			if err != nil {
				return err
			}
			if err := config.EnsureInitialized(dir); err != nil {
				return err
			}
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}

			logFile := cfg.LogFile
			if logFile == "" {
				logFile = filepath.Join(dir, config.BlackboardDirName, "mcp.log")
			}
			logger := server.SetupLogger(logFile)
			logger.Printf("Starting blackboard MCP server (version %s)", Version)
			logger.Printf("Project dir: %s", dir)

			dbPath := config.DatabasePath(dir)
			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			svc := app.New(st, dir)
			defer svc.Close()

			ids := identity.New(agent, os.Getenv(config.EnvAgentID))
			if id, ok := ids.Resolve(); ok {
				logger.Printf("Identity: %s", id)
			} else {
				logger.Println("Identity: unresolved, waiting for bb_identify")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			signal.Ignore(syscall.SIGHUP)
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				logger.Printf("Received signal %v, shutting down", sig)
				cancel()
			}()

			srv := server.New(svc, ids, logger, Version)
			err = srv.Run(ctx, dbPath)
			logger.Println("Server stopped")
			return err
		},
	}

	cmd.Flags().StringVar(&agent, "agent", "", "fix the server identity to this agent id")
	return cmd
}

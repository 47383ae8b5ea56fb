package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/config"
	"github.com/jaakkos/blackboard/internal/store"
)

// globalOpts holds the persistent flags shared by every subcommand.
type globalOpts struct {
	agent   string
	dir     string
	jsonOut bool
	quiet   bool
}

// newRootCmd creates the root bb command with all subcommands attached.
func newRootCmd() *cobra.Command {
	opts := &globalOpts{}

	cmd := &cobra.Command{
		Use:           "bb",
		Short:         "Shared blackboard for multi-agent coordination",
		Long:          "bb is a local, file-backed blackboard for coordinating multiple\nagents working on one project: agent presence, a threaded message log,\nand an artifact registry, all in .bb/blackboard.db.",
		Version:       fmt.Sprintf("bb %s", Version),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.agent, "as", "", "act as this agent id (default: BB_AGENT_ID, then config, then 'human')")
	cmd.PersistentFlags().StringVar(&opts.dir, "dir", "", "project directory (default: BB_DIR, then walk up for .bb)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "emit JSON instead of tables")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-essential output")

	cmd.AddCommand(
		newInitCmd(opts),
		newDestroyCmd(opts),
		newInstallCmd(opts),
		newStatusCmd(opts),
		newPostCmd(opts),
		newLogCmd(opts),
		newThreadCmd(opts),
		newArtifactCmd(opts),
		newRefsCmd(opts),
		newSummaryCmd(opts),
		newExportCmd(opts),
		newClearCmd(opts),
		newMCPCmd(opts),
	)

	return cmd
}

// projectDir resolves the project root from the flag, BB_DIR, or the
// upward walk.
func (o *globalOpts) projectDir() (string, error) {
	return config.FindProjectDir(o.dir)
}

// agentID resolves the acting identity: --as, then BB_AGENT_ID, then the
// config default (normally "human").
func (o *globalOpts) agentID(cfg *config.Config) string {
	if o.agent != "" {
		return o.agent
	}
	if env := os.Getenv(config.EnvAgentID); env != "" {
		return env
	}
	return cfg.DefaultAgent
}

// openService opens the blackboard for an initialized project. The caller
// must Close the service.
func openService(opts *globalOpts) (*app.Service, *config.Config, string, error) {
	dir, err := opts.projectDir()
	if err != nil {
		return nil, nil, "", err
	}
	if err := config.EnsureInitialized(dir); err != nil {
		return nil, nil, "", err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, nil, "", err
	}
	st, err := store.Open(config.DatabasePath(dir))
	if err != nil {
		return nil, nil, "", err
	}
	return app.New(st, dir), cfg, dir, nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/config"
	"github.com/jaakkos/blackboard/internal/store"
)

// newInitCmd creates the "bb init" subcommand.
func newInitCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the blackboard in this project",
		Long:  "Creates .bb/ and the blackboard database in the current project\n(or the directory given with --dir). Safe to run twice.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := opts.projectDir()
			if err != nil {
				return err
			}

			created, err := config.InitDir(dir)
			if err != nil {
				return err
			}
			existed := config.IsInitialized(dir)

			// Opening creates the database and applies the schema.
			st, err := store.Open(config.DatabasePath(dir))
			if err != nil {
				return fmt.Errorf("create database: %w", err)
			}
			if err := st.Close(); err != nil {
				return err
			}

			switch {
			case existed && !created:
				infof(opts, "Blackboard already initialized at %s", config.DatabasePath(dir))
			default:
				successf(opts, "Initialized blackboard at %s", config.DatabasePath(dir))
			}
			return nil
		},
	}
}

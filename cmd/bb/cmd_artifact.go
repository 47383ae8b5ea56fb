package main

import (
	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/domain"
)

// newArtifactCmd creates the "bb artifact" command group.
func newArtifactCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Manage the artifact registry",
	}
	cmd.AddCommand(
		newArtifactAddCmd(opts),
		newArtifactShowCmd(opts),
		newArtifactListCmd(opts),
	)
	return cmd
}

// newArtifactAddCmd creates "bb artifact add".
func newArtifactAddCmd(opts *globalOpts) *cobra.Command {
	var (
		description string
		version     string
		refStrs     []string
	)

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a produced file",
		Long:  "Registers (or re-registers) an artifact under its project-relative\npath. Re-registering the same path overwrites the previous entry.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			refs, err := parseRefFlags(refStrs)
			if err != nil {
				return err
			}

			var artifact domain.Artifact
			if err := app.Retry(func() error {
				var err error
				artifact, err = svc.RegisterArtifact(app.RegisterArtifactParams{
					Path:        args[0],
					ProducedBy:  opts.agentID(cfg),
					Description: description,
					Version:     version,
					Refs:        refs,
				})
				return err
			}); err != nil {
				return err
			}

			if opts.jsonOut {
				return emitJSON(cmd.OutOrStdout(), artifact)
			}
			successf(opts, "Artifact %s registered", artifact.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "desc", "", "what the artifact is (required)")
	cmd.Flags().StringVar(&version, "version", "", "free-form version label")
	cmd.Flags().StringArrayVar(&refStrs, "ref", nil, "reference as where:what:ref (repeatable)")
	_ = cmd.MarkFlagRequired("desc")
	return cmd
}

// newArtifactShowCmd creates "bb artifact show".
func newArtifactShowCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "show <path>",
		Short: "Show one artifact by path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			var artifact domain.Artifact
			if err := app.Retry(func() error {
				var err error
				artifact, err = svc.GetArtifact(args[0])
				return err
			}); err != nil {
				return err
			}

			if opts.jsonOut {
				return emitJSON(cmd.OutOrStdout(), artifact)
			}
			renderArtifact(cmd.OutOrStdout(), artifact)
			return nil
		},
	}
}

// newArtifactListCmd creates "bb artifact list".
func newArtifactListCmd(opts *globalOpts) *cobra.Command {
	var (
		producedBy string
		refStr     string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := openService(opts)
			if err != nil {
				return err
			}
			defer svc.Close()

			var filter domain.ArtifactFilter
			filter.ProducedBy = producedBy
			if refStr != "" {
				ref, err := domain.ParseRef(refStr)
				if err != nil {
					return err
				}
				filter.Ref = &ref
			}

			var artifacts []domain.Artifact
			if err := app.Retry(func() error {
				var err error
				artifacts, err = svc.ListArtifacts(filter, limit)
				return err
			}); err != nil {
				return err
			}

			if opts.jsonOut {
				return emitJSON(cmd.OutOrStdout(), artifacts)
			}
			renderArtifacts(cmd.OutOrStdout(), artifacts)
			return nil
		},
	}

	cmd.Flags().StringVar(&producedBy, "by", "", "only artifacts registered by this agent")
	cmd.Flags().StringVar(&refStr, "ref", "", "only artifacts referencing where:what:ref")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (default 50, max 100)")
	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaakkos/blackboard/internal/domain"
)

// newInstallCmd creates the "bb install" subcommand.
func newInstallCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:       "install [claude|generic]",
		Short:     "Show how to register bb as an MCP server",
		Long:      "Prints the MCP registration for an agent host. Each agent should\nrun its own 'bb mcp' process with a fixed --agent identity.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"claude", "generic"},
		RunE: func(cmd *cobra.Command, args []string) error {
			host := "generic"
			if len(args) == 1 {
				host = args[0]
			}
			exe, err := os.Executable()
			if err != nil {
				exe = "bb"
			}

			out := cmd.OutOrStdout()
			switch host {
			case "claude":
				fmt.Fprintf(out, "Register with Claude Code:\n\n")
				fmt.Fprintf(out, "  claude mcp add blackboard -- %s mcp --agent <your-agent-id>\n\n", exe)
				fmt.Fprintf(out, "Or add to .mcp.json:\n\n")
				fmt.Fprintf(out, "  {\n    \"mcpServers\": {\n      \"blackboard\": {\n        \"command\": %q,\n        \"args\": [\"mcp\", \"--agent\", \"<your-agent-id>\"]\n      }\n    }\n  }\n", exe)
			case "generic":
				fmt.Fprintf(out, "Run the MCP server over stdio:\n\n")
				fmt.Fprintf(out, "  %s mcp --agent <your-agent-id>\n\n", exe)
				fmt.Fprintf(out, "Without --agent, the server reads BB_AGENT_ID, or waits for the\nclient to call bb_identify once before its first write.\n")
			default:
				return domain.Invalidf("unknown host %q (expected claude or generic)", host)
			}
			return nil
		},
	}
}

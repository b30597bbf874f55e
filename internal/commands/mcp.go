package commands

import (
	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/weaver/internal/mcptools"
	"github.com/simonhull/firebird-suite/weaver/pkg/output"
)

// newMCPCmd creates the 'mcp' command.
func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the catalog and generator as MCP tools over stdio",
		Long: `Starts a Model Context Protocol server on stdin/stdout exposing
list_templates, plan_project and generate_project. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol
			output.SetWriter(cmd.ErrOrStderr())
			p, err := a.pipeline()
			if err != nil {
				return err
			}
			return mcptools.Serve(cmd.Context(), mcptools.NewService(p, a.log))
		},
	}
}

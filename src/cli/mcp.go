package cli

import (
	"github.com/spf13/cobra"

	"github.com/Protocol-Lattice/promptly/src/mcptools"
)

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the workspace as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger.Info("starting MCP server")
			s := mcptools.NewServer(mcptools.New(a.controller(), a.logger), Version)
			return mcptools.Serve(s)
		},
	}
}

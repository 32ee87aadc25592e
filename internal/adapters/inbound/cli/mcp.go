package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/choidage/daker/internal/adapters/inbound/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the vibex MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the vibex MCP server (stdio)",
		Long:  "Start the vibex MCP server using stdio transport. This lets AI coding assistants run gates, read diagnostics and manage work zones.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, nil)
			if err != nil {
				return err
			}
			s := mcpadapter.NewServer(mcpadapter.Services{
				Checks:  a.checks,
				Zones:   a.zones,
				Monitor: a.monitor,
				Author:  a.cfg.ResolvedAuthor(),
				Logger:  a.log,
			}, version)
			return server.ServeStdio(s)
		},
	}
}

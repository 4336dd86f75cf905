package main

import (
	"context"

	"github.com/spf13/cobra"

	"pipewatch/internal/logging"
	"pipewatch/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, r, err := openRun(context.Background())
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("serving run", "run", r.result.RunID, "project", r.cfg.Project)
	server := mcp.NewServer(r.plugins, r.instances, r.terminal, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}

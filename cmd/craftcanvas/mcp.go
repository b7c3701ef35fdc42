package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JoseCortezz25/craft-canvas/internal/mcptools"
)

func newMCPCmd(root *rootOptions) *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the pipeline as MCP tools",
		Long: `Expose generate_web_app and describe_pipeline over the Model Context
Protocol. Uses stdio unless --http is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(root)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdown, err := a.tracing(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background(), shutdown)

			p, err := a.pipeline(ctx)
			if err != nil {
				return err
			}
			server := mcptools.NewMCPServer(mcptools.NewService(p, p.Plan()))
			if httpAddr != "" {
				a.log.Info("MCP server listening", "addr", httpAddr)
				return mcptools.RunHTTP(ctx, server, httpAddr)
			}
			return mcptools.RunStdio(ctx, server)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	return cmd
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JoseCortezz25/craft-canvas/internal/llm"
	"github.com/JoseCortezz25/craft-canvas/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the /generate HTTP API",
		Long: `Serve the request boundary:

  POST /generate  {"prompt": "..."} -> {"html", "css", "js"}
  GET  /generate  liveness message
  GET  /healthz   health check

A missing model credential does not stop the server; every generate request
then fails with a configuration error.`,
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

			opts := server.Options{
				Logger:      a.log,
				CORSOrigins: a.cfg.CORSOrigins,
				ServiceName: "craftcanvas",
			}
			p, err := a.pipeline(ctx)
			var cfgErr *llm.ConfigurationError
			switch {
			case errors.As(err, &cfgErr):
				a.log.Error("model configuration invalid; generate requests will fail",
					"field", cfgErr.Field, "reason", cfgErr.Reason, "api_key_env", a.cfg.APIKeyEnv)
				opts.ConfigErr = err
			case err != nil:
				return err
			default:
				opts.Generator = p
			}

			s, err := server.New(opts)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			return s.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

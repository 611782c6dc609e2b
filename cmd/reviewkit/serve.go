package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/reviewkit/server"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tool over Connect RPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			registry, err := a.newRegistry()
			if err != nil {
				return runtimeErr(fmt.Errorf("failed to create platform: %w", err))
			}

			srv := server.New(a.cfg.Server, registry,
				server.WithObserver(a.observer),
				server.WithVersion(version),
			)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			a.logger.Info("server listening", "addr", a.cfg.Server.Addr, "platform", a.cfg.Platform)

			select {
			case err := <-errCh:
				if err != nil {
					return runtimeErr(err)
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			if err := srv.Shutdown(context.Background()); err != nil {
				return runtimeErr(err)
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

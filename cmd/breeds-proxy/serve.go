package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/breeds-proxy/internal/config"
	"github.com/Sternrassler/breeds-proxy/internal/observability"
	"github.com/spf13/cobra"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP proxy",
		Long:  "Serve GET /breeds and GET /breeds/{id} from the cached upstream catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := context.Background()
			if err := observability.Init(ctx, cfg.TelemetryConfig()); err != nil {
				return fmt.Errorf("init tracing: %w", err)
			}
			defer func() {
				if err := observability.Shutdown(context.Background()); err != nil {
					a.logger.Warn().Err(err).Msg("Tracing shutdown failed")
				}
			}()

			httpServer := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      newRouter(a.svc, a.logger),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info().
					Str("addr", cfg.Server.Addr).
					Str("upstream", a.client.Endpoint()).
					Bool("api_key", cfg.Upstream.APIKey != "").
					Dur("cache_ttl", cfg.Cache.TTL).
					Str("version", config.Version).
					Msg("Breeds proxy started")
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case sig := <-sigCh:
				a.logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := httpServer.Shutdown(ctx); err != nil {
					return fmt.Errorf("shutdown server: %w", err)
				}
				return nil
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (overrides config)")

	return cmd
}

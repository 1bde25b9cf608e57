package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/oriys/vega/internal/api"
	"github.com/oriys/vega/internal/files"
	"github.com/oriys/vega/internal/keepalive"
	"github.com/oriys/vega/internal/logging"
	"github.com/oriys/vega/internal/metrics"
	"github.com/oriys/vega/internal/observability"
	"github.com/oriys/vega/internal/ratelimit"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the vega HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logging.InitStructured(cfg.Logging.Format, cfg.Logging.Level)
			metrics.InitPrometheus("vega", nil)

			ctx, stop := context.WithCancel(context.Background())
			defer stop()

			if err := observability.Init(ctx, cfg.Telemetry); err != nil {
				logging.Op().Warn("telemetry init failed", "error", err)
			}

			s, client, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			// Startup gate: the schema must exist before any traffic is
			// accepted.
			bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			err = s.EnsureSchema(bootCtx)
			cancel()
			if err != nil {
				return fmt.Errorf("schema bootstrap: %w", err)
			}
			logging.Op().Info("schema bootstrap complete")

			aggregator := files.NewAggregator(s, cfg.Files.StrictErrors)

			var limiter *ratelimit.Limiter
			var rdb *redis.Client
			if cfg.RateLimit.Enabled {
				rdb = redis.NewClient(&redis.Options{
					Addr:     cfg.Redis.Addr,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})
				backend := ratelimit.NewFallbackBackend(ratelimit.NewRedisBackend(rdb))
				limiter = ratelimit.New(backend, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
				logging.Op().Info("download rate limiting enabled",
					"rps", cfg.RateLimit.RequestsPerSecond, "burst", cfg.RateLimit.Burst)
			}

			if cfg.KeepAlive.Enabled {
				go keepalive.Run(ctx, s, cfg.KeepAlive.Interval)
				logging.Op().Info("keep-alive started", "interval", cfg.KeepAlive.Interval)
			}

			server := api.StartHTTPServer(api.ServerConfig{
				Repo:    s,
				Files:   aggregator,
				Limiter: limiter,
				Server:  cfg.Server,
				CORS:    cfg.CORS,
				Version: version,
			})

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			logging.Op().Info("shutting down", "signal", sig.String())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logging.Op().Warn("server shutdown", "error", err)
			}
			stop()
			if rdb != nil {
				rdb.Close()
			}
			if err := observability.Shutdown(context.Background()); err != nil {
				logging.Op().Warn("telemetry shutdown", "error", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Ensure the remote database schema exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, client, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.EnsureSchema(ctx); err != nil {
				return err
			}
			fmt.Println("schema ok")
			return nil
		},
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/libris-match/engine/internal/config"
	logpkg "github.com/libris-match/engine/internal/logger"
	"github.com/libris-match/engine/internal/metrics"
	chitransport "github.com/libris-match/engine/internal/transport/chi"
	openaitransport "github.com/libris-match/engine/internal/transport/openai"
)

func newServeCmd() *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP surface (health + Prometheus metrics)",
		Long: `Starts the matching engine's admin HTTP server. It exposes /healthz and
/metrics only — there is no public matching API; batches are run via the
match subcommand.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(env)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			metrics.RegisterMatchMetrics()

			var checkers []chitransport.HealthChecker
			if cfg.Disambiguation.Enabled {
				checkers = append(checkers, openaitransport.New(openaitransport.Config{
					APIKey:  cfg.Disambiguation.APIKey,
					BaseURL: cfg.Disambiguation.BaseURL,
					Model:   cfg.Disambiguation.Model,
					Logger:  logger,
				}))
			}

			router := chitransport.NewRouter(logger, checkers...)
			addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
			server := &http.Server{
				Addr:         addr,
				Handler:      router,
				ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
				WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("admin server listening", zap.String("addr", addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				logger.Info("shutting down admin server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown admin server: %w", err)
				}
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&env, "env", "e", config.GetEnv(), "environment (local, dev, prod)")
	return cmd
}

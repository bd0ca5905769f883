package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/cartsync/internal/cli"
	httpAdapter "github.com/aretw0/cartsync/pkg/adapters/http"
	"github.com/aretw0/cartsync/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cart HTTP server",
	Long: `Starts the cart in server mode, exposing a JSON API and an SSE event stream.
When a metrics port is configured, Prometheus metrics are served on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cli.NewSignalContext(context.Background())
		defer sc.Cancel()

		cfg, logger, debug, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("metrics-port") {
			cfg.Server.MetricsPort, _ = cmd.Flags().GetInt("metrics-port")
		}

		opts := cli.BuildOptions{Debug: debug}
		if cfg.Server.MetricsPort > 0 {
			metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}
			opts.Hooks = metrics.Hooks()
		}

		app, err := cli.Build(sc, cfg, logger, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		app.Cart.Start(sc)

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: httpAdapter.NewHandler(app.Cart, httpAdapter.WithLogger(logger)),
		}
		servers := []*http.Server{srv}
		if cfg.Server.MetricsPort > 0 {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler(prometheus.DefaultGatherer))
			servers = append(servers, &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
				Handler: mux,
			})
		}

		serverErrors := make(chan error, len(servers))
		for _, s := range servers {
			go func(s *http.Server) {
				logger.Info("Listening", "address", s.Addr)
				serverErrors <- s.ListenAndServe()
			}(s)
		}

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-sc.Done():
			logger.Info("Start shutdown", "signal", sc.Signal())
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, s := range servers {
			if err := s.Shutdown(ctx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "address", s.Addr, "timeout", shutdownTimeout, "err", err)
				_ = s.Close()
			}
		}
		logger.Info("cartsync server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Int("metrics-port", 0, "Port for Prometheus metrics (0 disables)")
}

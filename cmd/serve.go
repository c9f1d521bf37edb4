package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"reconciler/internal/api"
	"reconciler/internal/api/handler/v1handler"
	"reconciler/internal/config"
	"reconciler/internal/directory"
	"reconciler/internal/reconciler"
	"reconciler/internal/worker"
	"reconciler/pkg/logger"
	"reconciler/pkg/metrics"
	"reconciler/pkg/payments/stripeapi"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// setupMetrics creates the OpenTelemetry meter provider backed by the default
// Prometheus registerer, which the API server exposes on the metrics path.
func setupMetrics(ctx context.Context) *metrics.Reconciliation {
	exp, err := otelprom.New(otelprom.WithRegisterer(prometheus.DefaultRegisterer))
	if err != nil {
		logger.Fatal(ctx, "could not create otel exporter", zap.Error(err))
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))

	m, err := metrics.NewReconciliation(mp)
	if err != nil {
		logger.Fatal(ctx, "could not create reconciliation metrics", zap.Error(err))
	}

	return m
}

// setupServer starts the HTTP server in the background and returns a function
// that gracefully shuts it down.
func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server := api.NewServer(deps, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting webserver...")
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

// serveCommand constructs the 'serve' subcommand that starts the API server
// and the background reconciliation workers.
func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			m := setupMetrics(ctx)

			stripeClient := stripeapi.New(stripeapi.Options{APIKey: cfg.Stripe.APIKey})
			rec := reconciler.New(strg, stripeClient, m, reconciler.NewOptions(cfg))

			riverClient, err := worker.Start(ctx, strg.Pool, rec, strg, worker.Options{
				QueueMaxWorkers: cfg.Reconciler.QueueMaxWorkers,
			})
			if err != nil {
				logger.Fatal(ctx, "could not start background workers", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, api.Deps{
				Deps: v1handler.Deps{
					Reconciler: rec,
					Directory:  directory.New(stripeClient),
				},
			})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			logger.Info(ctx, "stopping background workers...")
			if err := riverClient.Stop(shutdownCtx); err != nil {
				logger.Error(ctx, "could not stop background workers", zap.Error(err))
			}
		},
	}

	return cmd
}

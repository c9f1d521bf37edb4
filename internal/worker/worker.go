// Package worker runs the background reconciliation jobs on the River queue.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"reconciler/internal/reconciler"
	"reconciler/pkg/logger"
	"reconciler/pkg/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"
)

// Options configure the queue client.
type Options struct {
	// QueueMaxWorkers is the maximum number of jobs processed concurrently.
	// Reconciliation runs walk the full provider customer list, so this stays low.
	QueueMaxWorkers int
}

// Start creates and starts a River client processing reconciliation jobs from
// the default queue. The returned client should be stopped with Stop or
// StopAndCancel during shutdown.
func Start(ctx context.Context,
	dbPool *pgxpool.Pool,
	rec reconciler.Reconciler,
	strg storage.Storage,
	options Options) (*river.Client[pgx.Tx], error) {
	if options.QueueMaxWorkers <= 0 {
		options.QueueMaxWorkers = 1
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewReconcileWorker(rec, strg))

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: options.QueueMaxWorkers},
		},
		Workers: workers,
		Logger:  slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}

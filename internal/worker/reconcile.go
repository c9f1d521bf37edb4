package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reconciler/internal/reconciler"
	"reconciler/pkg/domain"
	"reconciler/pkg/logger"
	"reconciler/pkg/serrors"
	"reconciler/pkg/storage"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// rateLimitSnooze is how long a job sleeps when the provider rate-limits a run.
// Runs are infrequent and coarse, so a flat backoff is enough here.
const rateLimitSnooze = time.Minute

// ReconcileWorker is a River worker that executes one reconciliation run per
// job and persists the resulting summary as a report row. Uniqueness of jobs
// per email filter is enforced at insert time, so the worker itself stays
// stateless.
type ReconcileWorker struct {
	river.WorkerDefaults[reconciler.JobArgs]

	// reconciler performs the actual run.
	reconciler reconciler.Reconciler
	// storage persists the produced report.
	storage storage.Storage
}

// NewReconcileWorker constructs a ReconcileWorker.
func NewReconcileWorker(rec reconciler.Reconciler, strg storage.Storage) *ReconcileWorker {
	return &ReconcileWorker{
		reconciler: rec,
		storage:    strg,
	}
}

// Work runs the reconciliation for the job's email filter and stores the
// summary. Rate-limited runs are snoozed instead of burning retry attempts.
func (w *ReconcileWorker) Work(ctx context.Context, job *river.Job[reconciler.JobArgs]) error {
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID), zap.String("emailFilter", job.Args.EmailFilter))

	summary, err := w.reconciler.Run(ctx, job.Args.EmailFilter)
	if err != nil {
		logger.Error(ctx, "error in reconciliation run", zap.Error(err))

		if errors.Is(err, serrors.ErrRateLimited) {
			return river.JobSnooze(rateLimitSnooze) //nolint: wrapcheck
		}

		return fmt.Errorf("could not reconcile orders: %w", err)
	}

	report, err := w.storage.StoreReport(ctx, domain.Report{
		EmailFilter:     summary.EmailFilter,
		Summary:         *summary,
		UsersWithIssues: summary.UsersWithIssues,
		TotalDifference: summary.TotalDifference,
	})
	if err != nil {
		return fmt.Errorf("could not store report: %w", err)
	}

	logger.Info(ctx, "reconciliation report stored",
		zap.String("reportID", uuid.UUID(report.ID).String()),
		zap.Int64("usersWithIssues", report.UsersWithIssues),
		zap.Int64("totalDifference", report.TotalDifference))

	return nil
}

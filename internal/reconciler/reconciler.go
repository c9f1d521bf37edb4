// Package reconciler implements the Stripe/Supabase order reconciliation: it
// cross-references provider transaction history against locally recorded paid
// orders, aggregates line items by normalized name per customer email and
// reports the discrepancies.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"reconciler/internal/config"
	"reconciler/pkg/domain"
	"reconciler/pkg/logger"
	"reconciler/pkg/metrics"
	"reconciler/pkg/payments"
	"reconciler/pkg/serrors"
	"reconciler/pkg/storage"

	"go.uber.org/zap"
)

// Options configure reconciliation runs and how background jobs are enqueued.
// These settings are typically derived from application configuration.
type Options struct {
	// CustomerPageSize is the page size used when listing provider customers.
	CustomerPageSize int
	// SessionConcurrency bounds how many customers' checkout sessions are
	// fetched at the same time.
	SessionConcurrency int
	// IntentConcurrency bounds how many customers' payment intents are fetched
	// at the same time.
	IntentConcurrency int
	// MaxAttempts is the maximum number of attempts the background worker should
	// make when processing a reconciliation job before marking it failed.
	MaxAttempts int
	// UniqueJobPeriod is the lookback window during which duplicate jobs for the
	// same email filter are collapsed into one.
	UniqueJobPeriod time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		CustomerPageSize:   cfg.Stripe.CustomerPageSize,
		SessionConcurrency: cfg.Stripe.SessionConcurrency,
		IntentConcurrency:  cfg.Stripe.IntentConcurrency,
		MaxAttempts:        cfg.Reconciler.MaxAttempts,
		UniqueJobPeriod:    cfg.Reconciler.UniqueJobPeriod,
	}
}

// reconciler is the concrete implementation of the Reconciler interface. It
// coordinates the provider client, the local store and job enqueueing.
type reconciler struct {
	// options holds runtime configuration that affects runs and enqueueing.
	options Options
	// storage is the persistence layer for orders, reports and jobs.
	storage storage.Storage
	// payments reads customer and transaction history from the provider.
	payments payments.Client
	// metrics records run instruments; nil disables recording.
	metrics *metrics.Reconciliation
}

// Run executes one reconciliation pass. It is pure read-side: nothing is
// persisted, so re-running against unchanged data yields an identical summary.
func (r *reconciler) Run(ctx context.Context, emailFilter string) (*domain.Summary, error) {
	start := time.Now()
	emailFilter = NormalizeEmail(emailFilter)
	if emailFilter != "" {
		ctx = logger.WithFields(ctx, zap.String("emailFilter", emailFilter))
	}

	stripeSide, err := r.fetchStripeSide(ctx, emailFilter)
	if err != nil {
		r.metrics.ObserveRun(ctx, time.Since(start).Seconds(), 0, 0, true)

		return nil, fmt.Errorf("could not fetch provider transactions: %w", err)
	}

	localSide, err := r.fetchLocalSide(ctx, emailFilter)
	if err != nil {
		r.metrics.ObserveRun(ctx, time.Since(start).Seconds(), 0, 0, true)

		return nil, fmt.Errorf("could not fetch local orders: %w", err)
	}

	summary := buildSummary(emailFilter, stripeSide, localSide)

	logger.Info(ctx, "reconciliation finished",
		zap.Int64("stripeCustomers", summary.TotalStripeCustomers),
		zap.Int64("supabaseUsers", summary.TotalSupabaseUsers),
		zap.Int64("matchedEmails", summary.MatchedEmails),
		zap.Int64("usersWithIssues", summary.UsersWithIssues),
		zap.Int64("totalDifference", summary.TotalDifference),
		zap.Int("warnings", len(summary.Warnings)),
		zap.Duration("took", time.Since(start)))
	r.metrics.ObserveRun(ctx,
		time.Since(start).Seconds(),
		summary.UsersWithIssues,
		int64(len(summary.Warnings)),
		false)

	return summary, nil
}

// Enqueue inserts a background reconciliation job for the given filter. River
// unique jobs prevent duplicate runs for the same filter within the configured
// period; the boolean result reports whether a new job was actually inserted.
func (r *reconciler) Enqueue(ctx context.Context, emailFilter string) (bool, error) {
	added, err := r.storage.AddJob(ctx, JobArgs{
		EmailFilter:     NormalizeEmail(emailFilter),
		maxAttempts:     r.options.MaxAttempts,
		uniqueJobPeriod: r.options.UniqueJobPeriod,
	}, nil)
	if err != nil {
		return false, fmt.Errorf("could not add job: %w", err)
	}

	return added, nil
}

// Report fetches a single stored report by ID. It returns a not-found error
// when no matching report exists.
func (r *reconciler) Report(ctx context.Context, id domain.ReportID) (*domain.Report, error) {
	report, err := r.storage.ReportByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get report: %w", err)
	}
	if report == nil {
		return nil, serrors.With(serrors.ErrNotFound, "report not found")
	}

	return report, nil
}

// Reports returns a page of stored reports. It supports cursor-based
// pagination using an RFC3339 timestamp string and returns the next cursor
// when more results are available.
func (r *reconciler) Reports(ctx context.Context, cursor string, limit uint) ([]domain.Report, string, error) {
	var cursorTime time.Time
	if cursor != "" {
		t, err := time.Parse(time.RFC3339, cursor)
		if err != nil {
			return nil, "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
		}
		cursorTime = t
	}

	page, err := r.storage.Reports(ctx, cursorTime, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get reports: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.Format(time.RFC3339)
	}

	return page.Reports, next, nil
}

// New creates a Reconciler backed by the provided store and provider client.
// A nil metrics value is allowed and disables instrument recording.
func New(strg storage.Storage, payments payments.Client, m *metrics.Reconciliation, options Options) Reconciler {
	if options.CustomerPageSize <= 0 {
		options.CustomerPageSize = 100
	}
	if options.SessionConcurrency <= 0 {
		options.SessionConcurrency = 5
	}
	if options.IntentConcurrency <= 0 {
		options.IntentConcurrency = 10
	}

	return &reconciler{
		options:  options,
		storage:  strg,
		payments: payments,
		metrics:  m,
	}
}

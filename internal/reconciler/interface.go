package reconciler

import (
	"context"

	"reconciler/pkg/domain"
)

// Reconciler cross-references provider transaction history against locally
// recorded orders and reports discrepancies per customer email.
type Reconciler interface {
	// Run executes a synchronous reconciliation, optionally restricted to one
	// email, and returns the summary.
	Run(ctx context.Context, emailFilter string) (*domain.Summary, error)
	// Enqueue schedules a background reconciliation run. The boolean result
	// reports whether a new job was inserted; false means an equivalent run is
	// already queued.
	Enqueue(ctx context.Context, emailFilter string) (bool, error)
	// Report fetches one stored reconciliation report.
	Report(ctx context.Context, id domain.ReportID) (*domain.Report, error)
	// Reports returns a page of stored reports, newest first, with an RFC3339
	// cursor for the next page.
	Reports(ctx context.Context, cursor string, limit uint) ([]domain.Report, string, error)
}

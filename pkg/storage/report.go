package storage

import (
	"context"
	"time"

	"reconciler/pkg/domain"
)

// ReportPage groups a page of reconciliation reports together with an optional
// NextCursor used for pagination.
type ReportPage struct {
	// Reports contains the current page of report records.
	Reports []domain.Report
	// NextCursor points to the timestamp to be used as the cursor for fetching
	// the next page. It is nil when there is no next page.
	NextCursor *time.Time
}

// ReportStorage defines persistence for reconciliation reports produced by
// background runs.
type ReportStorage interface {
	// StoreReport inserts a report and returns the stored row.
	StoreReport(ctx context.Context, report domain.Report) (*domain.Report, error)
	// ReportByID fetches a report by its ID. Returns nil when not found.
	ReportByID(ctx context.Context, id domain.ReportID) (*domain.Report, error)
	// Reports returns a page of reports created before the optional cursor time,
	// newest first, limited by limit.
	Reports(ctx context.Context, cursor time.Time, limit uint) (ReportPage, error)
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"reconciler/pkg/domain"
	"reconciler/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	reportsTable = "reconciliation_reports"
)

func (p *PgSQL) StoreReport(ctx context.Context, report domain.Report) (*domain.Report, error) {
	var pgReport PgReport
	if err := pgReport.FromDomain(report); err != nil {
		return nil, err
	}

	var row PgReport
	found, err := p.Builder.Insert(reportsTable).
		Rows(pgReport).
		Returning(&PgReport{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not store report into pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("could not store report into pg: no row returned")
	}

	return row.ToDomain()
}

// ReportByID returns a report by its ID. Returns nil when not found.
func (p *PgSQL) ReportByID(ctx context.Context, id domain.ReportID) (*domain.Report, error) {
	var row PgReport
	found, err := p.Builder.From(reportsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch report by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// Reports returns a page of reports created before the optional cursor,
// newest first, limited by limit. The next cursor is returned when more rows
// remain.
func (p *PgSQL) Reports(ctx context.Context, cursor time.Time, limit uint) (storage.ReportPage, error) {
	var w []goqu.Expression
	if !cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(cursor))
	}

	// fetch one extra to determine if there is a next page
	fetch := limit + 1
	ds := p.Builder.From(reportsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(fetch)

	var rows []PgReport
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.ReportPage{}, fmt.Errorf("could not fetch reports from pg: %w", err)
	}

	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		trimmed := rows[:limit]
		nextCursor = &trimmed[len(trimmed)-1].CreatedAt
		rows = trimmed
	}

	domainRows, err := pgReportsToDomain(rows)
	if err != nil {
		return storage.ReportPage{}, err
	}

	return storage.ReportPage{
		Reports:    domainRows,
		NextCursor: nextCursor,
	}, nil
}

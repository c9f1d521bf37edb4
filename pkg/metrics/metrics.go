// Package metrics defines the OpenTelemetry instruments the service records.
// The meter provider is backed by the Prometheus exporter wired up in the API
// server, so everything here ends up on the /metrics endpoint.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName identifies this module's meter within the provider.
const meterName = "reconciler"

// Reconciliation bundles the instruments recorded by reconciliation runs.
// A nil *Reconciliation is valid and records nothing, which keeps tests and
// one-shot CLI runs free of metric plumbing.
type Reconciliation struct {
	runs          metric.Int64Counter
	discrepancies metric.Int64Counter
	warnings      metric.Int64Counter
	duration      metric.Float64Histogram
}

// NewReconciliation creates the reconciliation instruments on the given
// meter provider.
func NewReconciliation(mp metric.MeterProvider) (*Reconciliation, error) {
	meter := mp.Meter(meterName)

	runs, err := meter.Int64Counter("reconciliation_runs_total",
		metric.WithDescription("Number of reconciliation runs, labeled by outcome."))
	if err != nil {
		return nil, fmt.Errorf("could not create runs counter: %w", err)
	}

	discrepancies, err := meter.Int64Counter("reconciliation_discrepancies_total",
		metric.WithDescription("Number of users with at least one discrepancy, summed across runs."))
	if err != nil {
		return nil, fmt.Errorf("could not create discrepancies counter: %w", err)
	}

	warnings, err := meter.Int64Counter("reconciliation_fetch_warnings_total",
		metric.WithDescription("Number of per-item fetch failures tolerated during runs."))
	if err != nil {
		return nil, fmt.Errorf("could not create warnings counter: %w", err)
	}

	duration, err := meter.Float64Histogram("reconciliation_run_duration_seconds",
		metric.WithDescription("Wall-clock duration of reconciliation runs."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("could not create duration histogram: %w", err)
	}

	return &Reconciliation{
		runs:          runs,
		discrepancies: discrepancies,
		warnings:      warnings,
		duration:      duration,
	}, nil
}

// ObserveRun records one finished reconciliation run.
func (m *Reconciliation) ObserveRun(ctx context.Context,
	seconds float64,
	usersWithIssues int64,
	fetchWarnings int64,
	failed bool) {
	if m == nil {
		return
	}

	status := "ok"
	if failed {
		status = "error"
	}
	attrs := metric.WithAttributes(attribute.String("status", status))

	m.runs.Add(ctx, 1, attrs)
	m.duration.Record(ctx, seconds, attrs)
	if !failed {
		m.discrepancies.Add(ctx, usersWithIssues)
		m.warnings.Add(ctx, fetchWarnings)
	}
}

package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"

	"reconciler/internal/reconciler"
	"reconciler/internal/worker"
	"reconciler/pkg/domain"
	"reconciler/pkg/logger"
	"reconciler/pkg/serrors"
	"reconciler/pkg/storage"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

// fakeReconciler returns a canned summary or error from Run.
type fakeReconciler struct {
	summary *domain.Summary
	runErr  error

	lastFilter string
}

func (f *fakeReconciler) Run(_ context.Context, emailFilter string) (*domain.Summary, error) {
	f.lastFilter = emailFilter
	if f.runErr != nil {
		return nil, f.runErr
	}

	return f.summary, nil
}

func (f *fakeReconciler) Enqueue(context.Context, string) (bool, error) { return false, nil }

func (f *fakeReconciler) Report(context.Context, domain.ReportID) (*domain.Report, error) {
	return nil, nil
}

func (f *fakeReconciler) Reports(context.Context, string, uint) ([]domain.Report, string, error) {
	return nil, "", nil
}

// fakeReportStorage records StoreReport calls; the rest of storage.Storage is
// unused by the worker.
type fakeReportStorage struct {
	storage.Storage

	stored   []domain.Report
	storeErr error
}

func (f *fakeReportStorage) StoreReport(_ context.Context, report domain.Report) (*domain.Report, error) {
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	report.ID = domain.ReportID(uuid.New())
	report.CreatedAt = time.Now().UTC()
	f.stored = append(f.stored, report)

	return &report, nil
}

func makeJob(id int64, emailFilter string) *river.Job[reconciler.JobArgs] {
	return &river.Job[reconciler.JobArgs]{
		JobRow: &rivertype.JobRow{ID: id},
		Args:   reconciler.JobArgs{EmailFilter: emailFilter},
	}
}

func TestReconcileWorker_Work_StoresReport(t *testing.T) {
	rec := &fakeReconciler{
		summary: &domain.Summary{
			EmailFilter:     "alice@example.com",
			UsersWithIssues: 2,
			TotalDifference: -450,
		},
	}
	strg := &fakeReportStorage{}
	w := worker.NewReconcileWorker(rec, strg)

	require.NoError(t, w.Work(context.Background(), makeJob(1, "alice@example.com")))

	require.Equal(t, "alice@example.com", rec.lastFilter)
	require.Len(t, strg.stored, 1)
	report := strg.stored[0]
	require.Equal(t, "alice@example.com", report.EmailFilter)
	require.EqualValues(t, 2, report.UsersWithIssues)
	require.EqualValues(t, -450, report.TotalDifference)
	require.Equal(t, *rec.summary, report.Summary)
}

func TestReconcileWorker_Work_RateLimitedSnoozes(t *testing.T) {
	rec := &fakeReconciler{
		runErr: serrors.With(serrors.ErrRateLimited, "provider rl"),
	}
	strg := &fakeReportStorage{}
	w := worker.NewReconcileWorker(rec, strg)

	err := w.Work(context.Background(), makeJob(2, ""))
	require.Error(t, err)
	var snoozeErr *river.JobSnoozeError
	require.ErrorAs(t, err, &snoozeErr)
	require.Empty(t, strg.stored)
}

func TestReconcileWorker_Work_RunErrorWrapped(t *testing.T) {
	rec := &fakeReconciler{runErr: errors.New("boom")}
	strg := &fakeReportStorage{}
	w := worker.NewReconcileWorker(rec, strg)

	err := w.Work(context.Background(), makeJob(3, ""))
	require.Error(t, err)
	var snoozeErr *river.JobSnoozeError
	require.NotErrorAs(t, err, &snoozeErr, "did not expect JobSnoozeError")
	require.Empty(t, strg.stored)
}

func TestReconcileWorker_Work_StoreErrorPropagates(t *testing.T) {
	rec := &fakeReconciler{summary: &domain.Summary{}}
	strg := &fakeReportStorage{storeErr: errors.New("pg down")}
	w := worker.NewReconcileWorker(rec, strg)

	err := w.Work(context.Background(), makeJob(4, ""))
	require.Error(t, err)
	require.ErrorContains(t, err, "could not store report")
}

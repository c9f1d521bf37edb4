package v1handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"reconciler/internal/api/handler/v1handler"
	"reconciler/internal/directory"
	"reconciler/pkg/domain"
	"reconciler/pkg/logger"
	"reconciler/pkg/serrors"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

type fakeReconciler struct {
	summary    *domain.Summary
	runErr     error
	lastFilter string

	enqueued   bool
	enqueueErr error

	report    *domain.Report
	reportErr error

	reports    []domain.Report
	nextCursor string
	lastCursor string
	lastLimit  uint
	reportsErr error
}

func (f *fakeReconciler) Run(_ context.Context, emailFilter string) (*domain.Summary, error) {
	f.lastFilter = emailFilter

	return f.summary, f.runErr
}

func (f *fakeReconciler) Enqueue(_ context.Context, emailFilter string) (bool, error) {
	f.lastFilter = emailFilter

	return f.enqueued, f.enqueueErr
}

func (f *fakeReconciler) Report(context.Context, domain.ReportID) (*domain.Report, error) {
	return f.report, f.reportErr
}

func (f *fakeReconciler) Reports(_ context.Context, cursor string, limit uint) ([]domain.Report, string, error) {
	f.lastCursor = cursor
	f.lastLimit = limit

	return f.reports, f.nextCursor, f.reportsErr
}

type fakeDirectory struct {
	lastParams directory.ListParams
	page       domain.CustomerPage
	err        error
}

func (f *fakeDirectory) Customers(_ context.Context, params directory.ListParams) (domain.CustomerPage, error) {
	f.lastParams = params

	return f.page, f.err
}

func newTestMux(rec *fakeReconciler, dir *fakeDirectory) *http.ServeMux {
	mux := http.NewServeMux()
	v1handler.New(v1handler.Deps{Reconciler: rec, Directory: dir}).Register(mux)

	return mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	return w
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}

	return v
}

func TestHandler_Reconcile(t *testing.T) {
	rec := &fakeReconciler{summary: &domain.Summary{
		EmailFilter:          "a@example.com",
		TotalStripeCustomers: 3,
		TotalSupabaseUsers:   2,
		TotalDifference:      500,
		Users: []domain.UserReport{
			{Email: "a@example.com", TotalDifference: 500, HasIssues: true},
		},
	}}
	mux := newTestMux(rec, &fakeDirectory{})

	w := doRequest(t, mux, http.MethodPost, "/v1/reconciliation", `{"emailFilter": "a@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if rec.lastFilter != "a@example.com" {
		t.Fatalf("filter = %q", rec.lastFilter)
	}

	got := decodeResponse[domain.Summary](t, w)
	if got.TotalStripeCustomers != 3 || got.TotalDifference != 500 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if len(got.Users) != 1 || got.Users[0].Email != "a@example.com" {
		t.Fatalf("unexpected users: %+v", got.Users)
	}
}

func TestHandler_Reconcile_EmptyBody(t *testing.T) {
	rec := &fakeReconciler{summary: &domain.Summary{}}
	mux := newTestMux(rec, &fakeDirectory{})

	w := doRequest(t, mux, http.MethodPost, "/v1/reconciliation", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if rec.lastFilter != "" {
		t.Fatalf("expected empty filter, got %q", rec.lastFilter)
	}
}

func TestHandler_Reconcile_RunErrorIsBadRequest(t *testing.T) {
	rec := &fakeReconciler{runErr: errors.New("could not list customers: boom")}
	mux := newTestMux(rec, &fakeDirectory{})

	w := doRequest(t, mux, http.MethodPost, "/v1/reconciliation", "{}")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}

	got := decodeResponse[map[string]string](t, w)
	if !strings.Contains(got["error"], "could not list customers") {
		t.Fatalf("unexpected error body: %+v", got)
	}
}

func TestHandler_Reconcile_MalformedBody(t *testing.T) {
	mux := newTestMux(&fakeReconciler{}, &fakeDirectory{})

	w := doRequest(t, mux, http.MethodPost, "/v1/reconciliation", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHandler_EnqueueReconciliation(t *testing.T) {
	rec := &fakeReconciler{enqueued: true}
	mux := newTestMux(rec, &fakeDirectory{})

	w := doRequest(t, mux, http.MethodPost, "/v1/reconciliation/jobs", `{"emailFilter": "b@example.com"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	got := decodeResponse[map[string]any](t, w)
	if got["enqueued"] != true {
		t.Fatalf("unexpected body: %+v", got)
	}
	if got["emailFilter"] != "b@example.com" {
		t.Fatalf("unexpected filter: %+v", got)
	}
}

func TestHandler_EnqueueReconciliation_Duplicate(t *testing.T) {
	rec := &fakeReconciler{enqueued: false}
	mux := newTestMux(rec, &fakeDirectory{})

	w := doRequest(t, mux, http.MethodPost, "/v1/reconciliation/jobs", "{}")
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}

	got := decodeResponse[map[string]any](t, w)
	if got["enqueued"] != false {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestHandler_Customers(t *testing.T) {
	dir := &fakeDirectory{page: domain.CustomerPage{
		Customers: []domain.Customer{
			{ID: "cus_1", Email: "a@example.com", Name: "A"},
			{ID: "cus_2", Email: "b@example.com", Name: "B"},
		},
		HasMore:    true,
		TotalCount: 2,
	}}
	mux := newTestMux(&fakeReconciler{}, dir)

	w := doRequest(t, mux, http.MethodPost, "/v1/customers", `{"limit": 2, "startingAfter": "cus_0"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if dir.lastParams.Limit != 2 || dir.lastParams.StartingAfter != "cus_0" {
		t.Fatalf("unexpected params: %+v", dir.lastParams)
	}

	got := decodeResponse[domain.CustomerPage](t, w)
	if len(got.Customers) != 2 || !got.HasMore || got.TotalCount != 2 {
		t.Fatalf("unexpected page: %+v", got)
	}
}

func TestHandler_Customers_UpstreamError(t *testing.T) {
	dir := &fakeDirectory{err: serrors.With(serrors.ErrUpstream, "provider unavailable")}
	mux := newTestMux(&fakeReconciler{}, dir)

	w := doRequest(t, mux, http.MethodPost, "/v1/customers", "{}")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHandler_ListReports_DefaultLimit(t *testing.T) {
	rec := &fakeReconciler{
		reports:    []domain.Report{{ID: domain.ReportID(uuid.New())}},
		nextCursor: "2026-08-23T10:00:00Z",
	}
	mux := newTestMux(rec, &fakeDirectory{})

	w := doRequest(t, mux, http.MethodGet, "/v1/reconciliation/reports", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if rec.lastLimit != v1handler.DefaultLimit {
		t.Fatalf("limit = %d", rec.lastLimit)
	}

	got := decodeResponse[map[string]any](t, w)
	if got["nextCursor"] != "2026-08-23T10:00:00Z" {
		t.Fatalf("unexpected cursor: %+v", got)
	}
}

func TestHandler_ListReports_CustomLimitAndCursor(t *testing.T) {
	rec := &fakeReconciler{}
	mux := newTestMux(rec, &fakeDirectory{})

	w := doRequest(t, mux, http.MethodGet, "/v1/reconciliation/reports?limit=5&cursor=2026-08-22T00:00:00Z", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if rec.lastLimit != 5 || rec.lastCursor != "2026-08-22T00:00:00Z" {
		t.Fatalf("limit = %d, cursor = %q", rec.lastLimit, rec.lastCursor)
	}
}

func TestHandler_ListReports_InvalidLimit(t *testing.T) {
	mux := newTestMux(&fakeReconciler{}, &fakeDirectory{})

	for _, limit := range []string{"0", "-1", "abc"} {
		w := doRequest(t, mux, http.MethodGet, "/v1/reconciliation/reports?limit="+limit, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("limit %q: status = %d", limit, w.Code)
		}
	}
}

func TestHandler_ListReports_BadCursor(t *testing.T) {
	rec := &fakeReconciler{reportsErr: serrors.With(serrors.ErrBadRequest, "invalid cursor")}
	mux := newTestMux(rec, &fakeDirectory{})

	w := doRequest(t, mux, http.MethodGet, "/v1/reconciliation/reports?cursor=nonsense", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHandler_GetReport(t *testing.T) {
	id := uuid.New()
	rec := &fakeReconciler{report: &domain.Report{ID: domain.ReportID(id), UsersWithIssues: 2}}
	mux := newTestMux(rec, &fakeDirectory{})

	w := doRequest(t, mux, http.MethodGet, "/v1/reconciliation/reports/"+id.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	got := decodeResponse[domain.Report](t, w)
	if got.UsersWithIssues != 2 {
		t.Fatalf("unexpected report: %+v", got)
	}
}

func TestHandler_GetReport_InvalidID(t *testing.T) {
	mux := newTestMux(&fakeReconciler{}, &fakeDirectory{})

	w := doRequest(t, mux, http.MethodGet, "/v1/reconciliation/reports/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHandler_GetReport_NotFound(t *testing.T) {
	rec := &fakeReconciler{reportErr: serrors.With(serrors.ErrNotFound, "report not found")}
	mux := newTestMux(rec, &fakeDirectory{})

	w := doRequest(t, mux, http.MethodGet, "/v1/reconciliation/reports/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

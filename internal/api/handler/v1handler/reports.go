package v1handler

import (
	"net/http"
	"strconv"

	"reconciler/pkg/domain"
	"reconciler/pkg/serrors"

	"github.com/google/uuid"
)

// DefaultLimit is the report page size used when none is requested.
const DefaultLimit = 20

// reportList is one page of stored reports.
type reportList struct {
	Reports    []domain.Report `json:"reports"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

// ListReports returns a page of stored reconciliation reports, newest first.
// Pagination uses the cursor and limit query parameters.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := uint(DefaultLimit)
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil || v == 0 {
			respondError(ctx, w, serrors.With(serrors.ErrBadRequest, "invalid limit"))

			return
		}
		limit = uint(v)
	}

	reports, next, err := h.deps.Reconciler.Reports(ctx, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		respondError(ctx, w, err)

		return
	}
	if reports == nil {
		reports = []domain.Report{}
	}

	respondJSON(ctx, w, http.StatusOK, reportList{
		Reports:    reports,
		NextCursor: next,
	})
}

// GetReport returns one stored reconciliation report by ID.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "invalid report id"))

		return
	}

	report, err := h.deps.Reconciler.Report(ctx, domain.ReportID(id))
	if err != nil {
		respondError(ctx, w, err)

		return
	}

	respondJSON(ctx, w, http.StatusOK, report)
}

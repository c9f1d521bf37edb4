package v1handler

import (
	"net/http"

	"reconciler/pkg/logger"

	"go.uber.org/zap"
)

// reconcileRequest is the optional body of the reconciliation endpoints.
type reconcileRequest struct {
	// EmailFilter restricts the run to one customer email when set.
	EmailFilter string `json:"emailFilter"`
}

// enqueueResponse reports whether a background run was scheduled.
type enqueueResponse struct {
	Enqueued    bool   `json:"enqueued"`
	EmailFilter string `json:"emailFilter,omitempty"`
}

// Reconcile runs a synchronous reconciliation and responds with the summary.
// Any failure is reported as a 400 with the error message; the run is
// read-only, so clients can simply retry.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reconcileRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, err)

		return
	}

	summary, err := h.deps.Reconciler.Run(ctx, req.EmailFilter)
	if err != nil {
		logger.Error(ctx, "reconciliation run failed", zap.Error(err))
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: err.Error()})

		return
	}

	respondJSON(ctx, w, http.StatusOK, summary)
}

// EnqueueReconciliation schedules a background reconciliation run. Duplicate
// requests for the same filter within the unique-job period report
// enqueued=false instead of inserting a second job.
func (h *Handler) EnqueueReconciliation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reconcileRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, err)

		return
	}

	added, err := h.deps.Reconciler.Enqueue(ctx, req.EmailFilter)
	if err != nil {
		respondError(ctx, w, err)

		return
	}

	respondJSON(ctx, w, http.StatusAccepted, enqueueResponse{
		Enqueued:    added,
		EmailFilter: req.EmailFilter,
	})
}

// Package v1handler implements the v1 HTTP handlers of the admin API.
package v1handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"reconciler/internal/directory"
	"reconciler/internal/reconciler"
	"reconciler/pkg/logger"
	"reconciler/pkg/serrors"

	"go.uber.org/zap"
)

// Deps groups the services the handlers delegate to.
type Deps struct {
	// Reconciler runs and manages reconciliations.
	Reconciler reconciler.Reconciler
	// Directory lists provider customers.
	Directory directory.Directory
}

// Handler serves the v1 routes.
type Handler struct {
	deps Deps
}

// New constructs a Handler with the given dependencies.
func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Register mounts the v1 routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/reconciliation", h.Reconcile)
	mux.HandleFunc("POST /v1/reconciliation/jobs", h.EnqueueReconciliation)
	mux.HandleFunc("GET /v1/reconciliation/reports", h.ListReports)
	mux.HandleFunc("GET /v1/reconciliation/reports/{id}", h.GetReport)
	mux.HandleFunc("POST /v1/customers", h.Customers)
}

// errorResponse is the JSON error body shared by all endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(ctx, "could not encode response", zap.Error(err))
	}
}

// respondError maps semantic error kinds to HTTP statuses. Unclassified errors
// become an opaque 500 so internals don't leak to clients.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, serrors.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, serrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, serrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, serrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, serrors.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, serrors.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, serrors.ErrUpstream):
		status = http.StatusBadGateway
	case errors.Is(err, serrors.ErrTimeout):
		status = http.StatusGatewayTimeout
	default:
		logger.Error(ctx, err.Error())
		respondJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})

		return
	}

	respondJSON(ctx, w, status, errorResponse{Error: err.Error()})
}

// decodeBody decodes an optional JSON request body into dst. An absent or
// empty body leaves dst at its zero value.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}

	return nil
}

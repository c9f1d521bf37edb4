package v1handler

import (
	"net/http"

	"reconciler/internal/directory"
)

// customersRequest is the optional body of the customer listing endpoint.
type customersRequest struct {
	// Limit is the requested page size.
	Limit int64 `json:"limit"`
	// StartingAfter resumes the listing after the given customer ID.
	StartingAfter string `json:"startingAfter"`
	// Email restricts the listing to customers with this exact email.
	Email string `json:"email"`
}

// Customers returns one page of provider customers.
func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req customersRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(ctx, w, err)

		return
	}

	page, err := h.deps.Directory.Customers(ctx, directory.ListParams{
		Limit:         req.Limit,
		StartingAfter: req.StartingAfter,
		Email:         req.Email,
	})
	if err != nil {
		respondError(ctx, w, err)

		return
	}

	respondJSON(ctx, w, http.StatusOK, page)
}

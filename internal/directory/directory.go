// Package directory lists payment-provider customers for the admin console.
package directory

import (
	"context"
	"fmt"

	"reconciler/pkg/domain"
	"reconciler/pkg/payments"
)

// DefaultLimit is the page size used when the caller does not specify one.
const DefaultLimit = 20

// ListParams control one page of the customer listing.
type ListParams struct {
	// Limit is the requested page size; zero or negative means DefaultLimit.
	Limit int64
	// StartingAfter resumes the listing after the given customer ID.
	StartingAfter string
	// Email restricts the listing to customers with this exact email.
	Email string
}

// Directory exposes the provider customer listing.
type Directory interface {
	// Customers returns one page of provider customers.
	Customers(ctx context.Context, params ListParams) (domain.CustomerPage, error)
}

type directory struct {
	payments payments.Client
}

func (d directory) Customers(ctx context.Context, params ListParams) (domain.CustomerPage, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}

	page, err := d.payments.Customers(ctx, payments.CustomersParams{
		Limit:         params.Limit,
		StartingAfter: params.StartingAfter,
		Email:         params.Email,
	})
	if err != nil {
		return domain.CustomerPage{}, fmt.Errorf("could not list customers: %w", err)
	}

	return page, nil
}

// New creates a Directory backed by the provided payments client.
func New(p payments.Client) Directory {
	return &directory{payments: p}
}

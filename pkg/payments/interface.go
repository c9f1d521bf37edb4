// Package payments defines the interface and data types used to read customer
// and transaction history from the payment provider.
package payments

import (
	"context"

	"reconciler/pkg/domain"
)

// CustomersParams controls one page of a customer listing.
type CustomersParams struct {
	// Limit is the page size. Implementations clamp it to the provider maximum.
	Limit int64
	// StartingAfter is the customer ID to resume a listing from.
	StartingAfter string
	// Email restricts the listing to customers with this exact email.
	Email string
}

// Client is the abstraction over the payment provider's read API.
// Implementations must be safe for concurrent use; the reconciler fans out
// per-customer lookups in bounded batches.
type Client interface {
	// Customers returns one page of customers.
	Customers(ctx context.Context, params CustomersParams) (domain.CustomerPage, error)
	// CustomerByID fetches a single customer by its provider ID.
	CustomerByID(ctx context.Context, id string) (*domain.Customer, error)
	// CheckoutSessions returns the customer's paid checkout sessions with
	// flattened line items.
	CheckoutSessions(ctx context.Context, customerID string) ([]domain.Transaction, error)
	// PaymentIntents returns the customer's succeeded payment intents as
	// single-item transactions.
	PaymentIntents(ctx context.Context, customerID string) ([]domain.Transaction, error)
}

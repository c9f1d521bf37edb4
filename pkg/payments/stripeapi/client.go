// Package stripeapi provides a payments.Client implementation backed by the
// Stripe REST API via the official stripe-go bindings.
package stripeapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"reconciler/pkg/domain"
	"reconciler/pkg/payments"
	"reconciler/pkg/serrors"

	stripe "github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
)

// maxPageSize is Stripe's hard limit for list page sizes.
const maxPageSize = 100

// fallbackIntentItem names the synthetic line item built from a payment intent
// that carries no description.
const fallbackIntentItem = "payment"

// Options configures the Stripe client.
type Options struct {
	// APIKey is the Stripe secret key.
	APIKey string
	// HTTPClient overrides the HTTP client used for API calls. Optional.
	HTTPClient *http.Client
	// BaseURL overrides the Stripe API base URL. Used by tests.
	BaseURL string
}

// Client talks to the Stripe API and fulfills the payments.Client interface.
// It holds a per-instance API handle so the key is not process-global state.
type Client struct {
	api *client.API
}

// Ensure Client conforms to the payments.Client interface at compile time.
var _ payments.Client = (*Client)(nil)

// New constructs a Client from the given options.
func New(opts Options) *Client {
	cfg := &stripe.BackendConfig{
		// the reconciliation is a read-only diff; a failed lookup surfaces as a
		// warning instead of being retried
		MaxNetworkRetries: stripe.Int64(0),
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	if opts.BaseURL != "" {
		cfg.URL = stripe.String(opts.BaseURL)
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
	api := &client.API{}
	api.Init(opts.APIKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &Client{api: api}
}

// wrapStripeErr converts a stripe-go error into a semantic error so callers
// can tell throttling and missing records apart from other upstream failures.
func wrapStripeErr(err error, msgFmt string, args ...any) error {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		switch sErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return serrors.Wrap(serrors.ErrRateLimited, err, msgFmt, args...)
		case http.StatusNotFound:
			return serrors.Wrap(serrors.ErrNotFound, err, msgFmt, args...)
		}
	}

	return serrors.Wrap(serrors.ErrUpstream, err, msgFmt, args...)
}

func toDomainCustomer(c *stripe.Customer) domain.Customer {
	return domain.Customer{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		CreatedAt: time.Unix(c.Created, 0).UTC(),
	}
}

// Customers returns one page of Stripe customers. The page size is clamped to
// Stripe's maximum of 100.
func (c *Client) Customers(ctx context.Context, params payments.CustomersParams) (domain.CustomerPage, error) {
	limit := params.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	listParams := &stripe.CustomerListParams{}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(limit)
	if params.StartingAfter != "" {
		listParams.StartingAfter = stripe.String(params.StartingAfter)
	}
	if params.Email != "" {
		listParams.Email = stripe.String(params.Email)
	}

	var page domain.CustomerPage
	iter := c.api.Customers.List(listParams)
	for iter.Next() {
		cust := iter.Customer()
		if cust.Deleted {
			continue
		}
		page.Customers = append(page.Customers, toDomainCustomer(cust))

		// the iterator paginates transparently; stop at one page
		if int64(len(page.Customers)) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return domain.CustomerPage{}, wrapStripeErr(err, "could not list customers")
	}

	page.HasMore = iter.Meta().HasMore
	page.TotalCount = int64(len(page.Customers))

	return page, nil
}

// CustomerByID fetches a single Stripe customer.
func (c *Client) CustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	getParams := &stripe.CustomerParams{}
	getParams.Context = ctx

	cust, err := c.api.Customers.Get(id, getParams)
	if err != nil {
		return nil, wrapStripeErr(err, "could not get customer %s", id)
	}
	if cust.Deleted {
		return nil, serrors.With(serrors.ErrNotFound, "customer %s is deleted", id)
	}

	out := toDomainCustomer(cust)

	return &out, nil
}

// CheckoutSessions returns the customer's paid checkout sessions with line
// items expanded and flattened.
func (c *Client) CheckoutSessions(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	listParams := &stripe.CheckoutSessionListParams{}
	listParams.Context = ctx
	listParams.Customer = stripe.String(customerID)
	listParams.AddExpand("data.line_items")

	var out []domain.Transaction
	iter := c.api.CheckoutSessions.List(listParams)
	for iter.Next() {
		sess := iter.CheckoutSession()
		if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			continue
		}

		tx := domain.Transaction{
			ID:        sess.ID,
			Source:    domain.TransactionSourceCheckoutSession,
			Amount:    sess.AmountTotal,
			CreatedAt: time.Unix(sess.Created, 0).UTC(),
		}
		if sess.PaymentIntent != nil {
			tx.PaymentIntentID = sess.PaymentIntent.ID
		}
		if sess.LineItems != nil {
			for _, li := range sess.LineItems.Data {
				tx.Items = append(tx.Items, domain.LineItem{
					Name:        li.Description,
					Quantity:    li.Quantity,
					AmountTotal: li.AmountTotal,
				})
			}
		}

		out = append(out, tx)
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStripeErr(err, "could not list checkout sessions for %s", customerID)
	}

	return out, nil
}

// PaymentIntents returns the customer's succeeded payment intents. Each intent
// becomes a transaction with a single synthetic line item named after the
// intent's description.
func (c *Client) PaymentIntents(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	listParams := &stripe.PaymentIntentListParams{}
	listParams.Context = ctx
	listParams.Customer = stripe.String(customerID)

	var out []domain.Transaction
	iter := c.api.PaymentIntents.List(listParams)
	for iter.Next() {
		pi := iter.PaymentIntent()
		if pi.Status != stripe.PaymentIntentStatusSucceeded {
			continue
		}

		name := pi.Description
		if name == "" {
			name = fallbackIntentItem
		}

		out = append(out, domain.Transaction{
			ID:        pi.ID,
			Source:    domain.TransactionSourcePaymentIntent,
			Amount:    pi.Amount,
			CreatedAt: time.Unix(pi.Created, 0).UTC(),
			Items: []domain.LineItem{{
				Name:        name,
				Quantity:    1,
				AmountTotal: pi.Amount,
			}},
		})
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStripeErr(err, "could not list payment intents for %s", customerID)
	}

	return out, nil
}

package reconciler

import (
	"context"
	"fmt"

	"reconciler/pkg/domain"
	"reconciler/pkg/payments"

	"golang.org/x/sync/errgroup"
)

// stripeSide is the provider half of a reconciliation run: per-email
// aggregates, the raw customer count and the warnings gathered along the way.
type stripeSide struct {
	accounts       map[string]*domain.StripeAccount
	totalCustomers int64
	warnings       []domain.Warning
}

// fetchStripeSide pages through the provider's customers (optionally filtered
// by email) and fetches each customer's paid checkout sessions and succeeded
// payment intents in bounded-concurrency batches. A failed per-customer lookup
// contributes zero to the aggregates and is recorded as a warning; only the
// customer listing itself fails the run.
func (r *reconciler) fetchStripeSide(ctx context.Context, emailFilter string) (*stripeSide, error) {
	customers, err := r.listCustomers(ctx, emailFilter)
	if err != nil {
		return nil, err
	}

	// fan out the per-customer lookups. Results and warnings land in
	// per-customer slots so assembly below stays deterministic without locking.
	sessions := make([][]domain.Transaction, len(customers))
	sessionWarnings := make([]*domain.Warning, len(customers))
	intents := make([][]domain.Transaction, len(customers))
	intentWarnings := make([]*domain.Warning, len(customers))

	var g errgroup.Group
	g.SetLimit(r.options.SessionConcurrency)
	for i, customer := range customers {
		if customer.Email == "" {
			continue
		}

		g.Go(func() error {
			txs, err := r.payments.CheckoutSessions(ctx, customer.ID)
			if err != nil {
				sessionWarnings[i] = &domain.Warning{
					Scope:      domain.WarningScopeCheckoutSessions,
					CustomerID: customer.ID,
					Email:      NormalizeEmail(customer.Email),
					Reason:     err.Error(),
				}

				return nil
			}
			sessions[i] = txs

			return nil
		})
	}
	_ = g.Wait()

	var ig errgroup.Group
	ig.SetLimit(r.options.IntentConcurrency)
	for i, customer := range customers {
		if customer.Email == "" {
			continue
		}

		ig.Go(func() error {
			txs, err := r.payments.PaymentIntents(ctx, customer.ID)
			if err != nil {
				intentWarnings[i] = &domain.Warning{
					Scope:      domain.WarningScopePaymentIntents,
					CustomerID: customer.ID,
					Email:      NormalizeEmail(customer.Email),
					Reason:     err.Error(),
				}

				return nil
			}
			intents[i] = txs

			return nil
		})
	}
	_ = ig.Wait()

	// intents already represented by a checkout session must not be counted twice
	coveredIntents := make(map[string]struct{})
	for _, txs := range sessions {
		for _, tx := range txs {
			if tx.PaymentIntentID != "" {
				coveredIntents[tx.PaymentIntentID] = struct{}{}
			}
		}
	}

	side := &stripeSide{
		accounts:       make(map[string]*domain.StripeAccount),
		totalCustomers: int64(len(customers)),
	}
	for i, customer := range customers {
		if customer.Email == "" {
			side.warnings = append(side.warnings, domain.Warning{
				Scope:      domain.WarningScopeMissingEmail,
				CustomerID: customer.ID,
				Reason:     "customer has no email",
			})

			continue
		}
		if sessionWarnings[i] != nil {
			side.warnings = append(side.warnings, *sessionWarnings[i])
		}
		if intentWarnings[i] != nil {
			side.warnings = append(side.warnings, *intentWarnings[i])
		}

		email := NormalizeEmail(customer.Email)
		account, ok := side.accounts[email]
		if !ok {
			account = &domain.StripeAccount{
				CustomerID: customer.ID,
				Name:       customer.Name,
			}
			side.accounts[email] = account
		}

		for _, tx := range sessions[i] {
			account.Transactions = append(account.Transactions, tx)
			account.TotalSpent += tx.Amount
		}
		for _, tx := range intents[i] {
			if _, covered := coveredIntents[tx.ID]; covered {
				continue
			}
			account.Transactions = append(account.Transactions, tx)
			account.TotalSpent += tx.Amount
		}
	}

	return side, nil
}

// listCustomers pages through the full provider customer listing.
func (r *reconciler) listCustomers(ctx context.Context, emailFilter string) ([]domain.Customer, error) {
	var customers []domain.Customer
	var startingAfter string
	for {
		page, err := r.payments.Customers(ctx, payments.CustomersParams{
			Limit:         int64(r.options.CustomerPageSize),
			StartingAfter: startingAfter,
			Email:         emailFilter,
		})
		if err != nil {
			return nil, fmt.Errorf("could not list customers: %w", err)
		}

		customers = append(customers, page.Customers...)
		if !page.HasMore || len(page.Customers) == 0 {
			break
		}
		startingAfter = page.Customers[len(page.Customers)-1].ID
	}

	return customers, nil
}

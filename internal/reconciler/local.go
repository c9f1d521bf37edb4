package reconciler

import (
	"context"
	"fmt"

	"reconciler/pkg/domain"

	"github.com/google/uuid"
)

// localSide is the local-store half of a reconciliation run.
type localSide struct {
	accounts map[string]*domain.LocalAccount
	warnings []domain.Warning
}

// fetchLocalSide loads all paid orders with their line items and keys them by
// the owning user's email. Profiles without an email fall back to a provider
// customer-ID lookup; a failed lookup drops that user's orders from the
// aggregate and is recorded as a warning.
func (r *reconciler) fetchLocalSide(ctx context.Context, emailFilter string) (*localSide, error) {
	orders, err := r.storage.PaidOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch paid orders: %w", err)
	}

	userIDs := make([]domain.UserID, 0, len(orders))
	seen := make(map[domain.UserID]struct{}, len(orders))
	for _, order := range orders {
		if _, ok := seen[order.UserID]; ok {
			continue
		}
		seen[order.UserID] = struct{}{}
		userIDs = append(userIDs, order.UserID)
	}

	profiles, err := r.storage.ProfilesByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("could not fetch profiles: %w", err)
	}

	side := &localSide{
		accounts: make(map[string]*domain.LocalAccount),
	}
	// one provider lookup per customer ID, one warning per affected user
	resolvedEmails := make(map[string]string)
	warnedUsers := make(map[domain.UserID]struct{})
	warnMissing := func(userID domain.UserID, customerID, reason string) {
		if _, ok := warnedUsers[userID]; ok {
			return
		}
		warnedUsers[userID] = struct{}{}
		side.warnings = append(side.warnings, domain.Warning{
			Scope:      domain.WarningScopeMissingEmail,
			CustomerID: customerID,
			Reason:     reason,
		})
	}
	for _, order := range orders {
		profile, ok := profiles[order.UserID]
		if !ok {
			warnMissing(order.UserID, "", fmt.Sprintf("no profile for user %s", uuid.UUID(order.UserID)))

			continue
		}

		email := NormalizeEmail(profile.Email)
		if email == "" && profile.StripeCustomerID != "" {
			resolved, ok := resolvedEmails[profile.StripeCustomerID]
			if !ok {
				customer, err := r.payments.CustomerByID(ctx, profile.StripeCustomerID)
				if err != nil {
					side.warnings = append(side.warnings, domain.Warning{
						Scope:      domain.WarningScopeEmailLookup,
						CustomerID: profile.StripeCustomerID,
						Reason:     err.Error(),
					})
					// the lookup warning already covers this user
					warnedUsers[order.UserID] = struct{}{}
				} else {
					resolved = NormalizeEmail(customer.Email)
				}
				resolvedEmails[profile.StripeCustomerID] = resolved
			}
			email = resolved
		}
		if email == "" {
			warnMissing(order.UserID, profile.StripeCustomerID,
				fmt.Sprintf("no email for user %s", uuid.UUID(order.UserID)))

			continue
		}
		if emailFilter != "" && email != emailFilter {
			continue
		}

		account, ok := side.accounts[email]
		if !ok {
			account = &domain.LocalAccount{
				UserID: order.UserID,
				Name:   profile.FullName,
			}
			side.accounts[email] = account
		}

		for _, item := range order.Items {
			account.OrderItems = append(account.OrderItems, domain.LineItem{
				Name:        item.Name,
				Quantity:    item.Quantity,
				AmountTotal: item.AmountTotal,
			})
		}
		account.TotalSpent += order.AmountTotal
	}

	return side, nil
}

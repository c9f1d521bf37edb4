package reconciler

import (
	"sort"

	"reconciler/pkg/domain"
)

// amountTolerance is the rounding delta, in cents, below which two totals are
// considered equal.
const amountTolerance = 1

// aggregateLineItems rolls line items up under their normalized name, summing
// quantities and totals.
func aggregateLineItems(items []domain.LineItem) map[string]*domain.ItemAggregate {
	out := make(map[string]*domain.ItemAggregate)
	for _, item := range items {
		name := NormalizeItemName(item.Name)
		agg, ok := out[name]
		if !ok {
			agg = &domain.ItemAggregate{Name: name}
			out[name] = agg
		}
		agg.Quantity += item.Quantity
		agg.AmountTotal += item.AmountTotal
	}

	return out
}

// stripeItemAggregates flattens an account's transactions into per-item
// aggregates keyed by normalized name.
func stripeItemAggregates(account *domain.StripeAccount) map[string]*domain.ItemAggregate {
	if account == nil {
		return nil
	}

	var items []domain.LineItem
	for _, tx := range account.Transactions {
		items = append(items, tx.Items...)
	}

	return aggregateLineItems(items)
}

// buildUserReport compares the two sides of one email and lists every
// mismatched item. Either side may be nil when the email only exists in the
// other source.
func buildUserReport(email string, stripe *domain.StripeAccount, local *domain.LocalAccount) domain.UserReport {
	stripeItems := stripeItemAggregates(stripe)
	var localItems map[string]*domain.ItemAggregate
	if local != nil {
		localItems = aggregateLineItems(local.OrderItems)
	}

	names := make([]string, 0, len(stripeItems)+len(localItems))
	for name := range stripeItems {
		names = append(names, name)
	}
	for name := range localItems {
		if _, ok := stripeItems[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var discrepancies []domain.Discrepancy
	for _, name := range names {
		s := stripeItems[name]
		l := localItems[name]

		switch {
		case l == nil:
			discrepancies = append(discrepancies, domain.Discrepancy{
				Kind:           domain.DiscrepancyMissingLocal,
				ItemName:       name,
				StripeQuantity: s.Quantity,
				StripeTotal:    s.AmountTotal,
			})
		case s == nil:
			discrepancies = append(discrepancies, domain.Discrepancy{
				Kind:             domain.DiscrepancyMissingStripe,
				ItemName:         name,
				SupabaseQuantity: l.Quantity,
				SupabaseTotal:    l.AmountTotal,
			})
		case s.Quantity != l.Quantity:
			discrepancies = append(discrepancies, domain.Discrepancy{
				Kind:             domain.DiscrepancyQuantityMismatch,
				ItemName:         name,
				StripeQuantity:   s.Quantity,
				StripeTotal:      s.AmountTotal,
				SupabaseQuantity: l.Quantity,
				SupabaseTotal:    l.AmountTotal,
			})
		case abs(s.AmountTotal-l.AmountTotal) > amountTolerance:
			discrepancies = append(discrepancies, domain.Discrepancy{
				Kind:             domain.DiscrepancyAmountMismatch,
				ItemName:         name,
				StripeQuantity:   s.Quantity,
				StripeTotal:      s.AmountTotal,
				SupabaseQuantity: l.Quantity,
				SupabaseTotal:    l.AmountTotal,
			})
		}
	}

	report := domain.UserReport{
		Email:         email,
		HasIssues:     len(discrepancies) > 0,
		Discrepancies: discrepancies,
	}
	if stripe != nil {
		report.CustomerID = stripe.CustomerID
		report.Name = stripe.Name
		report.StripeTotal = stripe.TotalSpent
	}
	if local != nil {
		report.UserID = local.UserID
		if report.Name == "" {
			report.Name = local.Name
		}
		report.SupabaseTotal = local.TotalSpent
	}
	report.TotalDifference = report.StripeTotal - report.SupabaseTotal

	return report
}

// buildSummary joins the two sides on email and produces the run output:
// aggregate counts, grand totals and per-user reports sorted by descending
// absolute difference.
func buildSummary(emailFilter string, stripe *stripeSide, local *localSide) *domain.Summary {
	summary := &domain.Summary{
		EmailFilter:          emailFilter,
		TotalStripeCustomers: stripe.totalCustomers,
		TotalSupabaseUsers:   int64(len(local.accounts)),
	}

	emails := make([]string, 0, len(stripe.accounts)+len(local.accounts))
	for email := range stripe.accounts {
		emails = append(emails, email)
	}
	for email := range local.accounts {
		if _, ok := stripe.accounts[email]; !ok {
			emails = append(emails, email)
		}
	}
	sort.Strings(emails)

	for _, email := range emails {
		stripeAccount := stripe.accounts[email]
		localAccount := local.accounts[email]
		if stripeAccount != nil && localAccount != nil {
			summary.MatchedEmails++
		}

		report := buildUserReport(email, stripeAccount, localAccount)
		if report.HasIssues {
			summary.UsersWithIssues++
		}
		summary.TotalStripeAmount += report.StripeTotal
		summary.TotalSupabaseAmount += report.SupabaseTotal
		summary.Users = append(summary.Users, report)
	}
	summary.TotalDifference = summary.TotalStripeAmount - summary.TotalSupabaseAmount

	// worst offenders first; ties keep the email ordering for stable output
	sort.SliceStable(summary.Users, func(i, j int) bool {
		return abs(summary.Users[i].TotalDifference) > abs(summary.Users[j].TotalDifference)
	})

	warnings := make([]domain.Warning, 0, len(stripe.warnings)+len(local.warnings))
	warnings = append(warnings, stripe.warnings...)
	warnings = append(warnings, local.warnings...)
	if len(warnings) > 0 {
		summary.Warnings = warnings
	}

	return summary
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}

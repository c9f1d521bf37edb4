package domain

import (
	"time"

	"github.com/google/uuid"
)

// StripeAccount is the provider-side aggregate for one customer email. It is a
// transient, request-scoped projection with no persistence of its own.
type StripeAccount struct {
	// CustomerID is the provider customer identifier.
	CustomerID string `json:"customerId"`
	// Name is the customer's display name at the provider.
	Name string `json:"name"`
	// Transactions are the customer's completed payments.
	Transactions []Transaction `json:"transactions"`
	// TotalSpent is the sum of all transaction amounts in cents.
	TotalSpent int64 `json:"totalSpent"`
}

// LocalAccount is the local-store aggregate for one user email.
type LocalAccount struct {
	// UserID is the local user identifier.
	UserID UserID `json:"userId"`
	// Name is the user's display name from their profile.
	Name string `json:"name"`
	// OrderItems are the line items of all of the user's paid orders.
	OrderItems []LineItem `json:"orderItems"`
	// TotalSpent is the sum of all paid order totals in cents.
	TotalSpent int64 `json:"totalSpent"`
}

// ItemAggregate is the per-item rollup used for matching: quantities and
// totals summed under the normalized item name.
type ItemAggregate struct {
	// Name is the normalized (lower-cased, trimmed) item name.
	Name string `json:"name"`
	// Quantity is the summed purchased quantity.
	Quantity int64 `json:"quantity"`
	// AmountTotal is the summed charged amount in cents.
	AmountTotal int64 `json:"amountTotal"`
}

// DiscrepancyKind classifies a detected mismatch between the provider's and
// the local store's view of a purchased item.
type DiscrepancyKind string

const (
	// DiscrepancyMissingLocal means the item appears at the provider but has no
	// local order-item counterpart.
	DiscrepancyMissingLocal DiscrepancyKind = "missing_in_supabase"
	// DiscrepancyMissingStripe means the item is recorded locally but the
	// provider has no matching transaction line.
	DiscrepancyMissingStripe DiscrepancyKind = "missing_in_stripe"
	// DiscrepancyQuantityMismatch means the summed quantities differ.
	DiscrepancyQuantityMismatch DiscrepancyKind = "quantity_mismatch"
	// DiscrepancyAmountMismatch means the summed totals differ by more than the
	// rounding tolerance.
	DiscrepancyAmountMismatch DiscrepancyKind = "amount_mismatch"
)

// Discrepancy describes one mismatched item for a user.
type Discrepancy struct {
	// Kind classifies the mismatch.
	Kind DiscrepancyKind `json:"type"`
	// ItemName is the normalized item name the two sides were matched on.
	ItemName string `json:"itemName"`

	// StripeQuantity and StripeTotal are the provider-side aggregates; zero when
	// the item is missing at the provider.
	StripeQuantity int64 `json:"stripeQuantity"`
	StripeTotal    int64 `json:"stripeTotal"`

	// SupabaseQuantity and SupabaseTotal are the local-store aggregates; zero
	// when the item has no local record.
	SupabaseQuantity int64 `json:"supabaseQuantity"`
	SupabaseTotal    int64 `json:"supabaseTotal"`
}

// UserReport is the reconciliation verdict for a single customer email.
type UserReport struct {
	// Email is the lower-cased email the two sides were joined on.
	Email string `json:"email"`
	// CustomerID is the provider customer ID, empty if the user only exists locally.
	CustomerID string `json:"customerId,omitempty"`
	// UserID is the local user ID, zero if the customer only exists at the provider.
	UserID UserID `json:"userId,omitempty"`
	// Name is the best known display name for the user.
	Name string `json:"name,omitempty"`

	// StripeTotal is the provider-side total spent in cents.
	StripeTotal int64 `json:"stripeTotal"`
	// SupabaseTotal is the local-store total spent in cents.
	SupabaseTotal int64 `json:"supabaseTotal"`
	// TotalDifference is StripeTotal minus SupabaseTotal.
	TotalDifference int64 `json:"totalDifference"`

	// HasIssues reports whether any discrepancy was found for this user.
	HasIssues bool `json:"hasIssues"`
	// Discrepancies lists the mismatched items.
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// WarningScope tells which fetch step produced a partial-failure warning.
type WarningScope string

const (
	// WarningScopeCustomerList marks a failure while paging provider customers.
	WarningScopeCustomerList WarningScope = "customer_list"
	// WarningScopeCheckoutSessions marks a failed session lookup for one customer.
	WarningScopeCheckoutSessions WarningScope = "checkout_sessions"
	// WarningScopePaymentIntents marks a failed intent lookup for one customer.
	WarningScopePaymentIntents WarningScope = "payment_intents"
	// WarningScopeEmailLookup marks a failed provider lookup while resolving a
	// local user's email via their customer ID.
	WarningScopeEmailLookup WarningScope = "email_lookup"
	// WarningScopeMissingEmail marks a record that could not be keyed because no
	// email is known on either side.
	WarningScopeMissingEmail WarningScope = "missing_email"
)

// Warning records a per-item fetch failure that caused the run to proceed with
// partial data. It lets callers distinguish "zero activity" from "lookup failed".
type Warning struct {
	// Scope tells which fetch step failed.
	Scope WarningScope `json:"scope"`
	// CustomerID is the affected provider customer, when known.
	CustomerID string `json:"customerId,omitempty"`
	// Email is the affected email, when known.
	Email string `json:"email,omitempty"`
	// Reason is the underlying error message.
	Reason string `json:"reason"`
}

// Summary is the full output of one reconciliation run. It contains only data
// derived from the two sources, so re-running against unchanged data produces
// an identical summary.
type Summary struct {
	// EmailFilter echoes the optional filter the run was invoked with.
	EmailFilter string `json:"emailFilter,omitempty"`

	// TotalStripeCustomers is the number of provider customers seen.
	TotalStripeCustomers int64 `json:"totalStripeCustomers"`
	// TotalSupabaseUsers is the number of local users with paid orders seen.
	TotalSupabaseUsers int64 `json:"totalSupabaseUsers"`
	// MatchedEmails is the number of emails present on both sides.
	MatchedEmails int64 `json:"matchedEmails"`
	// UsersWithIssues is the number of users with at least one discrepancy.
	UsersWithIssues int64 `json:"usersWithIssues"`

	// TotalStripeAmount is the provider-side grand total in cents.
	TotalStripeAmount int64 `json:"totalStripeAmount"`
	// TotalSupabaseAmount is the local-store grand total in cents.
	TotalSupabaseAmount int64 `json:"totalSupabaseAmount"`
	// TotalDifference is TotalStripeAmount minus TotalSupabaseAmount.
	TotalDifference int64 `json:"totalDifference"`

	// Users lists per-user reports sorted by descending absolute TotalDifference.
	Users []UserReport `json:"users"`
	// Warnings lists the per-item fetch failures the run proceeded past.
	Warnings []Warning `json:"warnings,omitempty"`
}

// ReportID uniquely identifies a stored reconciliation report.
type ReportID uuid.UUID

// Report is a persisted reconciliation summary produced by a background run.
type Report struct {
	// ID is the unique identifier of the report.
	ID ReportID `json:"id"`
	// EmailFilter is the filter the run was enqueued with, empty for full runs.
	EmailFilter string `json:"emailFilter,omitempty"`
	// Summary is the reconciliation output.
	Summary Summary `json:"summary"`

	// UsersWithIssues and TotalDifference duplicate the headline summary numbers
	// as columns so report listings can show them without decoding the payload.
	UsersWithIssues int64 `json:"usersWithIssues"`
	TotalDifference int64 `json:"totalDifference"`

	// CreatedAt is the time when the report row was stored.
	CreatedAt time.Time `json:"createdAt"`
}

package domain

import "time"

// Customer is the payment provider's view of a buyer.
type Customer struct {
	// ID is the provider-side customer identifier (e.g. "cus_...").
	ID string `json:"id"`
	// Email is the customer's email as recorded by the provider.
	Email string `json:"email"`
	// Name is the customer's display name as recorded by the provider.
	Name string `json:"name"`
	// CreatedAt is when the customer record was created at the provider.
	CreatedAt time.Time `json:"createdAt"`
}

// CustomerPage is one page of provider customers together with pagination info.
type CustomerPage struct {
	// Customers contains the current page of customer records.
	Customers []Customer `json:"customers"`
	// HasMore reports whether more customers exist beyond this page.
	HasMore bool `json:"hasMore"`
	// TotalCount is the number of customers in this page. The provider does not
	// expose an absolute total for customer listings.
	TotalCount int64 `json:"totalCount"`
}

// TransactionSource identifies which provider object a transaction came from.
type TransactionSource string

const (
	// TransactionSourceCheckoutSession marks a transaction built from a
	// provider-hosted checkout session.
	TransactionSourceCheckoutSession TransactionSource = "checkout_session"
	// TransactionSourcePaymentIntent marks a transaction built from a bare
	// payment intent that is not tied to any checkout session.
	TransactionSourcePaymentIntent TransactionSource = "payment_intent"
)

// LineItem is a single purchased item flattened out of a provider transaction
// or a local order.
type LineItem struct {
	// Name is the item's display name as it appears at its source.
	Name string `json:"name"`
	// Quantity is the purchased quantity.
	Quantity int64 `json:"quantity"`
	// AmountTotal is the total charged for this item in cents.
	AmountTotal int64 `json:"amountTotal"`
}

// Transaction is a completed payment at the provider, flattened to the fields
// the reconciliation cares about.
type Transaction struct {
	// ID is the provider object identifier (session or intent ID).
	ID string `json:"id"`
	// Source tells which provider object this transaction was built from.
	Source TransactionSource `json:"source"`
	// Amount is the total charged in cents.
	Amount int64 `json:"amount"`
	// Items contains the flattened line items of the transaction.
	Items []LineItem `json:"items"`
	// CreatedAt is when the transaction happened at the provider.
	CreatedAt time.Time `json:"createdAt"`
	// PaymentIntentID is the intent backing a checkout session, when known.
	// It is used to avoid double counting intents already covered by a session.
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
}

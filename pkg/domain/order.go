package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderID uniquely identifies an order.
type OrderID uuid.UUID

// OrderItemID uniquely identifies a single line item within an order.
type OrderItemID uuid.UUID

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	// OrderStatusPending indicates the order was created but payment has not completed.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusPaid indicates payment completed successfully.
	OrderStatusPaid OrderStatus = "PAID"
	// OrderStatusCanceled indicates the order was abandoned or refunded.
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// OrderItem is one purchased line item of an order: a tournament entry, an
// activity slot, an add-on merchandise article and so on.
type OrderItem struct {
	// ID is the unique identifier of the line item.
	ID OrderItemID `json:"id"`
	// OrderID is the order this line item belongs to.
	OrderID OrderID `json:"orderId"`

	// Name is the display name of the purchased item as recorded locally.
	Name string `json:"name"`
	// Quantity is the purchased quantity.
	Quantity int64 `json:"quantity"`
	// UnitAmount is the price of one unit in the smallest currency unit (cents).
	UnitAmount int64 `json:"unitAmount"`
	// AmountTotal is the total charged for this line item in cents.
	AmountTotal int64 `json:"amountTotal"`

	// CreatedAt is the time when the line item row was created.
	CreatedAt time.Time `json:"createdAt"`
}

// Order is a locally recorded purchase made by a user.
type Order struct {
	// ID is the unique identifier of the order.
	ID OrderID `json:"id"`
	// UserID is the identifier of the user who placed the order.
	UserID UserID `json:"userId"`

	// Status is the current lifecycle state of the order.
	Status OrderStatus `json:"status"`
	// AmountTotal is the total charged for the whole order in cents.
	AmountTotal int64 `json:"amountTotal"`
	// Currency is the ISO 4217 currency code in lower case.
	Currency string `json:"currency"`

	// Items contains the order's line items when they were loaded.
	Items []OrderItem `json:"items,omitempty"`

	// CreatedAt is the time when the order was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time when the order was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt marks when the order was soft-deleted; zero value means not deleted.
	DeletedAt time.Time `json:"-"`
}

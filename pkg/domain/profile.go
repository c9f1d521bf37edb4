package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID uniquely identifies a registered user within the platform.
// It is a thin wrapper around uuid.UUID to provide type safety at the domain layer.
type UserID uuid.UUID

// Profile is the local account record for a registered user. It links the
// platform user to their payment-provider customer record.
type Profile struct {
	// ID is the unique identifier of the user, shared with the auth system.
	ID UserID `json:"id"`

	// Email is the user's contact email. It may be empty for accounts created
	// through legacy imports; in that case StripeCustomerID is used to resolve
	// the email from the payment provider.
	Email string `json:"email"`
	// FullName is the user's display name.
	FullName string `json:"fullName"`
	// StripeCustomerID is the payment-provider customer identifier, if known.
	StripeCustomerID string `json:"stripeCustomerId"`

	// CreatedAt is the time when the profile was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time when the profile was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt marks when the profile was soft-deleted; zero value means not deleted.
	DeletedAt time.Time `json:"-"`
}

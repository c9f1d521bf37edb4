package storage

import (
	"context"

	"reconciler/pkg/domain"
)

// OrderStorage defines the read and write operations on profiles, orders and
// order items that the reconciliation needs.
type OrderStorage interface {
	// StoreProfiles inserts one or more profiles and returns the stored rows as
	// they exist in the database (including generated fields).
	StoreProfiles(ctx context.Context, profiles ...domain.Profile) ([]domain.Profile, error)
	// StoreOrders inserts one or more orders together with their line items and
	// returns the stored rows, items populated.
	StoreOrders(ctx context.Context, orders ...domain.Order) ([]domain.Order, error)
	// PaidOrders returns all non-deleted orders in PAID status with their line
	// items populated, ordered by creation time.
	PaidOrders(ctx context.Context) ([]domain.Order, error)
	// ProfilesByUserIDs returns the non-deleted profiles for the given user IDs,
	// keyed by user ID. Missing profiles are simply absent from the map.
	ProfilesByUserIDs(ctx context.Context, ids []domain.UserID) (map[domain.UserID]domain.Profile, error)
}

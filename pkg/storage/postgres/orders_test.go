package postgres_test

import (
	"context"
	"testing"

	"reconciler/pkg/domain"
	"reconciler/pkg/storage/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func storeTestProfile(t *testing.T, pg *postgres.PgSQL, email string) domain.Profile {
	t.Helper()

	stored, err := pg.StoreProfiles(context.Background(), domain.Profile{
		Email:            email,
		FullName:         "Test User",
		StripeCustomerID: "cus_" + uuid.NewString(),
	})
	require.NoError(t, err)
	require.Len(t, stored, 1)

	return stored[0]
}

func TestPgSQL_StoreProfiles(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	t.Run("store single profile", func(t *testing.T) {
		t.Parallel()

		res, err := pgSQL.StoreProfiles(ctx, domain.Profile{
			Email:            "alice@example.com",
			FullName:         "Alice",
			StripeCustomerID: "cus_alice",
		})
		require.NoError(t, err)
		require.Len(t, res, 1)
		require.Equal(t, "alice@example.com", res[0].Email)
		require.NotEqual(t, domain.UserID(uuid.Nil), res[0].ID)
		require.False(t, res[0].CreatedAt.IsZero())
	})

	t.Run("store multiple profiles", func(t *testing.T) {
		t.Parallel()

		res, err := pgSQL.StoreProfiles(ctx,
			domain.Profile{Email: "bob@example.com", FullName: "Bob"},
			domain.Profile{Email: "carol@example.com", FullName: "Carol"},
		)
		require.NoError(t, err)
		require.Len(t, res, 2)
	})

	t.Run("store empty profiles", func(t *testing.T) {
		t.Parallel()

		res, err := pgSQL.StoreProfiles(ctx)
		require.NoError(t, err)
		require.Empty(t, res)
	})
}

func TestPgSQL_StoreOrders(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	profile := storeTestProfile(t, pgSQL, "orders@example.com")

	t.Run("store order with items", func(t *testing.T) {
		t.Parallel()

		res, err := pgSQL.StoreOrders(ctx, domain.Order{
			UserID:      profile.ID,
			Status:      domain.OrderStatusPaid,
			AmountTotal: 5000,
			Currency:    "usd",
			Items: []domain.OrderItem{
				{Name: "General Admission", Quantity: 2, UnitAmount: 2000, AmountTotal: 4000},
				{Name: "Parking Pass", Quantity: 1, UnitAmount: 1000, AmountTotal: 1000},
			},
		})
		require.NoError(t, err)
		require.Len(t, res, 1)
		require.Len(t, res[0].Items, 2)
		for _, item := range res[0].Items {
			require.Equal(t, res[0].ID, item.OrderID)
			require.NotEqual(t, domain.OrderItemID(uuid.Nil), item.ID)
		}
	})

	t.Run("store multiple orders stitches items to the right order", func(t *testing.T) {
		t.Parallel()

		res, err := pgSQL.StoreOrders(ctx,
			domain.Order{
				UserID:      profile.ID,
				Status:      domain.OrderStatusPaid,
				AmountTotal: 1500,
				Currency:    "usd",
				Items:       []domain.OrderItem{{Name: "VIP Ticket", Quantity: 1, UnitAmount: 1500, AmountTotal: 1500}},
			},
			domain.Order{
				UserID:      profile.ID,
				Status:      domain.OrderStatusPending,
				AmountTotal: 700,
				Currency:    "usd",
				Items:       []domain.OrderItem{{Name: "T-Shirt", Quantity: 1, UnitAmount: 700, AmountTotal: 700}},
			},
		)
		require.NoError(t, err)
		require.Len(t, res, 2)
		require.Len(t, res[0].Items, 1)
		require.Equal(t, "VIP Ticket", res[0].Items[0].Name)
		require.Len(t, res[1].Items, 1)
		require.Equal(t, "T-Shirt", res[1].Items[0].Name)
	})

	t.Run("store empty orders", func(t *testing.T) {
		t.Parallel()

		res, err := pgSQL.StoreOrders(ctx)
		require.NoError(t, err)
		require.Empty(t, res)
	})
}

func TestPgSQL_PaidOrders(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	profile := storeTestProfile(t, pgSQL, "paid@example.com")

	stored, err := pgSQL.StoreOrders(ctx,
		domain.Order{
			UserID:      profile.ID,
			Status:      domain.OrderStatusPaid,
			AmountTotal: 2000,
			Currency:    "usd",
			Items:       []domain.OrderItem{{Name: "Workshop", Quantity: 1, UnitAmount: 2000, AmountTotal: 2000}},
		},
		domain.Order{
			UserID:      profile.ID,
			Status:      domain.OrderStatusPending,
			AmountTotal: 999,
			Currency:    "usd",
		},
		domain.Order{
			UserID:      profile.ID,
			Status:      domain.OrderStatusCanceled,
			AmountTotal: 500,
			Currency:    "usd",
		},
	)
	require.NoError(t, err)
	require.Len(t, stored, 3)

	paid, err := pgSQL.PaidOrders(ctx)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	require.Equal(t, stored[0].ID, paid[0].ID)
	require.Len(t, paid[0].Items, 1)
	require.Equal(t, "Workshop", paid[0].Items[0].Name)

	// soft-deleted paid orders are excluded
	_, err = pgSQL.DB.ExecContext(ctx,
		"UPDATE orders SET deleted_at = CURRENT_TIMESTAMP WHERE id = $1", uuid.UUID(stored[0].ID))
	require.NoError(t, err)

	paid, err = pgSQL.PaidOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, paid)
}

func TestPgSQL_ProfilesByUserIDs(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	p1 := storeTestProfile(t, pgSQL, "lookup1@example.com")
	p2 := storeTestProfile(t, pgSQL, "lookup2@example.com")
	missing := domain.UserID(uuid.New())

	got, err := pgSQL.ProfilesByUserIDs(ctx, []domain.UserID{p1.ID, p2.ID, missing})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, p1.Email, got[p1.ID].Email)
	require.Equal(t, p2.Email, got[p2.ID].Email)
	_, ok := got[missing]
	require.False(t, ok)

	// empty input short-circuits
	got, err = pgSQL.ProfilesByUserIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

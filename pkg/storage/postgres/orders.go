package postgres

import (
	"context"
	"fmt"

	"reconciler/pkg/domain"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	profilesTable   = "profiles"
	ordersTable     = "orders"
	orderItemsTable = "order_items"
)

func (p *PgSQL) StoreProfiles(ctx context.Context, profiles ...domain.Profile) ([]domain.Profile, error) {
	if len(profiles) == 0 {
		return nil, nil
	}

	pgProfiles := make([]PgProfile, len(profiles))
	for i, profile := range profiles {
		pgProfiles[i].FromDomain(profile)
	}

	var result []PgProfile
	if err := p.Builder.Insert(profilesTable).
		Rows(pgProfiles).
		Returning(&PgProfile{}).
		Executor().ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not store profiles into pg: %w", err)
	}

	out := make([]domain.Profile, len(result))
	for i := range result {
		out[i] = result[i].ToDomain()
	}

	return out, nil
}

// StoreOrders inserts orders and their line items. Postgres returns inserted
// rows in VALUES order, which is what lets the generated order IDs be stitched
// back onto the items of each input order.
func (p *PgSQL) StoreOrders(ctx context.Context, orders ...domain.Order) ([]domain.Order, error) {
	if len(orders) == 0 {
		return nil, nil
	}

	pgOrders := make([]PgOrder, len(orders))
	for i, order := range orders {
		pgOrders[i].FromDomain(order)
	}

	var insertedOrders []PgOrder
	if err := p.Builder.Insert(ordersTable).
		Rows(pgOrders).
		Returning(&PgOrder{}).
		Executor().ScanStructsContext(ctx, &insertedOrders); err != nil {
		return nil, fmt.Errorf("could not store orders into pg: %w", err)
	}

	out := make([]domain.Order, len(insertedOrders))
	var pgItems []PgOrderItem
	for i := range insertedOrders {
		out[i] = insertedOrders[i].ToDomain()
		for _, item := range orders[i].Items {
			item.OrderID = out[i].ID

			var pgItem PgOrderItem
			pgItem.FromDomain(item)
			pgItems = append(pgItems, pgItem)
		}
	}

	if len(pgItems) > 0 {
		var insertedItems []PgOrderItem
		if err := p.Builder.Insert(orderItemsTable).
			Rows(pgItems).
			Returning(&PgOrderItem{}).
			Executor().ScanStructsContext(ctx, &insertedItems); err != nil {
			return nil, fmt.Errorf("could not store order items into pg: %w", err)
		}

		itemsByOrder := make(map[domain.OrderID][]domain.OrderItem, len(out))
		for i := range insertedItems {
			item := insertedItems[i].ToDomain()
			itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
		}
		for i := range out {
			out[i].Items = itemsByOrder[out[i].ID]
		}
	}

	return out, nil
}

// PaidOrders returns all non-deleted orders in PAID status with their line
// items populated, ordered by creation time.
func (p *PgSQL) PaidOrders(ctx context.Context) ([]domain.Order, error) {
	var rows []PgOrder
	if err := p.Builder.From(ordersTable).
		Where(
			goqu.I("status").Eq(string(domain.OrderStatusPaid)),
			goqu.I("deleted_at").IsNull(),
		).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch paid orders from pg: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	orderIDs := make([]uuid.UUID, len(rows))
	out := make([]domain.Order, len(rows))
	for i := range rows {
		orderIDs[i] = rows[i].ID
		out[i] = rows[i].ToDomain()
	}

	var itemRows []PgOrderItem
	if err := p.Builder.From(orderItemsTable).
		Where(goqu.I("order_id").In(orderIDs)).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &itemRows); err != nil {
		return nil, fmt.Errorf("could not fetch order items from pg: %w", err)
	}

	itemsByOrder := make(map[domain.OrderID][]domain.OrderItem, len(out))
	for i := range itemRows {
		item := itemRows[i].ToDomain()
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}
	for i := range out {
		out[i].Items = itemsByOrder[out[i].ID]
	}

	return out, nil
}

// ProfilesByUserIDs returns the non-deleted profiles for the given user IDs,
// keyed by user ID. IDs without a matching profile are absent from the map.
func (p *PgSQL) ProfilesByUserIDs(ctx context.Context,
	ids []domain.UserID) (map[domain.UserID]domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rawIDs := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		rawIDs[i] = uuid.UUID(id)
	}

	var rows []PgProfile
	if err := p.Builder.From(profilesTable).
		Where(
			goqu.I("id").In(rawIDs),
			goqu.I("deleted_at").IsNull(),
		).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch profiles from pg: %w", err)
	}

	out := make(map[domain.UserID]domain.Profile, len(rows))
	for i := range rows {
		profile := rows[i].ToDomain()
		out[profile.ID] = profile
	}

	return out, nil
}

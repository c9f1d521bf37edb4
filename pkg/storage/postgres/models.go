package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"reconciler/pkg/domain"

	"github.com/google/uuid"
)

type PgProfile struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	Email            string `db:"email"`
	FullName         string `db:"full_name"`
	StripeCustomerID string `db:"stripe_customer_id"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func (p *PgProfile) ToDomain() domain.Profile {
	return domain.Profile{
		ID:               domain.UserID(p.ID),
		Email:            p.Email,
		FullName:         p.FullName,
		StripeCustomerID: p.StripeCustomerID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt.Time,
		DeletedAt:        p.DeletedAt.Time,
	}
}

func (p *PgProfile) FromDomain(profile domain.Profile) {
	*p = PgProfile{
		ID:               uuid.UUID(profile.ID),
		Email:            profile.Email,
		FullName:         profile.FullName,
		StripeCustomerID: profile.StripeCustomerID,
		CreatedAt:        profile.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  profile.UpdatedAt,
			Valid: !profile.UpdatedAt.IsZero(),
		},
		DeletedAt: sql.NullTime{
			Time:  profile.DeletedAt,
			Valid: !profile.DeletedAt.IsZero(),
		},
	}
}

type PgOrder struct {
	ID     uuid.UUID `db:"id"      goqu:"skipinsert"`
	UserID uuid.UUID `db:"user_id"`

	Status      string `db:"status"`
	AmountTotal int64  `db:"amount_total"`
	Currency    string `db:"currency"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func (o *PgOrder) ToDomain() domain.Order {
	return domain.Order{
		ID:          domain.OrderID(o.ID),
		UserID:      domain.UserID(o.UserID),
		Status:      domain.OrderStatus(o.Status),
		AmountTotal: o.AmountTotal,
		Currency:    o.Currency,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt.Time,
		DeletedAt:   o.DeletedAt.Time,
	}
}

func (o *PgOrder) FromDomain(order domain.Order) {
	*o = PgOrder{
		ID:          uuid.UUID(order.ID),
		UserID:      uuid.UUID(order.UserID),
		Status:      string(order.Status),
		AmountTotal: order.AmountTotal,
		Currency:    order.Currency,
		CreatedAt:   order.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  order.UpdatedAt,
			Valid: !order.UpdatedAt.IsZero(),
		},
		DeletedAt: sql.NullTime{
			Time:  order.DeletedAt,
			Valid: !order.DeletedAt.IsZero(),
		},
	}
}

type PgOrderItem struct {
	ID      uuid.UUID `db:"id"       goqu:"skipinsert"`
	OrderID uuid.UUID `db:"order_id"`

	ItemName    string `db:"item_name"`
	Quantity    int64  `db:"quantity"`
	UnitAmount  int64  `db:"unit_amount"`
	AmountTotal int64  `db:"amount_total"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (i *PgOrderItem) ToDomain() domain.OrderItem {
	return domain.OrderItem{
		ID:          domain.OrderItemID(i.ID),
		OrderID:     domain.OrderID(i.OrderID),
		Name:        i.ItemName,
		Quantity:    i.Quantity,
		UnitAmount:  i.UnitAmount,
		AmountTotal: i.AmountTotal,
		CreatedAt:   i.CreatedAt,
	}
}

func (i *PgOrderItem) FromDomain(item domain.OrderItem) {
	*i = PgOrderItem{
		ID:          uuid.UUID(item.ID),
		OrderID:     uuid.UUID(item.OrderID),
		ItemName:    item.Name,
		Quantity:    item.Quantity,
		UnitAmount:  item.UnitAmount,
		AmountTotal: item.AmountTotal,
		CreatedAt:   item.CreatedAt,
	}
}

type PgReport struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	EmailFilter     string          `db:"email_filter"`
	Summary         json.RawMessage `db:"summary"`
	UsersWithIssues int64           `db:"users_with_issues"`
	TotalDifference int64           `db:"total_difference"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (r *PgReport) ToDomain() (*domain.Report, error) {
	var summary domain.Summary
	if err := json.Unmarshal(r.Summary, &summary); err != nil {
		return nil, fmt.Errorf("could not unmarshal report summary: %w", err)
	}

	return &domain.Report{
		ID:              domain.ReportID(r.ID),
		EmailFilter:     r.EmailFilter,
		Summary:         summary,
		UsersWithIssues: r.UsersWithIssues,
		TotalDifference: r.TotalDifference,
		CreatedAt:       r.CreatedAt,
	}, nil
}

func (r *PgReport) FromDomain(report domain.Report) error {
	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("could not marshal report summary: %w", err)
	}

	*r = PgReport{
		ID:              uuid.UUID(report.ID),
		EmailFilter:     report.EmailFilter,
		Summary:         summary,
		UsersWithIssues: report.UsersWithIssues,
		TotalDifference: report.TotalDifference,
		CreatedAt:       report.CreatedAt,
	}

	return nil
}

func pgReportsToDomain(reports []PgReport) ([]domain.Report, error) {
	out := make([]domain.Report, 0, len(reports))
	for i := range reports {
		d, err := reports[i].ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}

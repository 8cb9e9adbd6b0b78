package lookup

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Repository reads lookup rows from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) PaymentMethod(ctx context.Context, id int64) (PaymentMethod, error) {
	var m PaymentMethod
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name FROM payment_methods WHERE id = $1`, id,
	).Scan(&m.ID, &m.Code, &m.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PaymentMethod{}, ErrPaymentMethodNotFound
		}
		return PaymentMethod{}, shared.WrapPersistence(err)
	}
	return m, nil
}

func (r *Repository) PaymentStatus(ctx context.Context, id int64) (PaymentStatus, error) {
	var s PaymentStatus
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name FROM payment_statuses WHERE id = $1`, id,
	).Scan(&s.ID, &s.Code, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PaymentStatus{}, ErrPaymentStatusNotFound
		}
		return PaymentStatus{}, shared.WrapPersistence(err)
	}
	return s, nil
}

func (r *Repository) SaleStatus(ctx context.Context, id int64) (SaleStatus, error) {
	var s SaleStatus
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name FROM sale_statuses WHERE id = $1`, id,
	).Scan(&s.ID, &s.Code, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SaleStatus{}, ErrSaleStatusNotFound
		}
		return SaleStatus{}, shared.WrapPersistence(err)
	}
	return s, nil
}

package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Repository reads product snapshots from PostgreSQL. It is strictly
// read-only; catalog CRUD lives in the surrounding application.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Snapshot returns the current price, tax rate and cost for a product.
func (r *Repository) Snapshot(ctx context.Context, productID int64) (Snapshot, error) {
	const query = `
		SELECT id, name, price, tax_rate, cost, is_active
		FROM products
		WHERE id = $1`

	var (
		snap                 Snapshot
		price, taxRate, cost pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx, query, productID).Scan(
		&snap.ProductID, &snap.Name, &price, &taxRate, &cost, &snap.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrProductNotFound
		}
		return Snapshot{}, shared.WrapPersistence(err)
	}
	snap.Price = numericToFloat(price)
	snap.TaxRate = numericToFloat(taxRate)
	snap.Cost = numericToFloat(cost)
	return snap, nil
}

func numericToFloat(n pgtype.Numeric) float64 {
	f, _ := n.Float64Value()
	return f.Float64
}

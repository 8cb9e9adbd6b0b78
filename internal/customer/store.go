package customer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// TxStore is the slice of a unit of work that mutates customer
// aggregates. The orchestrator binds it to the same transaction as the
// sale and stock writes.
type TxStore interface {
	GetForUpdate(ctx context.Context, customerID int64) (Aggregate, error)
	Update(ctx context.Context, agg Aggregate) error
}

// ApplyPurchase credits a completed sale to the customer: totalPurchases
// grows by the sale total and loyalty points by one per ten spent.
func ApplyPurchase(ctx context.Context, store TxStore, customerID int64, amount float64) error {
	agg, err := store.GetForUpdate(ctx, customerID)
	if err != nil {
		return err
	}
	agg.TotalPurchases += amount
	agg.LoyaltyPoints += PointsForAmount(amount)
	return store.Update(ctx, agg)
}

// ReversePurchase undoes ApplyPurchase when a sale leaves completed.
// Both fields clamp at zero; a reversal never drives an aggregate
// negative.
func ReversePurchase(ctx context.Context, store TxStore, customerID int64, amount float64) error {
	agg, err := store.GetForUpdate(ctx, customerID)
	if err != nil {
		return err
	}
	agg.TotalPurchases -= amount
	if agg.TotalPurchases < 0 {
		agg.TotalPurchases = 0
	}
	agg.LoyaltyPoints -= PointsForAmount(amount)
	if agg.LoyaltyPoints < 0 {
		agg.LoyaltyPoints = 0
	}
	return store.Update(ctx, agg)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type txStore struct {
	q dbtx
}

// NewTxStore binds a TxStore to an open transaction.
func NewTxStore(q dbtx) TxStore {
	return &txStore{q: q}
}

func (s *txStore) GetForUpdate(ctx context.Context, customerID int64) (Aggregate, error) {
	const query = `
		SELECT id, loyalty_points, total_purchases
		FROM customers
		WHERE id = $1
		FOR UPDATE`

	var (
		agg   Aggregate
		total pgtype.Numeric
	)
	err := s.q.QueryRow(ctx, query, customerID).Scan(&agg.CustomerID, &agg.LoyaltyPoints, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Aggregate{}, ErrCustomerNotFound
		}
		return Aggregate{}, shared.WrapPersistence(err)
	}
	f, _ := total.Float64Value()
	agg.TotalPurchases = f.Float64
	return agg, nil
}

func (s *txStore) Update(ctx context.Context, agg Aggregate) error {
	const query = `
		UPDATE customers
		SET loyalty_points = $1, total_purchases = $2, updated_at = NOW()
		WHERE id = $3`

	_, err := s.q.Exec(ctx, query, agg.LoyaltyPoints, agg.TotalPurchases, agg.CustomerID)
	return shared.WrapPersistence(err)
}

package customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	aggregates map[int64]Aggregate
}

func (m *memoryStore) GetForUpdate(ctx context.Context, customerID int64) (Aggregate, error) {
	agg, ok := m.aggregates[customerID]
	if !ok {
		return Aggregate{}, ErrCustomerNotFound
	}
	return agg, nil
}

func (m *memoryStore) Update(ctx context.Context, agg Aggregate) error {
	m.aggregates[agg.CustomerID] = agg
	return nil
}

func TestPointsForAmount(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{-5, 0},
		{9.99, 0},
		{10, 1},
		{105, 10},
		{110, 11},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, PointsForAmount(tc.amount), "amount %v", tc.amount)
	}
}

func TestApplyPurchase(t *testing.T) {
	store := &memoryStore{aggregates: map[int64]Aggregate{
		7: {CustomerID: 7, LoyaltyPoints: 2, TotalPurchases: 50},
	}}

	require.NoError(t, ApplyPurchase(context.Background(), store, 7, 125))

	agg := store.aggregates[7]
	require.InDelta(t, 175, agg.TotalPurchases, 0.0001)
	require.EqualValues(t, 14, agg.LoyaltyPoints)
}

func TestReversePurchase(t *testing.T) {
	store := &memoryStore{aggregates: map[int64]Aggregate{
		7: {CustomerID: 7, LoyaltyPoints: 14, TotalPurchases: 175},
	}}

	require.NoError(t, ReversePurchase(context.Background(), store, 7, 125))

	agg := store.aggregates[7]
	require.InDelta(t, 50, agg.TotalPurchases, 0.0001)
	require.EqualValues(t, 2, agg.LoyaltyPoints)
}

func TestReversePurchaseClampsAtZero(t *testing.T) {
	store := &memoryStore{aggregates: map[int64]Aggregate{
		7: {CustomerID: 7, LoyaltyPoints: 1, TotalPurchases: 20},
	}}

	require.NoError(t, ReversePurchase(context.Background(), store, 7, 500))

	agg := store.aggregates[7]
	require.InDelta(t, 0, agg.TotalPurchases, 0.0001)
	require.EqualValues(t, 0, agg.LoyaltyPoints)
}

func TestApplyPurchaseUnknownCustomer(t *testing.T) {
	store := &memoryStore{aggregates: map[int64]Aggregate{}}
	err := ApplyPurchase(context.Background(), store, 99, 10)
	require.ErrorIs(t, err, ErrCustomerNotFound)
}

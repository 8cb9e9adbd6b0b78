package lookup

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	methodCalls int
	statusCalls int
	saleCalls   int
}

func (r *countingRepo) PaymentMethod(ctx context.Context, id int64) (PaymentMethod, error) {
	r.methodCalls++
	if id != 1 {
		return PaymentMethod{}, ErrPaymentMethodNotFound
	}
	return PaymentMethod{ID: 1, Code: "cash", Name: "Cash"}, nil
}

func (r *countingRepo) PaymentStatus(ctx context.Context, id int64) (PaymentStatus, error) {
	r.statusCalls++
	if id != 1 {
		return PaymentStatus{}, ErrPaymentStatusNotFound
	}
	return PaymentStatus{ID: 1, Code: "paid", Name: "Paid"}, nil
}

func (r *countingRepo) SaleStatus(ctx context.Context, id int64) (SaleStatus, error) {
	r.saleCalls++
	if id != 2 {
		return SaleStatus{}, ErrSaleStatusNotFound
	}
	return SaleStatus{ID: 2, Code: "completed", Name: "Completed"}, nil
}

func newTestService(t *testing.T, repo RepositoryPort) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, client, time.Minute), mr
}

func TestPaymentMethodCachesSecondRead(t *testing.T) {
	repo := &countingRepo{}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.PaymentMethod(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "cash", first.Code)

	second, err := svc.PaymentMethod(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.methodCalls)
}

func TestSaleStatusCacheExpiry(t *testing.T) {
	repo := &countingRepo{}
	svc, mr := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.SaleStatus(ctx, 2)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = svc.SaleStatus(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 2, repo.saleCalls)
}

func TestLookupMissNotCached(t *testing.T) {
	repo := &countingRepo{}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.PaymentStatus(ctx, 99)
	require.ErrorIs(t, err, ErrPaymentStatusNotFound)

	_, err = svc.PaymentStatus(ctx, 99)
	require.ErrorIs(t, err, ErrPaymentStatusNotFound)
	require.Equal(t, 2, repo.statusCalls)
}

func TestCorruptCacheEntryFallsBackToLoader(t *testing.T) {
	repo := &countingRepo{}
	svc, mr := newTestService(t, repo)
	ctx := context.Background()

	require.NoError(t, mr.Set("lookup:payment_method:1", "{not json"))

	got, err := svc.PaymentMethod(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "cash", got.Code)
	require.Equal(t, 1, repo.methodCalls)
}

func TestNilRedisDegradesToUncachedReads(t *testing.T) {
	repo := &countingRepo{}
	svc := NewService(repo, nil, time.Minute)
	ctx := context.Background()

	_, err := svc.PaymentMethod(ctx, 1)
	require.NoError(t, err)
	_, err = svc.PaymentMethod(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, repo.methodCalls)
}

package stock

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	records map[string]Record
	audits  []AuditEntry
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]Record)}
}

func recordKey(productID int64, location string) string {
	return fmt.Sprintf("%d:%s", productID, location)
}

func (r *memoryRepo) seed(rec Record) {
	r.records[recordKey(rec.ProductID, rec.Location)] = rec
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) GetForUpdate(ctx context.Context, productID int64, location string) (Record, error) {
	if rec, ok := r.records[recordKey(productID, location)]; ok {
		return rec, nil
	}
	rec := Record{ProductID: productID, Location: location}
	r.records[recordKey(productID, location)] = rec
	return rec, nil
}

func (r *memoryRepo) UpdateQuantity(ctx context.Context, record Record) error {
	r.records[recordKey(record.ProductID, record.Location)] = record
	return nil
}

func (r *memoryRepo) InsertAudit(ctx context.Context, entry AuditEntry) error {
	r.audits = append(r.audits, entry)
	return nil
}

func (r *memoryRepo) LowStock(ctx context.Context) ([]Record, error) {
	var out []Record
	for _, rec := range r.records {
		if rec.Quantity <= rec.MinQuantity {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

func (r *memoryRepo) ListAudit(ctx context.Context, productID int64, page, limit int) ([]AuditEntry, int, error) {
	var out []AuditEntry
	for i := len(r.audits) - 1; i >= 0; i-- {
		if r.audits[i].ProductID == productID {
			out = append(out, r.audits[i])
		}
	}
	return out, len(out), nil
}

func TestAdjustAdd(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(Record{ProductID: 1, Location: DefaultLocation, Quantity: 5})
	svc := NewService(repo, nil)

	rec, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID: 1,
		Operation: OperationAdd,
		Amount:    3,
		Reason:    "delivery",
		ActorID:   9,
	})
	require.NoError(t, err)
	require.EqualValues(t, 8, rec.Quantity)
	require.Equal(t, DefaultLocation, rec.Location)

	require.Len(t, repo.audits, 1)
	entry := repo.audits[0]
	require.EqualValues(t, 5, entry.PreviousQuantity)
	require.EqualValues(t, 8, entry.NewQuantity)
	require.Equal(t, "delivery", entry.Reason)
	require.EqualValues(t, 9, entry.ActorID)
}

func TestAdjustSubtractClampsAtZero(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(Record{ProductID: 1, Location: DefaultLocation, Quantity: 2})
	svc := NewService(repo, nil)

	rec, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID: 1,
		Operation: OperationSubtract,
		Amount:    5,
		Reason:    "shrinkage",
	})
	require.NoError(t, err)
	require.EqualValues(t, 0, rec.Quantity)

	// The audit entry records what actually happened, not the request.
	require.Len(t, repo.audits, 1)
	require.EqualValues(t, 2, repo.audits[0].PreviousQuantity)
	require.EqualValues(t, 0, repo.audits[0].NewQuantity)
}

func TestAdjustSet(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(Record{ProductID: 1, Location: DefaultLocation, Quantity: 7})
	svc := NewService(repo, nil)

	rec, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID: 1,
		Operation: OperationSet,
		Amount:    12,
		Reason:    "stocktake",
	})
	require.NoError(t, err)
	require.EqualValues(t, 12, rec.Quantity)
}

func TestAdjustCreatesRecordOnFirstUse(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	rec, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID: 5,
		Location:  "backroom",
		Operation: OperationAdd,
		Amount:    4,
		Reason:    "initial",
	})
	require.NoError(t, err)
	require.EqualValues(t, 4, rec.Quantity)
	require.Equal(t, "backroom", rec.Location)
}

func TestAdjustRejectsNegativeAmount(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID: 1,
		Operation: OperationAdd,
		Amount:    -1,
	})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAdjustRejectsUnknownOperation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID: 1,
		Operation: Operation("merge"),
		Amount:    1,
	})
	require.ErrorIs(t, err, ErrUnknownOperation)
}

func TestDeductRejectsInsufficientStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(Record{ProductID: 1, Location: DefaultLocation, Quantity: 2})

	_, err := Deduct(context.Background(), repo, 1, DefaultLocation, 3, "sale", 1, "ref")
	require.ErrorIs(t, err, ErrInsufficientStock)

	// Nothing was written.
	require.EqualValues(t, 2, repo.records[recordKey(1, DefaultLocation)].Quantity)
	require.Empty(t, repo.audits)
}

func TestDeductExactQuantity(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(Record{ProductID: 1, Location: DefaultLocation, Quantity: 3})

	rec, err := Deduct(context.Background(), repo, 1, DefaultLocation, 3, "sale", 1, "ref")
	require.NoError(t, err)
	require.EqualValues(t, 0, rec.Quantity)
	require.Len(t, repo.audits, 1)
	require.Equal(t, OperationSubtract, repo.audits[0].Operation)
	require.Equal(t, "ref", repo.audits[0].RefID)
}

func TestRestock(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(Record{ProductID: 1, Location: DefaultLocation, Quantity: 1})

	rec, err := Restock(context.Background(), repo, 1, DefaultLocation, 4, "sale reversal", 1, "ref")
	require.NoError(t, err)
	require.EqualValues(t, 5, rec.Quantity)
	require.Len(t, repo.audits, 1)
	require.Equal(t, OperationAdd, repo.audits[0].Operation)
}

func TestLowStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(Record{ProductID: 1, Location: DefaultLocation, Quantity: 2, MinQuantity: 5})
	repo.seed(Record{ProductID: 2, Location: DefaultLocation, Quantity: 9, MinQuantity: 5})
	repo.seed(Record{ProductID: 3, Location: DefaultLocation, Quantity: 0, MinQuantity: 1})
	svc := NewService(repo, nil)

	low, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 2)
	require.EqualValues(t, 3, low[0].ProductID)
	require.EqualValues(t, 1, low[1].ProductID)
}

func TestListAuditRequiresProduct(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, _, err := svc.ListAudit(context.Background(), 0, 1, 20)
	require.Error(t, err)
}

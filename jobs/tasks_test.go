package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/stock"
)

type fakeLister struct {
	records []stock.Record
	err     error
}

func (f *fakeLister) LowStock(ctx context.Context) ([]stock.Record, error) {
	return f.records, f.err
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestLowStockScanEnqueuesOneAlertPerRecord(t *testing.T) {
	lister := &fakeLister{records: []stock.Record{
		{ProductID: 1, Location: stock.DefaultLocation, Quantity: 0, MinQuantity: 5},
		{ProductID: 2, Location: "backroom", Quantity: 3, MinQuantity: 10},
	}}
	enqueuer := &fakeEnqueuer{}

	handler := NewLowStockScanHandler(lister, enqueuer, nil)
	require.NoError(t, handler(context.Background(), NewLowStockScanTask()))
	require.Len(t, enqueuer.tasks, 2)

	var payload LowStockAlertPayload
	require.NoError(t, json.Unmarshal(enqueuer.tasks[1].Payload(), &payload))
	require.EqualValues(t, 2, payload.ProductID)
	require.Equal(t, "backroom", payload.Location)
}

func TestLowStockScanPropagatesListError(t *testing.T) {
	lister := &fakeLister{err: errors.New("db down")}
	handler := NewLowStockScanHandler(lister, &fakeEnqueuer{}, nil)
	require.Error(t, handler(context.Background(), NewLowStockScanTask()))
}

func TestLowStockAlertSkipsRetryOnBadPayload(t *testing.T) {
	handler := NewLowStockAlertHandler(nil)
	task := asynq.NewTask(TaskTypeLowStockAlert, []byte("{bad"))
	err := handler(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestLowStockAlertHandlesPayload(t *testing.T) {
	task, err := NewLowStockAlertTask(LowStockAlertPayload{ProductID: 9, Quantity: 1, MinQuantity: 4})
	require.NoError(t, err)

	handler := NewLowStockAlertHandler(nil)
	require.NoError(t, handler(context.Background(), task))
}

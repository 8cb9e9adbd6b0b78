// Package jobs runs the background side of the system: a periodic
// low-stock scan and the alert fan-out it produces. The scan only
// consumes the ledger's pure read surface; every write stays inside a
// request-synchronous unit of work.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-pos/meridian-pos/internal/stock"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeLowStockScan triggers a scan of the low-stock query.
	TaskTypeLowStockScan = "stock:low_scan"
	// TaskTypeLowStockAlert notifies about one product under threshold.
	TaskTypeLowStockAlert = "stock:low_alert"
)

// LowStockAlertPayload describes one product under its threshold.
type LowStockAlertPayload struct {
	ProductID   int64  `json:"product_id"`
	Location    string `json:"location"`
	Quantity    int64  `json:"quantity"`
	MinQuantity int64  `json:"min_quantity"`
}

// NewLowStockScanTask constructs the periodic scan task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLowStockScan, nil)
}

// NewLowStockAlertTask constructs an alert task.
func NewLowStockAlertTask(payload LowStockAlertPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLowStockAlert, data), nil
}

// StockLister is the read surface the scan consumes.
type StockLister interface {
	LowStock(ctx context.Context) ([]stock.Record, error)
}

// Enqueuer submits follow-up tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewLowStockScanHandler builds the handler for TaskTypeLowStockScan:
// list records under threshold and enqueue one alert per record.
func NewLowStockScanHandler(lister StockLister, enqueuer Enqueuer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		records, err := lister.LowStock(ctx)
		if err != nil {
			return err
		}
		for _, rec := range records {
			task, err := NewLowStockAlertTask(LowStockAlertPayload{
				ProductID:   rec.ProductID,
				Location:    rec.Location,
				Quantity:    rec.Quantity,
				MinQuantity: rec.MinQuantity,
			})
			if err != nil {
				return err
			}
			if _, err := enqueuer.EnqueueContext(ctx, task, asynq.Queue(QueueDefault)); err != nil {
				return err
			}
		}
		if logger != nil {
			logger.Info("low stock scan", slog.Int("alerts", len(records)))
		}
		return nil
	}
}

// NewLowStockAlertHandler builds the handler for TaskTypeLowStockAlert.
// Delivery is a log line for now; SMTP fan-out hangs off the same hook.
func NewLowStockAlertHandler(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LowStockAlertPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if logger != nil {
			logger.Warn("low stock",
				slog.Int64("product_id", payload.ProductID),
				slog.String("location", payload.Location),
				slog.Int64("quantity", payload.Quantity),
				slog.Int64("min_quantity", payload.MinQuantity),
			)
		}
		return nil
	}
}

package stock

import (
	"context"
	"time"
)

// TxStore is the slice of a unit of work the ledger mutates through. The
// orchestrator binds one to its own transaction so sale, stock and audit
// writes commit or roll back together.
type TxStore interface {
	// GetForUpdate loads the record for (product, location) with the row
	// locked until the unit of work ends, creating the zero record on
	// first use. Concurrent mutations of the same key serialize here.
	GetForUpdate(ctx context.Context, productID int64, location string) (Record, error)
	UpdateQuantity(ctx context.Context, record Record) error
	InsertAudit(ctx context.Context, entry AuditEntry) error
}

// Adjust applies a manual correction: add, subtract (clamped at zero) or
// set. Exactly one audit entry is written before it returns.
func Adjust(ctx context.Context, store TxStore, in AdjustInput) (Record, error) {
	if in.Amount < 0 {
		return Record{}, ErrInvalidAmount
	}
	record, err := store.GetForUpdate(ctx, in.ProductID, in.Location)
	if err != nil {
		return Record{}, err
	}

	previous := record.Quantity
	switch in.Operation {
	case OperationAdd:
		record.Quantity = previous + in.Amount
	case OperationSubtract:
		record.Quantity = previous - in.Amount
		if record.Quantity < 0 {
			record.Quantity = 0
		}
	case OperationSet:
		record.Quantity = in.Amount
	default:
		return Record{}, ErrUnknownOperation
	}

	return commit(ctx, store, record, AuditEntry{
		ProductID:        in.ProductID,
		Location:         in.Location,
		Operation:        in.Operation,
		Amount:           in.Amount,
		PreviousQuantity: previous,
		NewQuantity:      record.Quantity,
		Reason:           in.Reason,
		ActorID:          in.ActorID,
	})
}

// Deduct removes quantity on behalf of a sale. Unlike a manual subtract
// it rejects with ErrInsufficientStock when the ledger holds less than
// requested; clamping here would silently hide overselling.
func Deduct(ctx context.Context, store TxStore, productID int64, location string, amount int64, reason string, actorID int64, refID string) (Record, error) {
	if amount <= 0 {
		return Record{}, ErrInvalidAmount
	}
	record, err := store.GetForUpdate(ctx, productID, location)
	if err != nil {
		return Record{}, err
	}
	if record.Quantity < amount {
		return Record{}, ErrInsufficientStock
	}

	previous := record.Quantity
	record.Quantity = previous - amount
	return commit(ctx, store, record, AuditEntry{
		ProductID:        productID,
		Location:         location,
		Operation:        OperationSubtract,
		Amount:           amount,
		PreviousQuantity: previous,
		NewQuantity:      record.Quantity,
		Reason:           reason,
		ActorID:          actorID,
		RefID:            refID,
	})
}

// Restock returns quantity to the ledger when a completed sale is
// reversed.
func Restock(ctx context.Context, store TxStore, productID int64, location string, amount int64, reason string, actorID int64, refID string) (Record, error) {
	if amount <= 0 {
		return Record{}, ErrInvalidAmount
	}
	record, err := store.GetForUpdate(ctx, productID, location)
	if err != nil {
		return Record{}, err
	}

	previous := record.Quantity
	record.Quantity = previous + amount
	return commit(ctx, store, record, AuditEntry{
		ProductID:        productID,
		Location:         location,
		Operation:        OperationAdd,
		Amount:           amount,
		PreviousQuantity: previous,
		NewQuantity:      record.Quantity,
		Reason:           reason,
		ActorID:          actorID,
		RefID:            refID,
	})
}

func commit(ctx context.Context, store TxStore, record Record, entry AuditEntry) (Record, error) {
	record.LastUpdated = time.Now().UTC()
	if err := store.UpdateQuantity(ctx, record); err != nil {
		return Record{}, err
	}
	if err := store.InsertAudit(ctx, entry); err != nil {
		return Record{}, err
	}
	return record, nil
}

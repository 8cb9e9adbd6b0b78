package stock

import (
	"fmt"
	"time"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Operation enumerates supported ledger mutations.
type Operation string

const (
	// OperationAdd increases quantity by the requested amount.
	OperationAdd Operation = "add"
	// OperationSubtract decreases quantity. Manual corrections clamp at
	// zero; sale-driven decrements reject instead (see Deduct).
	OperationSubtract Operation = "subtract"
	// OperationSet overwrites quantity with the requested amount.
	OperationSet Operation = "set"
)

// DefaultLocation is used when a request does not name a stock location.
const DefaultLocation = "main"

// Record is the authoritative quantity for one (product, location) pair.
// Min and max quantities are soft thresholds for replenishment alerts,
// never enforced bounds.
type Record struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	Location    string    `json:"location"`
	Quantity    int64     `json:"quantity"`
	MinQuantity int64     `json:"min_quantity"`
	MaxQuantity int64     `json:"max_quantity"`
	LastUpdated time.Time `json:"last_updated"`
}

// AuditEntry is the immutable record of one quantity change. Entries are
// only ever written by the ledger itself, so every change has exactly one.
type AuditEntry struct {
	ID               int64     `json:"id"`
	ProductID        int64     `json:"product_id"`
	Location         string    `json:"location"`
	Operation        Operation `json:"operation"`
	Amount           int64     `json:"amount"`
	PreviousQuantity int64     `json:"previous_quantity"`
	NewQuantity      int64     `json:"new_quantity"`
	Reason           string    `json:"reason"`
	ActorID          int64     `json:"actor_id"`
	RefID            string    `json:"ref_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// AdjustInput describes a manual stock correction.
type AdjustInput struct {
	ProductID int64
	Location  string
	Operation Operation
	Amount    int64
	Reason    string
	ActorID   int64
}

var (
	// ErrInsufficientStock rejects a sale-driven decrement that would take
	// quantity negative. The quantity is left untouched.
	ErrInsufficientStock = fmt.Errorf("stock: insufficient quantity: %w", shared.ErrConflict)
	// ErrInvalidAmount indicates a negative or otherwise unusable amount.
	ErrInvalidAmount = fmt.Errorf("stock: invalid amount: %w", shared.ErrValidation)
	// ErrUnknownOperation indicates an operation outside add/subtract/set.
	ErrUnknownOperation = fmt.Errorf("stock: unknown operation: %w", shared.ErrValidation)
)

package sale

import (
	"fmt"
	"time"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Status is the closed sale lifecycle enum. The lifecycle is
// pending -> completed -> {cancelled, refunded}; completed is the only
// state carrying stock and customer-aggregate effects. A status equal to
// itself is always a legal no-op so retried transitions stay idempotent.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// transitions is the explicit edge table. Self-transitions are handled
// in CanTransition and deliberately absent here.
var transitions = map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusCancelled, StatusRefunded},
	StatusCancelled: {},
	StatusRefunded:  {},
}

// ParseStatus converts a lookup code into the closed enum.
func ParseStatus(code string) (Status, error) {
	switch s := Status(code); s {
	case StatusPending, StatusCompleted, StatusCancelled, StatusRefunded:
		return s, nil
	default:
		return "", fmt.Errorf("sale: unknown status %q: %w", code, shared.ErrValidation)
	}
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Sale is the transaction header. Amounts are captured at creation and
// satisfy totalAmount = subtotal + taxAmount - discountAmount, clamped
// at zero.
type Sale struct {
	ID              int64     `json:"id"`
	ReceiptNo       string    `json:"receipt_no"`
	CustomerID      *int64    `json:"customer_id,omitempty"`
	CreatedBy       int64     `json:"created_by"`
	Subtotal        float64   `json:"subtotal"`
	TaxAmount       float64   `json:"tax_amount"`
	DiscountAmount  float64   `json:"discount_amount"`
	TotalAmount     float64   `json:"total_amount"`
	PaymentMethodID int64     `json:"payment_method_id"`
	PaymentStatusID int64     `json:"payment_status_id"`
	Status          Status    `json:"status"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Items           []Item    `json:"items,omitempty"`
}

// Item is one line of a sale. Prices are an immutable snapshot taken at
// creation; later catalog changes never touch them.
type Item struct {
	ID         int64   `json:"id"`
	SaleID     int64   `json:"sale_id"`
	ProductID  int64   `json:"product_id"`
	Quantity   int64   `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Discount   float64 `json:"discount"`
	TaxAmount  float64 `json:"tax_amount"`
	TotalPrice float64 `json:"total_price"`
}

var (
	// ErrSaleNotFound indicates the referenced sale is absent.
	ErrSaleNotFound = fmt.Errorf("sale: not found: %w", shared.ErrNotFound)
	// ErrNoItems rejects a creation request with an empty cart.
	ErrNoItems = fmt.Errorf("sale: at least one item required: %w", shared.ErrValidation)
	// ErrInvalidQuantity rejects a non-positive line quantity.
	ErrInvalidQuantity = fmt.Errorf("sale: quantity must be positive: %w", shared.ErrValidation)
	// ErrInvalidTransition rejects an edge outside the lifecycle table.
	ErrInvalidTransition = fmt.Errorf("sale: transition not allowed: %w", shared.ErrConflict)
)

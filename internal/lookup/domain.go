// Package lookup serves the small enumerated reference tables a sale
// points at: payment methods, payment statuses and sale statuses. The
// tables are static reference data, so reads go through a Redis
// read-through cache; stock and sale state are never cached.
package lookup

import (
	"fmt"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// PaymentMethod is one row of the payment_methods table.
type PaymentMethod struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// PaymentStatus is one row of the payment_statuses table.
type PaymentStatus struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// SaleStatus is one row of the sale_statuses table. Code is one of
// pending, completed, cancelled, refunded; the sale package owns the
// closed enum and the transition table.
type SaleStatus struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

var (
	// ErrPaymentMethodNotFound indicates an unknown payment method id.
	ErrPaymentMethodNotFound = fmt.Errorf("lookup: payment method not found: %w", shared.ErrValidation)
	// ErrPaymentStatusNotFound indicates an unknown payment status id.
	ErrPaymentStatusNotFound = fmt.Errorf("lookup: payment status not found: %w", shared.ErrValidation)
	// ErrSaleStatusNotFound indicates an unknown sale status id.
	ErrSaleStatusNotFound = fmt.Errorf("lookup: sale status not found: %w", shared.ErrValidation)
)

package customer

import (
	"fmt"
	"math"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Aggregate holds the derived purchase totals for one customer. These
// fields are mutated only by the sale orchestrator, in lockstep with
// sale lifecycle events, never by customer CRUD.
type Aggregate struct {
	CustomerID     int64   `json:"customer_id"`
	LoyaltyPoints  int64   `json:"loyalty_points"`
	TotalPurchases float64 `json:"total_purchases"`
}

// PointsForAmount converts a sale total into loyalty points: one point
// per ten currency units, floored.
func PointsForAmount(amount float64) int64 {
	if amount <= 0 {
		return 0
	}
	return int64(math.Floor(amount / 10))
}

// ErrCustomerNotFound indicates the referenced customer is absent.
var ErrCustomerNotFound = fmt.Errorf("customer: not found: %w", shared.ErrNotFound)

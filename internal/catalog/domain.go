package catalog

import (
	"fmt"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Snapshot captures the catalog state of a product at order time.
// Cost is carried for reporting only; the engine never uses it.
type Snapshot struct {
	ProductID int64
	Name      string
	Price     float64
	TaxRate   float64
	Cost      float64
	Active    bool
}

// ErrProductNotFound indicates the referenced product does not exist.
var ErrProductNotFound = fmt.Errorf("catalog: product not found: %w", shared.ErrNotFound)

// ErrProductInactive indicates the product exists but cannot be sold.
var ErrProductInactive = fmt.Errorf("catalog: product inactive: %w", shared.ErrValidation)

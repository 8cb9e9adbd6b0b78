package sale

// CreateSaleRequest is the validated payload for creating a sale.
type CreateSaleRequest struct {
	CustomerID      *int64                  `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Items           []CreateSaleItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethodID int64                   `json:"payment_method_id" validate:"required,gt=0"`
	PaymentStatusID int64                   `json:"payment_status_id" validate:"required,gt=0"`
	SaleStatusID    int64                   `json:"sale_status_id" validate:"required,gt=0"`
	DiscountAmount  float64                 `json:"discount_amount" validate:"gte=0"`
	Notes           *string                 `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// CreateSaleItemRequest is one cart line.
type CreateSaleItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int64   `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	Discount  float64 `json:"discount" validate:"gte=0"`
}

// TransitionStatusRequest is the validated payload for a status change.
type TransitionStatusRequest struct {
	SaleStatusID    int64  `json:"sale_status_id" validate:"required,gt=0"`
	PaymentStatusID *int64 `json:"payment_status_id,omitempty" validate:"omitempty,gt=0"`
}

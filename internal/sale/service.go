package sale

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-pos/meridian-pos/internal/catalog"
	"github.com/meridian-pos/meridian-pos/internal/customer"
	"github.com/meridian-pos/meridian-pos/internal/lookup"
	"github.com/meridian-pos/meridian-pos/internal/shared"
	"github.com/meridian-pos/meridian-pos/internal/stock"
)

// Tx is one unit of work as seen by the orchestrator. Sale writes, stock
// movements, audit entries and customer-aggregate updates issued through
// the same Tx commit or roll back together.
type Tx interface {
	InsertSale(ctx context.Context, s Sale) (int64, error)
	InsertItems(ctx context.Context, saleID int64, items []Item) error
	// GetForUpdate loads the header with the row locked so concurrent
	// transitions on the same sale serialize.
	GetForUpdate(ctx context.Context, id int64) (*Sale, error)
	GetItems(ctx context.Context, saleID int64) ([]Item, error)
	UpdateStatus(ctx context.Context, id int64, status Status, paymentStatusID *int64) error
	Stock() stock.TxStore
	Customers() customer.TxStore
}

// RepositoryPort abstracts sale persistence for the orchestrator.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, Tx) error) error
	Get(ctx context.Context, id int64) (*Sale, error)
}

// CatalogPort reads product snapshots at order time.
type CatalogPort interface {
	Snapshot(ctx context.Context, productID int64) (catalog.Snapshot, error)
}

// LookupPort resolves the enumerated references a request carries.
type LookupPort interface {
	PaymentMethod(ctx context.Context, id int64) (lookup.PaymentMethod, error)
	PaymentStatus(ctx context.Context, id int64) (lookup.PaymentStatus, error)
	SaleStatus(ctx context.Context, id int64) (lookup.SaleStatus, error)
}

// Service is the sale transaction orchestrator. It composes the sale
// ledger, stock ledger, inventory audit log and customer aggregate into
// atomic create and transition operations.
type Service struct {
	repo    RepositoryPort
	catalog CatalogPort
	lookups LookupPort
	logger  *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, cat CatalogPort, lookups LookupPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalog: cat, lookups: lookups, logger: logger}
}

// Create turns a cart into a durable sale. All validation and catalog
// reads happen before the unit of work opens; once it opens, the sale
// header, items, stock decrements, audit entries and customer-aggregate
// update commit together or not at all. Stock and customer effects apply
// only when the sale is created in the completed status; a pending sale
// applies them when it later transitions (see Transition).
func (s *Service) Create(ctx context.Context, req CreateSaleRequest, actorID int64) (*Sale, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}
	if req.DiscountAmount < 0 {
		return nil, fmt.Errorf("sale: discount must not be negative: %w", shared.ErrValidation)
	}

	if _, err := s.lookups.PaymentMethod(ctx, req.PaymentMethodID); err != nil {
		return nil, err
	}
	if _, err := s.lookups.PaymentStatus(ctx, req.PaymentStatusID); err != nil {
		return nil, err
	}
	statusRef, err := s.lookups.SaleStatus(ctx, req.SaleStatusID)
	if err != nil {
		return nil, err
	}
	status, err := ParseStatus(statusRef.Code)
	if err != nil {
		return nil, err
	}

	var (
		items     []Item
		subtotal  float64
		taxAmount float64
	)
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		snap, err := s.catalog.Snapshot(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !snap.Active {
			return nil, catalog.ErrProductInactive
		}

		unitPrice := line.UnitPrice
		if unitPrice == 0 {
			unitPrice = snap.Price
		}
		itemTotal := unitPrice * float64(line.Quantity)
		if line.Discount > itemTotal {
			return nil, fmt.Errorf("sale: line discount exceeds line total: %w", shared.ErrValidation)
		}
		itemTax := itemTotal * snap.TaxRate / 100

		items = append(items, Item{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  unitPrice,
			Discount:   line.Discount,
			TaxAmount:  itemTax,
			TotalPrice: itemTotal - line.Discount,
		})
		subtotal += itemTotal
		taxAmount += itemTax
	}

	total := subtotal + taxAmount - req.DiscountAmount
	if total < 0 {
		total = 0
	}

	ref := uuid.New()
	header := Sale{
		ReceiptNo:       fmt.Sprintf("POS-%s-%s", time.Now().UTC().Format("060102"), ref.String()[:8]),
		CustomerID:      req.CustomerID,
		CreatedBy:       actorID,
		Subtotal:        subtotal,
		TaxAmount:       taxAmount,
		DiscountAmount:  req.DiscountAmount,
		TotalAmount:     total,
		PaymentMethodID: req.PaymentMethodID,
		PaymentStatusID: req.PaymentStatusID,
		Status:          status,
		Notes:           req.Notes,
	}

	var saleID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		id, err := tx.InsertSale(ctx, header)
		if err != nil {
			return err
		}
		saleID = id
		if err := tx.InsertItems(ctx, id, items); err != nil {
			return err
		}
		if status == StatusCompleted {
			header.ID = id
			header.Items = items
			return s.applyEffects(ctx, tx, &header, "sale", actorID, ref.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("sale created",
			slog.Int64("sale_id", saleID),
			slog.String("status", string(status)),
			slog.Float64("total", total),
			slog.Int64("actor_id", actorID),
		)
	}
	return s.repo.Get(ctx, saleID)
}

// Transition moves a sale to a new status. The current status is read
// with the row locked inside the same unit of work that writes the new
// one, so two concurrent transitions on one sale serialize and effects
// apply exactly once: entering completed applies stock and customer
// effects, leaving completed reverses them, every other edge is
// effect-free.
func (s *Service) Transition(ctx context.Context, saleID int64, req TransitionStatusRequest, actorID int64) (*Sale, error) {
	statusRef, err := s.lookups.SaleStatus(ctx, req.SaleStatusID)
	if err != nil {
		return nil, err
	}
	next, err := ParseStatus(statusRef.Code)
	if err != nil {
		return nil, err
	}
	if req.PaymentStatusID != nil {
		if _, err := s.lookups.PaymentStatus(ctx, *req.PaymentStatusID); err != nil {
			return nil, err
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		current, err := tx.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if !CanTransition(current.Status, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
		}

		entering := next == StatusCompleted && current.Status != StatusCompleted
		leaving := current.Status == StatusCompleted && next != StatusCompleted
		if entering || leaving {
			current.Items, err = tx.GetItems(ctx, saleID)
			if err != nil {
				return err
			}
		}

		ref := uuid.New().String()
		switch {
		case entering:
			if err := s.applyEffects(ctx, tx, current, "sale completion", actorID, ref); err != nil {
				return err
			}
		case leaving:
			if err := s.reverseEffects(ctx, tx, current, "sale reversal", actorID, ref); err != nil {
				return err
			}
		}

		return tx.UpdateStatus(ctx, saleID, next, req.PaymentStatusID)
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("sale status changed",
			slog.Int64("sale_id", saleID),
			slog.String("status", string(next)),
			slog.Int64("actor_id", actorID),
		)
	}
	return s.repo.Get(ctx, saleID)
}

// Get returns a sale with its items.
func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.Get(ctx, id)
}

// applyEffects decrements stock per item and credits the customer
// aggregate. Deduct rejects rather than clamps, so an oversell aborts
// the whole unit of work.
func (s *Service) applyEffects(ctx context.Context, tx Tx, sl *Sale, reason string, actorID int64, refID string) error {
	for _, item := range sl.Items {
		if _, err := stock.Deduct(ctx, tx.Stock(), item.ProductID, stock.DefaultLocation, item.Quantity, reason, actorID, refID); err != nil {
			return err
		}
	}
	if sl.CustomerID != nil {
		return customer.ApplyPurchase(ctx, tx.Customers(), *sl.CustomerID, sl.TotalAmount)
	}
	return nil
}

// reverseEffects restores stock per item and debits the customer
// aggregate, clamped at zero.
func (s *Service) reverseEffects(ctx context.Context, tx Tx, sl *Sale, reason string, actorID int64, refID string) error {
	for _, item := range sl.Items {
		if _, err := stock.Restock(ctx, tx.Stock(), item.ProductID, stock.DefaultLocation, item.Quantity, reason, actorID, refID); err != nil {
			return err
		}
	}
	if sl.CustomerID != nil {
		return customer.ReversePurchase(ctx, tx.Customers(), *sl.CustomerID, sl.TotalAmount)
	}
	return nil
}

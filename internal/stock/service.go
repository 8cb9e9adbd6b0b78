package stock

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
	LowStock(ctx context.Context) ([]Record, error)
	ListAudit(ctx context.Context, productID int64, page, limit int) ([]AuditEntry, int, error)
}

// Service exposes the external ledger surface: manual adjustments, the
// low-stock query and the audit read path. Sale-driven mutations go
// through the orchestrator's own unit of work instead.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Adjust applies a manual stock correction in its own unit of work and
// returns the updated record.
func (s *Service) Adjust(ctx context.Context, in AdjustInput) (Record, error) {
	if in.ProductID == 0 {
		return Record{}, fmt.Errorf("stock: product required: %w", shared.ErrValidation)
	}
	if in.Location == "" {
		in.Location = DefaultLocation
	}
	switch in.Operation {
	case OperationAdd, OperationSubtract, OperationSet:
	default:
		return Record{}, ErrUnknownOperation
	}

	var record Record
	err := s.repo.WithTx(ctx, func(ctx context.Context, store TxStore) error {
		var err error
		record, err = Adjust(ctx, store, in)
		return err
	})
	if err != nil {
		return Record{}, err
	}
	if s.logger != nil {
		s.logger.Info("stock adjusted",
			slog.Int64("product_id", in.ProductID),
			slog.String("location", in.Location),
			slog.String("operation", string(in.Operation)),
			slog.Int64("amount", in.Amount),
			slog.Int64("quantity", record.Quantity),
		)
	}
	return record, nil
}

// LowStock lists records at or below their minimum threshold, ascending
// by quantity. Pure read, no side effects.
func (s *Service) LowStock(ctx context.Context) ([]Record, error) {
	return s.repo.LowStock(ctx)
}

// ListAudit returns audit entries for a product, newest first, with the
// total count for paging.
func (s *Service) ListAudit(ctx context.Context, productID int64, page, limit int) ([]AuditEntry, int, error) {
	if productID == 0 {
		return nil, 0, fmt.Errorf("stock: product required: %w", shared.ErrValidation)
	}
	return s.repo.ListAudit(ctx, productID, page, limit)
}

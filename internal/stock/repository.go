package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/platform/db"
	"github.com/meridian-pos/meridian-pos/internal/shared"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository persists stock records and audit entries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes fn inside one unit of work bound to a TxStore.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewTxStore(tx))
	})
	return shared.WrapPersistence(err)
}

// LowStock lists records where quantity is at or below min_quantity.
func (r *Repository) LowStock(ctx context.Context) ([]Record, error) {
	const query = `
		SELECT id, product_id, location, quantity, min_quantity, max_quantity, last_updated
		FROM stocks
		WHERE quantity <= min_quantity
		ORDER BY quantity ASC, product_id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapPersistence(err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.Location, &rec.Quantity,
			&rec.MinQuantity, &rec.MaxQuantity, &rec.LastUpdated); err != nil {
			return nil, shared.WrapPersistence(err)
		}
		records = append(records, rec)
	}
	return records, shared.WrapPersistence(rows.Err())
}

// ListAudit returns audit entries for a product, newest first.
func (r *Repository) ListAudit(ctx context.Context, productID int64, page, limit int) ([]AuditEntry, int, error) {
	paging := shared.NewPagination(page, limit, 0)

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_audits WHERE product_id = $1`, productID,
	).Scan(&total)
	if err != nil {
		return nil, 0, shared.WrapPersistence(err)
	}

	const query = `
		SELECT id, product_id, location, operation, amount,
		       previous_quantity, new_quantity, reason, actor_id,
		       COALESCE(ref_id::text, ''), created_at
		FROM inventory_audits
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, productID, paging.PerPage, paging.Offset())
	if err != nil {
		return nil, 0, shared.WrapPersistence(err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Location, &e.Operation, &e.Amount,
			&e.PreviousQuantity, &e.NewQuantity, &e.Reason, &e.ActorID, &e.RefID,
			&e.CreatedAt); err != nil {
			return nil, 0, shared.WrapPersistence(err)
		}
		entries = append(entries, e)
	}
	return entries, total, shared.WrapPersistence(rows.Err())
}

type txStore struct {
	q dbtx
}

// NewTxStore binds a TxStore to an open transaction. The sale
// orchestrator uses this to mutate the ledger inside its own unit of
// work.
func NewTxStore(q dbtx) TxStore {
	return &txStore{q: q}
}

func (s *txStore) GetForUpdate(ctx context.Context, productID int64, location string) (Record, error) {
	const query = `
		SELECT id, product_id, location, quantity, min_quantity, max_quantity, last_updated
		FROM stocks
		WHERE product_id = $1 AND location = $2
		FOR UPDATE`

	var rec Record
	err := s.q.QueryRow(ctx, query, productID, location).Scan(
		&rec.ID, &rec.ProductID, &rec.Location, &rec.Quantity,
		&rec.MinQuantity, &rec.MaxQuantity, &rec.LastUpdated,
	)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Record{}, shared.WrapPersistence(err)
	}

	// First movement for this key: create the zero record. The unique
	// index on (product_id, location) turns a concurrent double insert
	// into a conflict instead of a second row.
	const insert = `
		INSERT INTO stocks (product_id, location, quantity, min_quantity, max_quantity, last_updated)
		VALUES ($1, $2, 0, 0, 0, NOW())
		RETURNING id, product_id, location, quantity, min_quantity, max_quantity, last_updated`

	err = s.q.QueryRow(ctx, insert, productID, location).Scan(
		&rec.ID, &rec.ProductID, &rec.Location, &rec.Quantity,
		&rec.MinQuantity, &rec.MaxQuantity, &rec.LastUpdated,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Record{}, fmt.Errorf("stock: duplicate record for product %d at %q: %w", productID, location, shared.ErrConflict)
		}
		return Record{}, shared.WrapPersistence(err)
	}
	return rec, nil
}

func (s *txStore) UpdateQuantity(ctx context.Context, record Record) error {
	const query = `
		UPDATE stocks
		SET quantity = $1, last_updated = $2
		WHERE product_id = $3 AND location = $4`

	tag, err := s.q.Exec(ctx, query, record.Quantity, record.LastUpdated, record.ProductID, record.Location)
	if err != nil {
		return shared.WrapPersistence(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock: record vanished for product %d at %q: %w", record.ProductID, record.Location, shared.ErrPersistence)
	}
	return nil
}

func (s *txStore) InsertAudit(ctx context.Context, entry AuditEntry) error {
	const query = `
		INSERT INTO inventory_audits
			(product_id, location, operation, amount, previous_quantity,
			 new_quantity, reason, actor_id, ref_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::uuid, NOW())`

	_, err := s.q.Exec(ctx, query, entry.ProductID, entry.Location, string(entry.Operation),
		entry.Amount, entry.PreviousQuantity, entry.NewQuantity, entry.Reason,
		entry.ActorID, entry.RefID)
	return shared.WrapPersistence(err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}


package sale

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/customer"
	"github.com/meridian-pos/meridian-pos/internal/platform/db"
	"github.com/meridian-pos/meridian-pos/internal/shared"
	"github.com/meridian-pos/meridian-pos/internal/stock"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository persists sales in PostgreSQL and assembles the unit of
// work the orchestrator runs in.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx opens one transaction and hands the orchestrator a Tx whose
// sale, stock and customer stores are all bound to it.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, Tx) error) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTx{
			q:         tx,
			stock:     stock.NewTxStore(tx),
			customers: customer.NewTxStore(tx),
		})
	})
	return shared.WrapPersistence(err)
}

// Get loads a sale with its items.
func (r *Repository) Get(ctx context.Context, id int64) (*Sale, error) {
	s, err := scanSale(r.pool.QueryRow(ctx, selectSale+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, shared.WrapPersistence(err)
	}
	s.Items, err = queryItems(ctx, r.pool, id)
	if err != nil {
		return nil, shared.WrapPersistence(err)
	}
	return s, nil
}

const selectSale = `
	SELECT id, receipt_no, customer_id, created_by, subtotal, tax_amount,
	       discount_amount, total_amount, payment_method_id,
	       payment_status_id, status, notes, created_at, updated_at
	FROM sales`

type pgTx struct {
	q         dbtx
	stock     stock.TxStore
	customers customer.TxStore
}

func (t *pgTx) Stock() stock.TxStore        { return t.stock }
func (t *pgTx) Customers() customer.TxStore { return t.customers }

func (t *pgTx) InsertSale(ctx context.Context, s Sale) (int64, error) {
	const query = `
		INSERT INTO sales
			(receipt_no, customer_id, created_by, subtotal, tax_amount,
			 discount_amount, total_amount, payment_method_id,
			 payment_status_id, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id`

	var customerID pgtype.Int8
	if s.CustomerID != nil {
		customerID = pgtype.Int8{Int64: *s.CustomerID, Valid: true}
	}
	var notes pgtype.Text
	if s.Notes != nil {
		notes = pgtype.Text{String: *s.Notes, Valid: true}
	}

	var id int64
	err := t.q.QueryRow(ctx, query,
		s.ReceiptNo, customerID, s.CreatedBy, s.Subtotal, s.TaxAmount,
		s.DiscountAmount, s.TotalAmount, s.PaymentMethodID,
		s.PaymentStatusID, string(s.Status), notes,
	).Scan(&id)
	return id, shared.WrapPersistence(err)
}

func (t *pgTx) InsertItems(ctx context.Context, saleID int64, items []Item) error {
	const query = `
		INSERT INTO sale_items
			(sale_id, product_id, quantity, unit_price, discount, tax_amount, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, item := range items {
		_, err := t.q.Exec(ctx, query, saleID, item.ProductID, item.Quantity,
			item.UnitPrice, item.Discount, item.TaxAmount, item.TotalPrice)
		if err != nil {
			return shared.WrapPersistence(err)
		}
	}
	return nil
}

func (t *pgTx) GetForUpdate(ctx context.Context, id int64) (*Sale, error) {
	s, err := scanSale(t.q.QueryRow(ctx, selectSale+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, shared.WrapPersistence(err)
	}
	return s, nil
}

func (t *pgTx) GetItems(ctx context.Context, saleID int64) ([]Item, error) {
	items, err := queryItems(ctx, t.q, saleID)
	return items, shared.WrapPersistence(err)
}

func (t *pgTx) UpdateStatus(ctx context.Context, id int64, status Status, paymentStatusID *int64) error {
	const query = `
		UPDATE sales
		SET status = $1,
		    payment_status_id = COALESCE($2, payment_status_id),
		    updated_at = NOW()
		WHERE id = $3`

	var paymentStatus pgtype.Int8
	if paymentStatusID != nil {
		paymentStatus = pgtype.Int8{Int64: *paymentStatusID, Valid: true}
	}
	tag, err := t.q.Exec(ctx, query, string(status), paymentStatus, id)
	if err != nil {
		return shared.WrapPersistence(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func scanSale(row pgx.Row) (*Sale, error) {
	var (
		s                              Sale
		customerID                     pgtype.Int8
		notes                          pgtype.Text
		subtotal, tax, discount, total pgtype.Numeric
		status                         string
	)
	err := row.Scan(&s.ID, &s.ReceiptNo, &customerID, &s.CreatedBy, &subtotal,
		&tax, &discount, &total, &s.PaymentMethodID, &s.PaymentStatusID,
		&status, &notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if customerID.Valid {
		s.CustomerID = &customerID.Int64
	}
	if notes.Valid {
		s.Notes = &notes.String
	}
	s.Subtotal = numericToFloat(subtotal)
	s.TaxAmount = numericToFloat(tax)
	s.DiscountAmount = numericToFloat(discount)
	s.TotalAmount = numericToFloat(total)
	s.Status = Status(status)
	return &s, nil
}

func queryItems(ctx context.Context, q dbtx, saleID int64) ([]Item, error) {
	const query = `
		SELECT id, sale_id, product_id, quantity, unit_price, discount,
		       tax_amount, total_price
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY id`

	rows, err := q.Query(ctx, query, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item                                 Item
			unitPrice, discount, tax, totalPrice pgtype.Numeric
		)
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity,
			&unitPrice, &discount, &tax, &totalPrice); err != nil {
			return nil, err
		}
		item.UnitPrice = numericToFloat(unitPrice)
		item.Discount = numericToFloat(discount)
		item.TaxAmount = numericToFloat(tax)
		item.TotalPrice = numericToFloat(totalPrice)
		items = append(items, item)
	}
	return items, rows.Err()
}

func numericToFloat(n pgtype.Numeric) float64 {
	f, _ := n.Float64Value()
	return f.Float64
}

package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-pos/comanda/internal/orders"
	"github.com/comanda-pos/comanda/internal/platform/db"
	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

// Repository persists payments in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	OrderForUpdate(ctx context.Context, orderID, ownerID string) (OrderSummary, error)
	OrderClientBelongs(ctx context.Context, orderID, orderClientID string) (bool, error)
	ListPayments(ctx context.Context, orderID string) ([]Payment, error)
	InsertPayment(ctx context.Context, payment Payment) (Payment, error)
	PaymentForUpdate(ctx context.Context, paymentID, ownerID string) (Payment, error)
	SetPaymentStatus(ctx context.Context, paymentID string, status Status) error
	SetOrderStatus(ctx context.Context, orderID string, status orders.Status) error
}

type txRepository struct {
	tx pgx.Tx
}

// NewTxRepository wraps an existing transaction, letting the settlement flow
// share one transaction across modules.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("payments repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// ListByOrder returns every payment on an owned order, newest first.
func (r *Repository) ListByOrder(ctx context.Context, orderID, ownerID string) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.order_id, p.amount, p.method, p.status, p.order_client_id, p.note, p.created_at
FROM payments p
JOIN orders o ON o.id = p.order_id
WHERE p.order_id=$1 AND o.profile_id=$2
ORDER BY p.created_at DESC`, orderID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *txRepository) OrderForUpdate(ctx context.Context, orderID, ownerID string) (OrderSummary, error) {
	var summary OrderSummary
	var status string
	err := r.tx.QueryRow(ctx, `SELECT id, status FROM orders WHERE id=$1 AND profile_id=$2 FOR UPDATE`, orderID, ownerID).
		Scan(&summary.ID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return OrderSummary{}, fmt.Errorf("%w: order", httpx.ErrNotFound)
	}
	if err != nil {
		return OrderSummary{}, err
	}
	summary.Status = orders.Status(status)

	rows, err := r.tx.Query(ctx, `SELECT price, quantity, order_client_id FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return OrderSummary{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.Price, &line.Quantity, &line.OrderClientID); err != nil {
			return OrderSummary{}, err
		}
		summary.Items = append(summary.Items, line)
	}
	return summary, rows.Err()
}

func (r *txRepository) OrderClientBelongs(ctx context.Context, orderID, orderClientID string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM order_clients WHERE id=$1 AND order_id=$2)`, orderClientID, orderID).Scan(&exists)
	return exists, err
}

func (r *txRepository) ListPayments(ctx context.Context, orderID string) ([]Payment, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, order_id, amount, method, status, order_client_id, note, created_at
FROM payments WHERE order_id=$1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *txRepository) InsertPayment(ctx context.Context, payment Payment) (Payment, error) {
	payment.ID = uuid.NewString()
	err := r.tx.QueryRow(ctx, `INSERT INTO payments (id, order_id, amount, method, status, order_client_id, note, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW()) RETURNING created_at`,
		payment.ID, payment.OrderID, payment.Amount, string(payment.Method), string(payment.Status), payment.OrderClientID, payment.Note).
		Scan(&payment.CreatedAt)
	return payment, err
}

func (r *txRepository) PaymentForUpdate(ctx context.Context, paymentID, ownerID string) (Payment, error) {
	var payment Payment
	err := r.tx.QueryRow(ctx, `SELECT p.id, p.order_id, p.amount, p.method, p.status, p.order_client_id, p.note, p.created_at
FROM payments p
JOIN orders o ON o.id = p.order_id
WHERE p.id=$1 AND o.profile_id=$2
FOR UPDATE OF p`, paymentID, ownerID).
		Scan(&payment.ID, &payment.OrderID, &payment.Amount, &payment.Method, &payment.Status, &payment.OrderClientID, &payment.Note, &payment.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, fmt.Errorf("%w: payment", httpx.ErrNotFound)
	}
	return payment, err
}

func (r *txRepository) SetPaymentStatus(ctx context.Context, paymentID string, status Status) error {
	_, err := r.tx.Exec(ctx, `UPDATE payments SET status=$1 WHERE id=$2`, string(status), paymentID)
	return err
}

func (r *txRepository) SetOrderStatus(ctx context.Context, orderID string, status orders.Status) error {
	_, err := r.tx.Exec(ctx, `UPDATE orders SET status=$1 WHERE id=$2`, string(status), orderID)
	return err
}

func collectPayments(rows pgx.Rows) ([]Payment, error) {
	out := []Payment{}
	for rows.Next() {
		var payment Payment
		if err := rows.Scan(&payment.ID, &payment.OrderID, &payment.Amount, &payment.Method, &payment.Status, &payment.OrderClientID, &payment.Note, &payment.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, payment)
	}
	return out, rows.Err()
}

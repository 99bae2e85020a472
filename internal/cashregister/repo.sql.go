package cashregister

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/comanda/internal/platform/db"
	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

// Repository persists cash registers in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service and by the
// settlement flow.
type TxRepository interface {
	OpenForUpdate(ctx context.Context, ownerID string) (Register, error)
	GetForUpdate(ctx context.Context, registerID, ownerID string) (Register, error)
	HasOpen(ctx context.Context, ownerID string) (bool, error)
	Insert(ctx context.Context, register Register) (Register, error)
	InsertTransaction(ctx context.Context, transaction Transaction) (Transaction, error)
	SetRegisteredPayments(ctx context.Context, registerID string, payments map[string]decimal.Decimal, closedAmount decimal.Decimal) error
	SetClosedAt(ctx context.Context, registerID string, closedAt time.Time) error
}

type txRepository struct {
	tx pgx.Tx
}

// NewTxRepository wraps an existing transaction, letting the settlement flow
// share one transaction across modules.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

const registerColumns = `id, profile_id, opened_amount, expected_amount, closed_amount, registered_payments, opened_at, closed_at`

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("cashregister repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *Repository) Get(ctx context.Context, registerID, ownerID string) (Register, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+registerColumns+` FROM cash_registers WHERE id=$1 AND profile_id=$2`, registerID, ownerID)
	return scanRegister(row)
}

func (r *Repository) FindOpen(ctx context.Context, ownerID string) (Register, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+registerColumns+` FROM cash_registers WHERE profile_id=$1 AND closed_at IS NULL`, ownerID)
	return scanRegister(row)
}

func (r *Repository) List(ctx context.Context, ownerID string) ([]Register, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+registerColumns+` FROM cash_registers WHERE profile_id=$1 ORDER BY opened_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Register{}
	for rows.Next() {
		register, err := scanRegister(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, register)
	}
	return out, rows.Err()
}

func (r *Repository) ListTransactions(ctx context.Context, registerID, ownerID string) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT t.id, t.cash_register_id, t.origin_type, t.origin_id, t.amount, t.payment_method, t.reason, t.created_at
FROM cash_transactions t
JOIN cash_registers r ON r.id = t.cash_register_id
WHERE t.cash_register_id=$1 AND r.profile_id=$2
ORDER BY t.created_at ASC`, registerID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Transaction{}
	for rows.Next() {
		var transaction Transaction
		if err := rows.Scan(&transaction.ID, &transaction.RegisterID, &transaction.OriginType, &transaction.OriginID, &transaction.Amount, &transaction.PaymentMethod, &transaction.Reason, &transaction.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, transaction)
	}
	return out, rows.Err()
}

// SumsByOrigin totals postings per origin type.
func (r *Repository) SumsByOrigin(ctx context.Context, registerID string) (ReportTotals, error) {
	rows, err := r.pool.Query(ctx, `SELECT origin_type, COALESCE(SUM(amount), 0)
FROM cash_transactions WHERE cash_register_id=$1 GROUP BY origin_type`, registerID)
	if err != nil {
		return ReportTotals{}, err
	}
	defer rows.Close()
	totals := ReportTotals{Orders: decimal.Zero, Expenses: decimal.Zero, Increments: decimal.Zero}
	for rows.Next() {
		var origin string
		var sum decimal.Decimal
		if err := rows.Scan(&origin, &sum); err != nil {
			return ReportTotals{}, err
		}
		switch OriginType(origin) {
		case OriginPayment:
			totals.Orders = sum
		case OriginExpense:
			totals.Expenses = sum
		case OriginIncrement:
			totals.Increments = sum
		}
	}
	return totals, rows.Err()
}

// Sales joins PAYMENT postings back to their orders, newest order first.
func (r *Repository) Sales(ctx context.Context, registerID, ownerID string) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT o.id, o.clients_data, c.name, o.created_at, p.amount, p.method
FROM cash_transactions t
JOIN payments p ON p.id = t.origin_id
JOIN orders o ON o.id = p.order_id
LEFT JOIN LATERAL (
	SELECT cl.name FROM order_clients oc JOIN clients cl ON cl.id = oc.client_id
	WHERE oc.order_id = o.id ORDER BY cl.name LIMIT 1
) c ON TRUE
JOIN cash_registers r ON r.id = t.cash_register_id
WHERE t.cash_register_id=$1 AND t.origin_type='PAYMENT' AND r.profile_id=$2
ORDER BY o.created_at DESC, p.created_at ASC`, registerID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Sale{}
	index := map[string]int{}
	for rows.Next() {
		var orderID, method string
		var clientsData, linkedName *string
		var createdAt time.Time
		var amount decimal.Decimal
		if err := rows.Scan(&orderID, &clientsData, &linkedName, &createdAt, &amount, &method); err != nil {
			return nil, err
		}
		pos, ok := index[orderID]
		if !ok {
			out = append(out, Sale{OrderID: orderID, ClientName: saleClientName(clientsData, linkedName), CreatedAt: createdAt, Total: decimal.Zero})
			pos = len(out) - 1
			index[orderID] = pos
		}
		out[pos].Payments = append(out[pos].Payments, SalePayment{Amount: amount, Method: method})
		out[pos].Total = out[pos].Total.Add(amount)
	}
	return out, rows.Err()
}

// saleClientName picks the display name for a sale: the free-text name stored
// on the order wins over the linked client record.
func saleClientName(clientsData, linkedName *string) string {
	if clientsData != nil && *clientsData != "" {
		return *clientsData
	}
	if linkedName != nil {
		return *linkedName
	}
	return ""
}

func (r *txRepository) OpenForUpdate(ctx context.Context, ownerID string) (Register, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+registerColumns+` FROM cash_registers WHERE profile_id=$1 AND closed_at IS NULL FOR UPDATE`, ownerID)
	return scanRegister(row)
}

func (r *txRepository) GetForUpdate(ctx context.Context, registerID, ownerID string) (Register, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+registerColumns+` FROM cash_registers WHERE id=$1 AND profile_id=$2 FOR UPDATE`, registerID, ownerID)
	return scanRegister(row)
}

func (r *txRepository) HasOpen(ctx context.Context, ownerID string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cash_registers WHERE profile_id=$1 AND closed_at IS NULL)`, ownerID).Scan(&exists)
	return exists, err
}

func (r *txRepository) Insert(ctx context.Context, register Register) (Register, error) {
	register.ID = uuid.NewString()
	err := r.tx.QueryRow(ctx, `INSERT INTO cash_registers (id, profile_id, opened_amount, expected_amount, registered_payments, opened_at)
VALUES ($1,$2,$3,$4,$5,NOW()) RETURNING opened_at`,
		register.ID, register.OwnerID, register.OpenedAmount, register.ExpectedAmount, register.RegisteredPayments).
		Scan(&register.OpenedAt)
	return register, err
}

func (r *txRepository) InsertTransaction(ctx context.Context, transaction Transaction) (Transaction, error) {
	transaction.ID = uuid.NewString()
	err := r.tx.QueryRow(ctx, `INSERT INTO cash_transactions (id, cash_register_id, origin_type, origin_id, amount, payment_method, reason, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW()) RETURNING created_at`,
		transaction.ID, transaction.RegisterID, string(transaction.OriginType), transaction.OriginID, transaction.Amount, transaction.PaymentMethod, transaction.Reason).
		Scan(&transaction.CreatedAt)
	return transaction, err
}

func (r *txRepository) SetRegisteredPayments(ctx context.Context, registerID string, payments map[string]decimal.Decimal, closedAmount decimal.Decimal) error {
	_, err := r.tx.Exec(ctx, `UPDATE cash_registers SET registered_payments=$1, closed_amount=$2 WHERE id=$3`, payments, closedAmount, registerID)
	return err
}

func (r *txRepository) SetClosedAt(ctx context.Context, registerID string, closedAt time.Time) error {
	_, err := r.tx.Exec(ctx, `UPDATE cash_registers SET closed_at=$1 WHERE id=$2`, closedAt, registerID)
	return err
}

func scanRegister(row pgx.Row) (Register, error) {
	var register Register
	err := row.Scan(&register.ID, &register.OwnerID, &register.OpenedAmount, &register.ExpectedAmount, &register.ClosedAmount, &register.RegisteredPayments, &register.OpenedAt, &register.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Register{}, fmt.Errorf("%w: cash register", httpx.ErrNotFound)
	}
	if err != nil {
		return Register{}, err
	}
	if register.RegisteredPayments == nil {
		register.RegisteredPayments = map[string]decimal.Decimal{}
	}
	return register, nil
}

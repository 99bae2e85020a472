package bills

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-pos/comanda/internal/platform/db"
	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

// Repository persists bills in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id, ownerID string) (Bill, error)
	Insert(ctx context.Context, bill Bill) (Bill, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	SetStatus(ctx context.Context, id string, status Status) error
}

type txRepository struct {
	tx pgx.Tx
}

const billColumns = `id, name, amount, due_date, status, paid_at, recurrence, recurrence_parent_id, expense_id, profile_id, created_at`

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("bills repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *Repository) Get(ctx context.Context, id, ownerID string) (Bill, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id=$1 AND profile_id=$2`, id, ownerID)
	return scanBill(row)
}

func (r *Repository) List(ctx context.Context, ownerID string, filter ListFilter) ([]Bill, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+billColumns+` FROM bills
WHERE profile_id=$1 AND ($2::text IS NULL OR status=$2)
ORDER BY due_date ASC`, ownerID, statusArg(filter.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bill)
	}
	return out, rows.Err()
}

// ListOverdue returns pending bills past their due date, across all owners.
// Used by the background overdue scan.
func (r *Repository) ListOverdue(ctx context.Context, asOf time.Time) ([]Bill, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+billColumns+` FROM bills
WHERE status='PENDING' AND due_date < $1
ORDER BY due_date ASC`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bill)
	}
	return out, rows.Err()
}

func (r *Repository) ExpenseExists(ctx context.Context, expenseID, ownerID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM expenses WHERE id=$1 AND profile_id=$2)`, expenseID, ownerID).Scan(&exists)
	return exists, err
}

func (r *Repository) Update(ctx context.Context, bill Bill) error {
	tag, err := r.pool.Exec(ctx, `UPDATE bills SET name=$1, amount=$2, due_date=$3, expense_id=$4 WHERE id=$5 AND profile_id=$6`,
		bill.Name, bill.Amount, bill.DueDate, bill.ExpenseID, bill.ID, bill.OwnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: bill", httpx.ErrNotFound)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bills WHERE id=$1 AND profile_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: bill", httpx.ErrNotFound)
	}
	return nil
}

func (r *txRepository) GetForUpdate(ctx context.Context, id, ownerID string) (Bill, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id=$1 AND profile_id=$2 FOR UPDATE`, id, ownerID)
	return scanBill(row)
}

func (r *txRepository) Insert(ctx context.Context, bill Bill) (Bill, error) {
	bill.ID = uuid.NewString()
	err := r.tx.QueryRow(ctx, `INSERT INTO bills (id, name, amount, due_date, status, recurrence, recurrence_parent_id, expense_id, profile_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW()) RETURNING created_at`,
		bill.ID, bill.Name, bill.Amount, bill.DueDate, string(bill.Status), string(bill.Recurrence), bill.RecurrenceParentID, bill.ExpenseID, bill.OwnerID).
		Scan(&bill.CreatedAt)
	return bill, err
}

func (r *txRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	_, err := r.tx.Exec(ctx, `UPDATE bills SET status='PAID', paid_at=$1 WHERE id=$2`, paidAt, id)
	return err
}

func (r *txRepository) SetStatus(ctx context.Context, id string, status Status) error {
	_, err := r.tx.Exec(ctx, `UPDATE bills SET status=$1 WHERE id=$2`, string(status), id)
	return err
}

func scanBill(row pgx.Row) (Bill, error) {
	var bill Bill
	err := row.Scan(&bill.ID, &bill.Name, &bill.Amount, &bill.DueDate, &bill.Status, &bill.PaidAt, &bill.Recurrence, &bill.RecurrenceParentID, &bill.ExpenseID, &bill.OwnerID, &bill.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bill{}, fmt.Errorf("%w: bill", httpx.ErrNotFound)
	}
	return bill, err
}

func statusArg(status *Status) any {
	if status == nil {
		return nil
	}
	return string(*status)
}

package expenses

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

// Repository persists expense categories in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, expense Expense) (Expense, error) {
	expense.ID = uuid.NewString()
	err := r.pool.QueryRow(ctx, `INSERT INTO expenses (id, name, description, profile_id, created_at)
VALUES ($1,$2,$3,$4,NOW()) RETURNING created_at`,
		expense.ID, expense.Name, expense.Description, expense.OwnerID).Scan(&expense.CreatedAt)
	if err != nil {
		return Expense{}, mapPgError(err)
	}
	return expense, nil
}

func (r *Repository) Get(ctx context.Context, id, ownerID string) (Expense, error) {
	var expense Expense
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, profile_id, created_at FROM expenses WHERE id=$1 AND profile_id=$2`, id, ownerID).
		Scan(&expense.ID, &expense.Name, &expense.Description, &expense.OwnerID, &expense.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Expense{}, fmt.Errorf("%w: expense", httpx.ErrNotFound)
	}
	return expense, err
}

func (r *Repository) List(ctx context.Context, ownerID string) ([]Expense, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, profile_id, created_at FROM expenses WHERE profile_id=$1 ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Expense{}
	for rows.Next() {
		var expense Expense
		if err := rows.Scan(&expense.ID, &expense.Name, &expense.Description, &expense.OwnerID, &expense.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, expense)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, expense Expense) error {
	tag, err := r.pool.Exec(ctx, `UPDATE expenses SET name=$1, description=$2 WHERE id=$3 AND profile_id=$4`,
		expense.Name, expense.Description, expense.ID, expense.OwnerID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expense", httpx.ErrNotFound)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id=$1 AND profile_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expense", httpx.ErrNotFound)
	}
	return nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: expense name", httpx.ErrDuplicate)
	}
	return err
}

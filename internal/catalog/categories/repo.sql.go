package categories

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

// Repository persists product categories in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, category Category) (Category, error) {
	category.ID = uuid.NewString()
	err := r.pool.QueryRow(ctx, `INSERT INTO product_categories (id, name, profile_id, created_at)
VALUES ($1,$2,$3,NOW()) RETURNING created_at`, category.ID, category.Name, category.OwnerID).Scan(&category.CreatedAt)
	if err != nil {
		return Category{}, mapPgError(err)
	}
	return category, nil
}

func (r *Repository) Get(ctx context.Context, id, ownerID string) (Category, error) {
	var category Category
	err := r.pool.QueryRow(ctx, `SELECT id, name, profile_id, created_at FROM product_categories WHERE id=$1 AND profile_id=$2`, id, ownerID).
		Scan(&category.ID, &category.Name, &category.OwnerID, &category.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, fmt.Errorf("%w: category", httpx.ErrNotFound)
	}
	return category, err
}

func (r *Repository) List(ctx context.Context, ownerID string) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, profile_id, created_at FROM product_categories WHERE profile_id=$1 ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Category{}
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Name, &category.OwnerID, &category.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, category)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, category Category) error {
	tag, err := r.pool.Exec(ctx, `UPDATE product_categories SET name=$1 WHERE id=$2 AND profile_id=$3`,
		category.Name, category.ID, category.OwnerID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: category", httpx.ErrNotFound)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM product_categories WHERE id=$1 AND profile_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: category", httpx.ErrNotFound)
	}
	return nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: category name", httpx.ErrDuplicate)
	}
	return err
}

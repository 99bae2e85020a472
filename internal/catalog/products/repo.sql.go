package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-pos/comanda/internal/platform/db"
	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	Insert(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) error
	ReplaceStockLinks(ctx context.Context, productID string, links []StockLink) error
	StockExists(ctx context.Context, stockID, ownerID string) (bool, error)
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("products repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *Repository) Get(ctx context.Context, id, ownerID string) (Product, error) {
	var product Product
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, price, category_id, profile_id, created_at
FROM products WHERE id=$1 AND profile_id=$2`, id, ownerID).
		Scan(&product.ID, &product.Name, &product.Description, &product.Price, &product.CategoryID, &product.OwnerID, &product.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: product", httpx.ErrNotFound)
	}
	if err != nil {
		return Product{}, err
	}
	links, err := r.stockLinks(ctx, []string{product.ID})
	if err != nil {
		return Product{}, err
	}
	product.StockLinks = links[product.ID]
	if product.StockLinks == nil {
		product.StockLinks = []StockLink{}
	}
	return product, nil
}

func (r *Repository) List(ctx context.Context, ownerID string) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, price, category_id, profile_id, created_at
FROM products WHERE profile_id=$1 ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Product{}
	ids := []string{}
	for rows.Next() {
		var product Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.Price, &product.CategoryID, &product.OwnerID, &product.CreatedAt); err != nil {
			return nil, err
		}
		product.StockLinks = []StockLink{}
		out = append(out, product)
		ids = append(ids, product.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	links, err := r.stockLinks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if linked, ok := links[out[i].ID]; ok {
			out[i].StockLinks = linked
		}
	}
	return out, nil
}

func (r *Repository) CategoryExists(ctx context.Context, categoryID, ownerID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM product_categories WHERE id=$1 AND profile_id=$2)`, categoryID, ownerID).Scan(&exists)
	return exists, err
}

// Delete removes the product. Past order items keep their price snapshot;
// their product reference is nulled by the FK, and stock links cascade away.
func (r *Repository) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1 AND profile_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product", httpx.ErrNotFound)
	}
	return nil
}

func (r *Repository) stockLinks(ctx context.Context, productIDs []string) (map[string][]StockLink, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, stock_id, quantity FROM stock_products WHERE product_id = ANY($1)`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]StockLink{}
	for rows.Next() {
		var link StockLink
		var productID string
		if err := rows.Scan(&link.ID, &productID, &link.StockID, &link.Quantity); err != nil {
			return nil, err
		}
		out[productID] = append(out[productID], link)
	}
	return out, rows.Err()
}

func (r *txRepository) Insert(ctx context.Context, product Product) (Product, error) {
	product.ID = uuid.NewString()
	err := r.tx.QueryRow(ctx, `INSERT INTO products (id, name, description, price, category_id, profile_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW()) RETURNING created_at`,
		product.ID, product.Name, product.Description, product.Price, product.CategoryID, product.OwnerID).Scan(&product.CreatedAt)
	if err != nil {
		return Product{}, mapPgError(err)
	}
	return product, nil
}

func (r *txRepository) Update(ctx context.Context, product Product) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET name=$1, description=$2, price=$3, category_id=$4 WHERE id=$5 AND profile_id=$6`,
		product.Name, product.Description, product.Price, product.CategoryID, product.ID, product.OwnerID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product", httpx.ErrNotFound)
	}
	return nil
}

func (r *txRepository) ReplaceStockLinks(ctx context.Context, productID string, links []StockLink) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM stock_products WHERE product_id=$1`, productID); err != nil {
		return err
	}
	for _, link := range links {
		if _, err := r.tx.Exec(ctx, `INSERT INTO stock_products (id, product_id, stock_id, quantity) VALUES ($1,$2,$3,$4)`,
			uuid.NewString(), productID, link.StockID, link.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) StockExists(ctx context.Context, stockID, ownerID string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_items WHERE id=$1 AND profile_id=$2)`, stockID, ownerID).Scan(&exists)
	return exists, err
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: product name", httpx.ErrDuplicate)
	}
	return err
}

package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comanda-pos/comanda/internal/platform/db"
	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

// Repository persists stock data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id, ownerID string) (Item, error)
	Insert(ctx context.Context, item Item) (Item, error)
	Save(ctx context.Context, item Item) error
	InsertHistory(ctx context.Context, entry HistoryEntry) error
	FindSaleLink(ctx context.Context, productID, ownerID string) (SaleLink, bool, error)
	ProductName(ctx context.Context, productID string) (string, error)
}

type txRepository struct {
	tx pgx.Tx
}

// NewTxRepository wraps an existing transaction, letting the settlement flow
// share one transaction across modules.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

const itemColumns = `id, name, quantity, unit_measure, unit_price, total_amount_spent, total_quantity_purchased, min_stock, expense_id, profile_id, created_at`

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("stock repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *Repository) Get(ctx context.Context, id, ownerID string) (Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM stock_items WHERE id=$1 AND profile_id=$2`, id, ownerID)
	return scanItem(row)
}

func (r *Repository) List(ctx context.Context, ownerID string) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM stock_items WHERE profile_id=$1 ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListBelowMinimum returns items whose quantity dropped below min_stock,
// across all owners. Used by the background low stock scan.
func (r *Repository) ListBelowMinimum(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM stock_items
WHERE min_stock IS NOT NULL AND quantity < min_stock
ORDER BY profile_id, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) ListHistory(ctx context.Context, stockID, ownerID string) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT h.id, h.stock_id, h.type, h.initial_quantity, h.final_quantity, h.description, h.total_price, h.unit_price, h.created_at
FROM stock_history h
JOIN stock_items i ON i.id = h.stock_id
WHERE h.stock_id=$1 AND i.profile_id=$2
ORDER BY h.created_at DESC, h.id DESC`, stockID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []HistoryEntry{}
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.StockID, &entry.Type, &entry.InitialQuantity, &entry.FinalQuantity, &entry.Description, &entry.TotalPrice, &entry.UnitPrice, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *Repository) ExpenseExists(ctx context.Context, expenseID, ownerID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM expenses WHERE id=$1 AND profile_id=$2)`, expenseID, ownerID).Scan(&exists)
	return exists, err
}

func (r *Repository) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stock_items WHERE id=$1 AND profile_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: stock item", httpx.ErrNotFound)
	}
	return nil
}

func (r *txRepository) GetForUpdate(ctx context.Context, id, ownerID string) (Item, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM stock_items WHERE id=$1 AND profile_id=$2 FOR UPDATE`, id, ownerID)
	return scanItem(row)
}

func (r *txRepository) Insert(ctx context.Context, item Item) (Item, error) {
	item.ID = uuid.NewString()
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_items (id, name, quantity, unit_measure, unit_price, total_amount_spent, total_quantity_purchased, min_stock, expense_id, profile_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW()) RETURNING created_at`,
		item.ID, item.Name, item.Quantity, item.UnitMeasure, item.UnitPrice, item.TotalAmountSpent, item.TotalQuantityPurchased, item.MinStock, item.ExpenseID, item.OwnerID).
		Scan(&item.CreatedAt)
	return item, err
}

func (r *txRepository) Save(ctx context.Context, item Item) error {
	tag, err := r.tx.Exec(ctx, `UPDATE stock_items
SET name=$1, quantity=$2, unit_price=$3, total_amount_spent=$4, total_quantity_purchased=$5, min_stock=$6, expense_id=$7
WHERE id=$8 AND profile_id=$9`,
		item.Name, item.Quantity, item.UnitPrice, item.TotalAmountSpent, item.TotalQuantityPurchased, item.MinStock, item.ExpenseID, item.ID, item.OwnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: stock item", httpx.ErrNotFound)
	}
	return nil
}

func (r *txRepository) InsertHistory(ctx context.Context, entry HistoryEntry) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO stock_history (id, stock_id, type, initial_quantity, final_quantity, description, total_price, unit_price, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())`,
		uuid.NewString(), entry.StockID, string(entry.Type), entry.InitialQuantity, entry.FinalQuantity, entry.Description, entry.TotalPrice, entry.UnitPrice)
	return err
}

func (r *txRepository) FindSaleLink(ctx context.Context, productID, ownerID string) (SaleLink, bool, error) {
	var link SaleLink
	err := r.tx.QueryRow(ctx, `SELECT sp.stock_id, sp.product_id, sp.quantity
FROM stock_products sp
JOIN stock_items i ON i.id = sp.stock_id
WHERE sp.product_id=$1 AND i.profile_id=$2`, productID, ownerID).
		Scan(&link.StockID, &link.ProductID, &link.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return SaleLink{}, false, nil
	}
	if err != nil {
		return SaleLink{}, false, err
	}
	return link, true, nil
}

func (r *txRepository) ProductName(ctx context.Context, productID string) (string, error) {
	var name string
	err := r.tx.QueryRow(ctx, `SELECT name FROM products WHERE id=$1`, productID).Scan(&name)
	return name, err
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.Name, &item.Quantity, &item.UnitMeasure, &item.UnitPrice, &item.TotalAmountSpent, &item.TotalQuantityPurchased, &item.MinStock, &item.ExpenseID, &item.OwnerID, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, fmt.Errorf("%w: stock item", httpx.ErrNotFound)
	}
	return item, err
}

package orders

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

// Repository persists orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetForUpdate(ctx context.Context, orderID, ownerID string) (Order, error)
	InsertOrder(ctx context.Context, order Order) (Order, error)
	FindClientByPhone(ctx context.Context, phone string) (clientID, name string, found bool, err error)
	InsertClient(ctx context.Context, name, phone string) (string, error)
	InsertOrderClient(ctx context.Context, orderID, clientID string) (string, error)
	Product(ctx context.Context, productID, ownerID string) (Item, error)
	FindItemByProduct(ctx context.Context, orderID, productID string, orderClientID *string) (Item, bool, error)
	InsertItem(ctx context.Context, orderID string, item Item) (Item, error)
	BumpItemQuantity(ctx context.Context, itemID string, by int64, note *string) error
	SetStatus(ctx context.Context, orderID string, status Status) error
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
		return errors.New("orders repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// Get loads an order with its clients and items.
func (r *Repository) Get(ctx context.Context, orderID, ownerID string) (Order, error) {
	return loadOrder(ctx, r.pool, orderID, ownerID, false)
}

// List returns the owner's orders, optionally filtered by status, newest first.
func (r *Repository) List(ctx context.Context, ownerID string, status *Status) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, note, status, clients_data, profile_id, created_at
FROM orders
WHERE profile_id=$1 AND ($2::text IS NULL OR status=$2)
ORDER BY created_at DESC`, ownerID, statusArg(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Order{}
	for rows.Next() {
		var order Order
		if err := rows.Scan(&order.ID, &order.Note, &order.Status, &order.ClientsData, &order.OwnerID, &order.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := fillAssociations(ctx, r.pool, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, orderID, ownerID string, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status=$1 WHERE id=$2 AND profile_id=$3`, string(status), orderID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order", httpx.ErrNotFound)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, orderID, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1 AND profile_id=$2`, orderID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order", httpx.ErrNotFound)
	}
	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, orderID, itemID, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM order_items oi USING orders o
WHERE oi.id=$1 AND oi.order_id=$2 AND o.id=oi.order_id AND o.profile_id=$3`, itemID, orderID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order item", httpx.ErrNotFound)
	}
	return nil
}

func (r *txRepository) GetForUpdate(ctx context.Context, orderID, ownerID string) (Order, error) {
	return loadOrder(ctx, r.tx, orderID, ownerID, true)
}

func (r *txRepository) InsertOrder(ctx context.Context, order Order) (Order, error) {
	order.ID = uuid.NewString()
	err := r.tx.QueryRow(ctx, `INSERT INTO orders (id, note, status, clients_data, profile_id, created_at)
VALUES ($1,$2,$3,$4,$5,NOW()) RETURNING created_at`,
		order.ID, order.Note, string(order.Status), order.ClientsData, order.OwnerID).Scan(&order.CreatedAt)
	return order, err
}

func (r *txRepository) FindClientByPhone(ctx context.Context, phone string) (string, string, bool, error) {
	var id, name string
	err := r.tx.QueryRow(ctx, `SELECT id, name FROM clients WHERE phone=$1`, phone).Scan(&id, &name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}
	return id, name, true, nil
}

func (r *txRepository) InsertClient(ctx context.Context, name, phone string) (string, error) {
	id := uuid.NewString()
	_, err := r.tx.Exec(ctx, `INSERT INTO clients (id, name, phone, created_at) VALUES ($1,$2,$3,NOW())`, id, name, phone)
	return id, err
}

func (r *txRepository) InsertOrderClient(ctx context.Context, orderID, clientID string) (string, error) {
	id := uuid.NewString()
	_, err := r.tx.Exec(ctx, `INSERT INTO order_clients (id, order_id, client_id) VALUES ($1,$2,$3)`, id, orderID, clientID)
	return id, err
}

func (r *txRepository) Product(ctx context.Context, productID, ownerID string) (Item, error) {
	var item Item
	var id string
	err := r.tx.QueryRow(ctx, `SELECT id, name, price FROM products WHERE id=$1 AND profile_id=$2`, productID, ownerID).
		Scan(&id, &item.ProductName, &item.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, fmt.Errorf("%w: product %s", httpx.ErrNotFound, productID)
	}
	if err != nil {
		return Item{}, err
	}
	item.ProductID = &id
	return item, nil
}

func (r *txRepository) FindItemByProduct(ctx context.Context, orderID, productID string, orderClientID *string) (Item, bool, error) {
	var item Item
	err := r.tx.QueryRow(ctx, `SELECT id, product_id, product_name, quantity, price, note, order_client_id, created_at
FROM order_items
WHERE order_id=$1 AND product_id=$2 AND order_client_id IS NOT DISTINCT FROM $3
FOR UPDATE`, orderID, productID, orderClientID).
		Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.Note, &item.OrderClientID, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, err
	}
	return item, true, nil
}

func (r *txRepository) InsertItem(ctx context.Context, orderID string, item Item) (Item, error) {
	item.ID = uuid.NewString()
	err := r.tx.QueryRow(ctx, `INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price, note, order_client_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW()) RETURNING created_at`,
		item.ID, orderID, item.ProductID, item.ProductName, item.Quantity, item.Price, item.Note, item.OrderClientID).Scan(&item.CreatedAt)
	return item, err
}

func (r *txRepository) BumpItemQuantity(ctx context.Context, itemID string, by int64, note *string) error {
	_, err := r.tx.Exec(ctx, `UPDATE order_items SET quantity = quantity + $1, note = COALESCE($2, note) WHERE id=$3`, by, note, itemID)
	return err
}

func (r *txRepository) SetStatus(ctx context.Context, orderID string, status Status) error {
	_, err := r.tx.Exec(ctx, `UPDATE orders SET status=$1 WHERE id=$2`, string(status), orderID)
	return err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadOrder(ctx context.Context, q querier, orderID, ownerID string, forUpdate bool) (Order, error) {
	query := `SELECT id, note, status, clients_data, profile_id, created_at FROM orders WHERE id=$1 AND profile_id=$2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var order Order
	err := q.QueryRow(ctx, query, orderID, ownerID).
		Scan(&order.ID, &order.Note, &order.Status, &order.ClientsData, &order.OwnerID, &order.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("%w: order", httpx.ErrNotFound)
	}
	if err != nil {
		return Order{}, err
	}
	if err := fillAssociations(ctx, q, &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

func fillAssociations(ctx context.Context, q querier, order *Order) error {
	order.Clients = []Client{}
	rows, err := q.Query(ctx, `SELECT oc.id, oc.client_id, c.name, c.phone
FROM order_clients oc
JOIN clients c ON c.id = oc.client_id
WHERE oc.order_id=$1`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var client Client
		if err := rows.Scan(&client.ID, &client.ClientID, &client.Name, &client.Phone); err != nil {
			return err
		}
		order.Clients = append(order.Clients, client)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	order.Items = []Item{}
	itemRows, err := q.Query(ctx, `SELECT id, product_id, product_name, quantity, price, note, order_client_id, created_at
FROM order_items WHERE order_id=$1 ORDER BY created_at ASC`, order.ID)
	if err != nil {
		return err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var item Item
		if err := itemRows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.Note, &item.OrderClientID, &item.CreatedAt); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return itemRows.Err()
}

func statusArg(status *Status) any {
	if status == nil {
		return nil
	}
	return string(*status)
}

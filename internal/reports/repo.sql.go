package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads aggregated sales data from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// PaymentBucket is one (day, method) cell of completed payment volume.
type PaymentBucket struct {
	Day    time.Time
	Method string
	Count  int64
	Total  decimal.Decimal
}

// PaymentBuckets groups COMPLETED payments by day and method for one owner
// over [from, to).
func (r *Repository) PaymentBuckets(ctx context.Context, ownerID string, from, to time.Time) ([]PaymentBucket, error) {
	rows, err := r.pool.Query(ctx, `SELECT date_trunc('day', p.created_at), p.method, COUNT(*), COALESCE(SUM(p.amount), 0)
FROM payments p
JOIN orders o ON o.id = p.order_id
WHERE o.profile_id = $1 AND p.status = 'COMPLETED' AND p.created_at >= $2 AND p.created_at < $3
GROUP BY 1, 2
ORDER BY 1, 2`, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []PaymentBucket
	for rows.Next() {
		var b PaymentBucket
		if err := rows.Scan(&b.Day, &b.Method, &b.Count, &b.Total); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// TopProducts ranks item snapshots of closed orders by revenue.
func (r *Repository) TopProducts(ctx context.Context, ownerID string, from, to time.Time, limit int) ([]ProductTotal, error) {
	rows, err := r.pool.Query(ctx, `SELECT oi.product_name, SUM(oi.quantity), SUM(oi.price * oi.quantity)
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.profile_id = $1 AND o.status = 'CLOSED' AND o.created_at >= $2 AND o.created_at < $3
GROUP BY oi.product_name
ORDER BY 3 DESC
LIMIT $4`, ownerID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ProductTotal
	for rows.Next() {
		var p ProductTotal
		if err := rows.Scan(&p.Name, &p.Quantity, &p.Total); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

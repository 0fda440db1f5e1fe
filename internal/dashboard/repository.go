package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const countsSQL = `
SELECT
	(SELECT COUNT(*) FROM products WHERE is_active),
	(SELECT COUNT(*) FROM products WHERE is_active AND stock <= reorder_level),
	(SELECT COUNT(*) FROM customers WHERE is_active),
	(SELECT COUNT(*) FROM orders WHERE status = 'PENDING'),
	(SELECT COALESCE(SUM(amount), 0)::float8 FROM payments WHERE status = 'PAID' AND paid_at >= $1),
	(SELECT COALESCE(SUM(amount), 0)::float8 FROM expenses WHERE spent_at >= $1::date)`

const revenueSQL = `
SELECT to_char(date_trunc('day', paid_at), 'YYYY-MM-DD') AS day, SUM(amount)::float8
FROM payments
WHERE status = 'PAID' AND paid_at >= $1
GROUP BY 1
ORDER BY 1`

const lowStockSQL = `
SELECT id, sku, name, stock, reorder_level
FROM products
WHERE is_active AND stock <= reorder_level
ORDER BY stock ASC, name ASC
LIMIT $1`

const recentSQL = `
SELECT id, action, entity_type, description, created_at
FROM activity_logs
ORDER BY created_at DESC, id DESC
LIMIT $1`

// Repository runs the dashboard aggregates.
type Repository interface {
	Counts(ctx context.Context, since time.Time) (Counts, error)
	Revenue(ctx context.Context, since time.Time) ([]RevenuePoint, error)
	LowStock(ctx context.Context, limit int) ([]LowStockItem, error)
	Recent(ctx context.Context, limit int) ([]ActivityItem, error)
}

// PgRepository implements Repository with raw SQL over pgx.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PgRepository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Counts returns the headline numbers; sums cover the period from since.
func (r *PgRepository) Counts(ctx context.Context, since time.Time) (Counts, error) {
	var c Counts
	err := r.pool.QueryRow(ctx, countsSQL, since).Scan(
		&c.Products, &c.LowStock, &c.Customers, &c.PendingOrders, &c.Revenue, &c.Expenses,
	)
	return c, err
}

// Revenue returns the paid amount per day since since. Days without
// payments are absent.
func (r *PgRepository) Revenue(ctx context.Context, since time.Time) ([]RevenuePoint, error) {
	rows, err := r.pool.Query(ctx, revenueSQL, since)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (RevenuePoint, error) {
		var p RevenuePoint
		err := row.Scan(&p.Day, &p.Amount)
		return p, err
	})
}

// LowStock returns active products at or below their reorder level.
func (r *PgRepository) LowStock(ctx context.Context, limit int) ([]LowStockItem, error) {
	rows, err := r.pool.Query(ctx, lowStockSQL, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[LowStockItem])
}

// Recent returns the latest activity entries.
func (r *PgRepository) Recent(ctx context.Context, limit int) ([]ActivityItem, error) {
	rows, err := r.pool.Query(ctx, recentSQL, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[ActivityItem])
}

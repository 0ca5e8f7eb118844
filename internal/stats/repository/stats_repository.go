package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bistro/internal/domain"
)

type MySQLStatsRepository struct {
	db *sql.DB
}

func NewMySQLStatsRepository(db *sql.DB) *MySQLStatsRepository {
	return &MySQLStatsRepository{db: db}
}

// CountMenuItems counts the items currently offered to customers.
func (r *MySQLStatsRepository) CountMenuItems(ctx context.Context) (int64, error) {
	return r.scalar(ctx, "counting menu items", `SELECT COUNT(*) FROM menu_items WHERE available = 1`)
}

func (r *MySQLStatsRepository) CountOrders(ctx context.Context) (int64, error) {
	return r.scalar(ctx, "counting orders", `SELECT COUNT(*) FROM orders`)
}

// SumRevenue is 0 when there are no orders.
func (r *MySQLStatsRepository) SumRevenue(ctx context.Context) (int64, error) {
	return r.scalar(ctx, "summing revenue", `SELECT COALESCE(SUM(total_price), 0) FROM orders`)
}

// SumRevenueBetween sums order totals with start <= order_time <= end.
func (r *MySQLStatsRepository) SumRevenueBetween(ctx context.Context, start, end time.Time) (int64, error) {
	return r.scalar(ctx, "summing revenue by period",
		`SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE order_time >= ? AND order_time <= ?`,
		start.UTC(), end.UTC(),
	)
}

// CountByStatus returns counts only for statuses that have orders.
func (r *MySQLStatsRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting orders by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.OrderStatus]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning status count row: %w", err)
		}
		counts[domain.OrderStatus(status)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status count rows: %w", err)
	}

	return counts, nil
}

func (r *MySQLStatsRepository) scalar(ctx context.Context, op, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

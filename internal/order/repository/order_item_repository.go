package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bistro/internal/domain"
)

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

func (r *MySQLOrderItemRepository) Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error) {
	query := `INSERT INTO order_items (order_id, menu_item_id, quantity, price) VALUES (?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, item.OrderID, item.MenuItemID, item.Quantity, item.Price)
	if err != nil {
		return 0, fmt.Errorf("inserting order item: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

// LockAvailableMenuItems share-locks the requested menu rows until tx ends
// and reports which of them are available. An availability change waits
// for the order to commit.
func (r *MySQLOrderItemRepository) LockAvailableMenuItems(ctx context.Context, tx *sql.Tx, menuItemIDs []int) (map[int]bool, error) {
	available := make(map[int]bool, len(menuItemIDs))
	if len(menuItemIDs) == 0 {
		return available, nil
	}

	seen := make(map[int]bool, len(menuItemIDs))
	var (
		placeholders []string
		args         []interface{}
	)
	for _, id := range menuItemIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}

	query := fmt.Sprintf(
		`SELECT id FROM menu_items WHERE id IN (%s) AND available = 1 FOR SHARE`,
		strings.Join(placeholders, ", "),
	)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("locking menu items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning locked menu item: %w", err)
		}
		available[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locked menu items: %w", err)
	}

	return available, nil
}

// FindByOrderIDs loads the items of each order in insertion order. A row
// with quantity n contributes n entries. Prices are the snapshots stored on
// the order, not the current menu prices.
func (r *MySQLOrderItemRepository) FindByOrderIDs(ctx context.Context, orderIDs []uint) (map[uint][]domain.MenuItem, error) {
	result := make(map[uint][]domain.MenuItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(orderIDs))
	args := make([]interface{}, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT oi.order_id, oi.quantity, oi.price,
		       m.id, m.name, m.description, m.cuisine, m.available
		FROM order_items oi
		JOIN menu_items m ON m.id = oi.menu_item_id
		WHERE oi.order_id IN (%s)
		ORDER BY oi.order_id ASC, oi.id ASC`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID  uint
			quantity int
			item     domain.MenuItem
			cuisine  string
		)
		if err := rows.Scan(
			&orderID, &quantity, &item.Price,
			&item.ID, &item.Name, &item.Description, &cuisine, &item.Available,
		); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		item.Cuisine = domain.Cuisine(cuisine)

		for i := 0; i < quantity; i++ {
			result[orderID] = append(result[orderID], item)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return result, nil
}

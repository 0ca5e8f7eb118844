package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bistro/internal/domain"
	"bistro/internal/errors"
)

const menuItemColumns = `id, name, price, description, cuisine, available`

type MySQLMenuRepository struct {
	db *sql.DB
}

func NewMySQLMenuRepository(db *sql.DB) *MySQLMenuRepository {
	return &MySQLMenuRepository{db: db}
}

func (r *MySQLMenuRepository) FindAll(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items`
	if availableOnly {
		query += ` WHERE available = 1`
	}
	query += ` ORDER BY id ASC`

	return r.query(ctx, query)
}

func (r *MySQLMenuRepository) FindByCuisine(ctx context.Context, cuisine domain.Cuisine, availableOnly bool) ([]domain.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE cuisine = ?`
	if availableOnly {
		query += ` AND available = 1`
	}
	query += ` ORDER BY id ASC`

	return r.query(ctx, query, string(cuisine))
}

// FindByID returns the item regardless of availability.
func (r *MySQLMenuRepository) FindByID(ctx context.Context, id int) (*domain.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = ?`

	item, err := scanMenuItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("menu item with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying menu item by id: %w", err)
	}

	return item, nil
}

// FindAvailableByIDs returns the available items among ids, once each,
// ordered by id. Duplicate ids in the input are collapsed.
func (r *MySQLMenuRepository) FindAvailableByIDs(ctx context.Context, ids []int) ([]domain.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	seen := make(map[int]struct{}, len(ids))
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM menu_items
		WHERE id IN (%s)
		  AND available = 1
		ORDER BY id ASC`,
		menuItemColumns,
		strings.Join(placeholders, ", "),
	)

	return r.query(ctx, query, args...)
}

func (r *MySQLMenuRepository) UpdateAvailability(ctx context.Context, id int, available bool) error {
	query := `UPDATE menu_items SET available = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, available, id)
	if err != nil {
		return fmt.Errorf("updating menu item availability: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	// MySQL reports 0 affected rows when the value is unchanged, so a miss
	// has to be confirmed before it becomes a NotFound.
	if rowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}

	return nil
}

// ExistsAny reports whether the catalog holds at least one item, available
// or not. The read takes a lock so concurrent seeders serialize on it.
func (r *MySQLMenuRepository) ExistsAny(ctx context.Context, tx *sql.Tx) (bool, error) {
	var id int
	err := tx.QueryRowContext(ctx, `SELECT id FROM menu_items LIMIT 1 FOR UPDATE`).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking menu items: %w", err)
	}
	return true, nil
}

// InsertMany writes items in order and returns them with their assigned ids.
func (r *MySQLMenuRepository) InsertMany(ctx context.Context, tx *sql.Tx, items []domain.MenuItem) ([]domain.MenuItem, error) {
	query := `
		INSERT INTO menu_items (name, price, description, cuisine, available)
		VALUES (?, ?, ?, ?, ?)
	`

	created := make([]domain.MenuItem, 0, len(items))
	for _, item := range items {
		result, err := tx.ExecContext(ctx, query,
			item.Name, item.Price, item.Description, string(item.Cuisine), item.Available,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting menu item %q: %w", item.Name, err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("getting last insert id: %w", err)
		}

		item.ID = int(id)
		created = append(created, item)
	}

	return created, nil
}

func (r *MySQLMenuRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning menu item row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menu item rows: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMenuItem(row rowScanner) (*domain.MenuItem, error) {
	var (
		item    domain.MenuItem
		cuisine string
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Price, &item.Description, &cuisine, &item.Available); err != nil {
		return nil, err
	}
	item.Cuisine = domain.Cuisine(cuisine)
	return &item, nil
}

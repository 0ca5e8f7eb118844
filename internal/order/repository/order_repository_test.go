package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bistro/internal/domain"
	"bistro/internal/errors"
	"bistro/internal/testutil"
)

var orderCols = []string{"id", "customer_name", "total_price", "status", "order_time"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// Unit Tests

func TestNewMySQLOrderRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLOrderRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestOrderRepository_Insert(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLOrderRepository(db)
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders (customer_name, total_price, status, order_time)")).
		WithArgs("John Doe", int64(700), "pending", ts).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	id, err := repo.Insert(context.Background(), tx, domain.Order{
		CustomerName: "John Doe",
		TotalPrice:   700,
		Status:       domain.OrderStatusPending,
		OrderTime:    ts,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, uint(12), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLOrderRepository(db)
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ?")).
		WithArgs(uint(3)).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(3, "John Doe", 700, "preparing", ts))

	order, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), order.ID)
	assert.Equal(t, "John Doe", order.CustomerName)
	assert.Equal(t, int64(700), order.TotalPrice)
	assert.Equal(t, domain.OrderStatusPreparing, order.Status)
	assert.True(t, ts.Equal(order.OrderTime))
	assert.Empty(t, order.Items)
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLOrderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ?")).
		WithArgs(uint(404)).
		WillReturnRows(sqlmock.NewRows(orderCols))

	order, err := repo.FindByID(context.Background(), 404)
	assert.Nil(t, order)
	nfe, ok := errors.IsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, "order with id 404 not found", nfe.Message)
}

func TestOrderRepository_FindByIDForUpdate_Locks(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMySQLOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ? FOR UPDATE")).
		WithArgs(uint(3)).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(3, "John Doe", 700, "pending", time.Now()))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	order, err := repo.FindByIDForUpdate(context.Background(), tx, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewMySQLOrderRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = ? WHERE id = ?")).
			WithArgs("ready", uint(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatus(context.Background(), tx, 3, domain.OrderStatusReady))
		require.NoError(t, tx.Rollback())
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewMySQLOrderRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = ? WHERE id = ?")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		tx, err := db.Begin()
		require.NoError(t, err)
		err = repo.UpdateStatus(context.Background(), tx, 3, domain.OrderStatusReady)
		_, ok := errors.IsNotFoundError(err)
		assert.True(t, ok)
	})
}

func TestOrderRepository_FindAll_Filters(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.OrderFilter
		sql    string
		args   []driver.Value
	}{
		{
			name: "no filter",
			sql:  "SELECT id, customer_name, total_price, status, order_time FROM orders ORDER BY order_time DESC, id DESC",
		},
		{
			name:   "status",
			filter: domain.OrderFilter{Status: domain.OrderStatusReady},
			sql:    "FROM orders WHERE status = ? ORDER BY order_time DESC, id DESC",
			args:   []driver.Value{"ready"},
		},
		{
			name:   "customer is lowered and escaped",
			filter: domain.OrderFilter{Customer: "Jo_hn%"},
			sql:    "FROM orders WHERE LOWER(customer_name) LIKE ? ORDER BY",
			args:   []driver.Value{`%jo\_hn\%%`},
		},
		{
			name:   "both",
			filter: domain.OrderFilter{Status: domain.OrderStatusPending, Customer: "doe"},
			sql:    "WHERE status = ? AND LOWER(customer_name) LIKE ?",
			args:   []driver.Value{"pending", "%doe%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewMySQLOrderRepository(db)

			q := mock.ExpectQuery(regexp.QuoteMeta(tt.sql))
			if len(tt.args) > 0 {
				q = q.WithArgs(tt.args...)
			}
			q.WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow(2, "John Doe", 320, "ready", time.Now()).
				AddRow(1, "Jane Doe", 380, "pending", time.Now().Add(-time.Hour)))

			orders, err := repo.FindAll(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Len(t, orders, 2)
			assert.Equal(t, uint(2), orders[0].ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

// Integration Tests

func TestOrderRepository_Integration_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()
	menuID := seedMenuItem(t, db, "Sushi Platter", 380)

	repo := NewMySQLOrderRepository(db)
	itemRepo := NewMySQLOrderItemRepository(db)

	base := time.Now().UTC().Truncate(time.Second)
	var ids []uint
	for i, name := range []string{"John Doe", "Jane Roe", "johnny walker"} {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)

		id, err := repo.Insert(ctx, tx, domain.Order{
			CustomerName: name,
			TotalPrice:   380,
			Status:       domain.OrderStatusPending,
			OrderTime:    base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		_, err = itemRepo.Insert(ctx, tx, domain.OrderItem{OrderID: id, MenuItemID: menuID, Quantity: 1, Price: 380})
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		ids = append(ids, id)
	}

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, tx, ids[0], domain.OrderStatusPreparing))
	require.NoError(t, tx.Commit())

	all, err := repo.FindAll(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest first")

	johns, err := repo.FindAll(ctx, domain.OrderFilter{Customer: "JOHN"})
	require.NoError(t, err)
	assert.Len(t, johns, 2)

	preparing, err := repo.FindAll(ctx, domain.OrderFilter{Status: domain.OrderStatusPreparing})
	require.NoError(t, err)
	require.Len(t, preparing, 1)
	assert.Equal(t, ids[0], preparing[0].ID)

	got, err := repo.FindByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", got.CustomerName)
	assert.True(t, base.Add(time.Minute).Equal(got.OrderTime))
}

func seedMenuItem(t *testing.T, db *sql.DB, name string, price int64) int {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO menu_items (name, price, description, cuisine, available) VALUES (?, ?, '', 'general', 1)`,
		name, price,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bistro/internal/domain"
	apperrors "bistro/internal/errors"
	"bistro/internal/testutil"
)

var menuColumns = []string{"id", "name", "price", "description", "cuisine", "available"}

func newMockRepo(t *testing.T) (*MySQLMenuRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLMenuRepository(db), mock, db
}

// Unit Tests

func TestNewMySQLMenuRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLMenuRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestMenuRepository_FindAll_AvailableOnly(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM menu_items WHERE available = 1 ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows(menuColumns).
			AddRow(1, "Sushi Platter", 380, "Fresh sashimi", "japanese", true).
			AddRow(2, "Margherita Pizza", 320, "Classic pizza", "italian", true))

	items, err := repo.FindAll(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, domain.CuisineJapanese, items[0].Cuisine)
	assert.Equal(t, int64(320), items[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuRepository_FindAll_IncludesUnavailable(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price, description, cuisine, available FROM menu_items ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows(menuColumns).
			AddRow(1, "Sushi Platter", 380, "Fresh sashimi", "japanese", false))

	items, err := repo.FindAll(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuRepository_FindByCuisine(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE cuisine = ? AND available = 1 ORDER BY id ASC")).
		WithArgs("italian").
		WillReturnRows(sqlmock.NewRows(menuColumns).
			AddRow(2, "Margherita Pizza", 320, "Classic pizza", "italian", true).
			AddRow(5, "Pasta Carbonara", 290, "Creamy pasta", "italian", true))

	items, err := repo.FindByCuisine(context.Background(), domain.CuisineItalian, true)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuRepository_FindByID_NotFound(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM menu_items WHERE id = ?")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(menuColumns))

	item, err := repo.FindByID(context.Background(), 99)
	assert.Nil(t, item)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestMenuRepository_FindByID_DriverError(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM menu_items WHERE id = ?")).
		WithArgs(1).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.FindByID(context.Background(), 1)
	require.Error(t, err)
	_, ok := apperrors.IsNotFoundError(err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "querying menu item by id")
}

func TestMenuRepository_FindAvailableByIDs_CollapsesDuplicates(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id IN (?, ?)")).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows(menuColumns).
			AddRow(1, "Sushi Platter", 380, "Fresh sashimi", "japanese", true).
			AddRow(2, "Margherita Pizza", 320, "Classic pizza", "italian", true))

	items, err := repo.FindAvailableByIDs(context.Background(), []int{2, 1, 2, 1})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuRepository_FindAvailableByIDs_Empty(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	items, err := repo.FindAvailableByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuRepository_UpdateAvailability(t *testing.T) {
	t.Run("changed", func(t *testing.T) {
		repo, mock, _ := newMockRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE menu_items SET available = ? WHERE id = ?")).
			WithArgs(false, 3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateAvailability(context.Background(), 3, false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unchanged value on existing row", func(t *testing.T) {
		repo, mock, _ := newMockRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE menu_items SET available = ? WHERE id = ?")).
			WithArgs(true, 3).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("FROM menu_items WHERE id = ?")).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows(menuColumns).AddRow(3, "Burger Combo", 250, "Beef burger", "general", true))

		require.NoError(t, repo.UpdateAvailability(context.Background(), 3, true))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock, _ := newMockRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE menu_items SET available = ? WHERE id = ?")).
			WithArgs(true, 42).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("FROM menu_items WHERE id = ?")).
			WithArgs(42).
			WillReturnRows(sqlmock.NewRows(menuColumns))

		err := repo.UpdateAvailability(context.Background(), 42, true)
		_, ok := apperrors.IsNotFoundError(err)
		assert.True(t, ok)
	})
}

func TestMenuRepository_ExistsAny(t *testing.T) {
	repo, mock, db := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM menu_items LIMIT 1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM menu_items LIMIT 1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	exists, err := repo.ExistsAny(context.Background(), tx)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsAny(context.Background(), tx)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuRepository_InsertMany_AssignsIDs(t *testing.T) {
	repo, mock, db := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO menu_items")).
		WithArgs("Sushi Platter", int64(380), "Fresh sashimi", "japanese", true).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO menu_items")).
		WithArgs("Margherita Pizza", int64(320), "Classic pizza", "italian", true).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	created, err := repo.InsertMany(context.Background(), tx, []domain.MenuItem{
		{Name: "Sushi Platter", Price: 380, Description: "Fresh sashimi", Cuisine: domain.CuisineJapanese, Available: true},
		{Name: "Margherita Pizza", Price: 320, Description: "Classic pizza", Cuisine: domain.CuisineItalian, Available: true},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.Len(t, created, 2)
	assert.Equal(t, 10, created[0].ID)
	assert.Equal(t, 11, created[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Integration Tests

func TestMenuRepository_Integration_SeedAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLMenuRepository(db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	exists, err := repo.ExistsAny(ctx, tx)
	require.NoError(t, err)
	require.False(t, exists)

	created, err := repo.InsertMany(ctx, tx, domain.DefaultMenu())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.Len(t, created, 5)

	require.NoError(t, repo.UpdateAvailability(ctx, created[2].ID, false))

	available, err := repo.FindAll(ctx, true)
	require.NoError(t, err)
	assert.Len(t, available, 4)

	all, err := repo.FindAll(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	japanese, err := repo.FindByCuisine(ctx, domain.CuisineJapanese, true)
	require.NoError(t, err)
	assert.Len(t, japanese, 2)

	found, err := repo.FindAvailableByIDs(ctx, []int{created[0].ID, created[2].ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Sushi Platter", found[0].Name)
}

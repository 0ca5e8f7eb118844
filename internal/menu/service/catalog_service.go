package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"bistro/internal/domain"
	apperrors "bistro/internal/errors"
	"bistro/internal/infrastructure/mysql"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type MenuRepository interface {
	FindAll(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error)
	FindByID(ctx context.Context, id int) (*domain.MenuItem, error)
	FindByCuisine(ctx context.Context, cuisine domain.Cuisine, availableOnly bool) ([]domain.MenuItem, error)
	FindAvailableByIDs(ctx context.Context, ids []int) ([]domain.MenuItem, error)
	UpdateAvailability(ctx context.Context, id int, available bool) error
	ExistsAny(ctx context.Context, tx *sql.Tx) (bool, error)
	InsertMany(ctx context.Context, tx *sql.Tx, items []domain.MenuItem) ([]domain.MenuItem, error)
}

type CatalogService struct {
	db     TransactionManager
	repo   MenuRepository
	logger *zap.Logger
}

func NewCatalogService(db TransactionManager, repo MenuRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		db:     db,
		repo:   repo,
		logger: logger,
	}
}

func (s *CatalogService) ListAll(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error) {
	return s.repo.FindAll(ctx, availableOnly)
}

// GetByID returns an available item. Items switched off by an admin are
// reported as not found.
func (s *CatalogService) GetByID(ctx context.Context, id int) (*domain.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("menu item with id %d not found", id))
	}
	return item, nil
}

func (s *CatalogService) ListByCuisine(ctx context.Context, cuisine domain.Cuisine) ([]domain.MenuItem, error) {
	return s.repo.FindByCuisine(ctx, cuisine, true)
}

// ValidateIDs resolves every requested id against the available catalog.
// resolved keeps the input order and repeats an item once per occurrence of
// its id. unresolved lists, in input order, each occurrence that matched
// nothing.
func (s *CatalogService) ValidateIDs(ctx context.Context, ids []int) ([]domain.MenuItem, []int, error) {
	found, err := s.repo.FindAvailableByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[int]domain.MenuItem, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	resolved := make([]domain.MenuItem, 0, len(ids))
	var unresolved []int
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			unresolved = append(unresolved, id)
			continue
		}
		resolved = append(resolved, item)
	}

	return resolved, unresolved, nil
}

// IsAvailable is false for unknown ids.
func (s *CatalogService) IsAvailable(ctx context.Context, id int) (bool, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return false, nil
		}
		return false, err
	}
	return item.Available, nil
}

func (s *CatalogService) SetAvailability(ctx context.Context, id int, available bool) (*domain.MenuItem, error) {
	if err := s.repo.UpdateAvailability(ctx, id, available); err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("menu item availability changed", zap.Int("menuItemId", id), zap.Bool("available", available))
	return item, nil
}

// InitializeDefaults seeds the default menu into an empty catalog. The
// emptiness check and the inserts share one transaction, so of two
// concurrent callers at most one succeeds.
func (s *CatalogService) InitializeDefaults(ctx context.Context) ([]domain.MenuItem, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	exists, err := s.repo.ExistsAny(ctx, tx)
	if err != nil {
		return nil, s.conflictOr(err)
	}
	if exists {
		return nil, apperrors.NewConflictError("menu already initialized")
	}

	created, err := s.repo.InsertMany(ctx, tx, domain.DefaultMenu())
	if err != nil {
		return nil, s.conflictOr(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Error(err))
		return nil, s.conflictOr(err)
	}

	s.logger.Info("menu initialized", zap.Int("itemCount", len(created)))
	return created, nil
}

func (s *CatalogService) conflictOr(err error) error {
	if mysql.IsLockConflict(err) {
		s.logger.Warn("menu initialization lost lock race", zap.Error(err))
		return apperrors.NewConflictError("menu already initialized")
	}
	return err
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"bistro/internal/domain"
	apperrors "bistro/internal/errors"
	"bistro/internal/infrastructure/mysql"
	"bistro/internal/pricing"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error)
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.OrderStatus) error
	FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

type OrderItemRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error)
	FindByOrderIDs(ctx context.Context, orderIDs []uint) (map[uint][]domain.MenuItem, error)
	LockAvailableMenuItems(ctx context.Context, tx *sql.Tx, menuItemIDs []int) (map[int]bool, error)
}

type OrderService struct {
	db            TransactionManager
	orderRepo     OrderRepository
	orderItemRepo OrderItemRepository
	logger        *zap.Logger
	txTimeout     time.Duration
	now           func() time.Time
}

func NewOrderService(
	db TransactionManager,
	orderRepo OrderRepository,
	orderItemRepo OrderItemRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *OrderService {
	return &OrderService{
		db:            db,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		logger:        logger,
		txTimeout:     txTimeout,
		now:           time.Now,
	}
}

// Create persists a pending order for the resolved items. The header and
// every item row are written in one transaction; any failure leaves no
// trace of the order. The items are share-locked and re-checked inside the
// transaction, so one switched off after resolution fails the order.
func (s *OrderService) Create(ctx context.Context, customerName string, items []domain.MenuItem) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, apperrors.NewValidationError("order must contain at least one item", apperrors.ValidationDetail{
			Field:   "itemIds",
			Message: "no valid menu items provided",
		})
	}

	order := domain.Order{
		CustomerName: customerName,
		Items:        items,
		TotalPrice:   pricing.Subtotal(items),
		Status:       domain.OrderStatusPending,
		OrderTime:    s.now().UTC().Truncate(time.Second),
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// Rollback after a successful commit is a no-op.
	defer tx.Rollback()

	if err := s.checkStillAvailable(txCtx, tx, items); err != nil {
		return nil, err
	}

	orderID, err := s.orderRepo.Insert(txCtx, tx, order)
	if err != nil {
		s.logger.Error("failed to insert order", zap.Error(err))
		return nil, lockConflictOr(err)
	}
	order.ID = orderID

	for _, item := range items {
		_, err := s.orderItemRepo.Insert(txCtx, tx, domain.OrderItem{
			OrderID:    orderID,
			MenuItemID: item.ID,
			Quantity:   1,
			Price:      item.Price,
		})
		if err != nil {
			s.logger.Error("failed to insert order item", zap.Uint("orderId", orderID), zap.Int("menuItemId", item.ID), zap.Error(err))
			return nil, lockConflictOr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, lockConflictOr(err)
	}

	s.logger.Info("order created",
		zap.Uint("orderId", orderID),
		zap.Int("itemCount", len(items)),
		zap.Int64("totalPrice", order.TotalPrice),
	)
	return &order, nil
}

// UpdateStatus applies one lifecycle step. The order row stays locked from
// the transition check until commit, so concurrent updates are serialized
// and the loser sees the winner's status.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, next domain.OrderStatus) (*domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.FindByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, lockConflictOr(err)
	}

	previous := order.Status
	if err := order.TransitionTo(next); err != nil {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("cannot change order status from %s to %s", previous, next),
			apperrors.ValidationDetail{Field: "status", Message: err.Error()},
		)
	}

	if err := s.orderRepo.UpdateStatus(txCtx, tx, id, order.Status); err != nil {
		s.logger.Error("failed to update order status", zap.Uint("orderId", id), zap.Error(err))
		return nil, lockConflictOr(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Uint("orderId", id), zap.Error(err))
		return nil, lockConflictOr(err)
	}

	s.logger.Info("order status changed",
		zap.Uint("orderId", id),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)),
	)

	if err := s.hydrate(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.hydrate(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	ptrs := make([]*domain.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := s.hydrate(ctx, ptrs); err != nil {
		return nil, err
	}
	return orders, nil
}

// hydrate fills Items for every order with a single query.
func (s *OrderService) hydrate(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uint, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := s.orderItemRepo.FindByOrderIDs(ctx, ids)
	if err != nil {
		return err
	}

	for _, o := range orders {
		o.Items = items[o.ID]
	}
	return nil
}

func (s *OrderService) checkStillAvailable(ctx context.Context, tx *sql.Tx, items []domain.MenuItem) error {
	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	available, err := s.orderItemRepo.LockAvailableMenuItems(ctx, tx, ids)
	if err != nil {
		s.logger.Error("failed to lock menu items", zap.Error(err))
		return lockConflictOr(err)
	}

	var gone []string
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !available[id] && !seen[id] {
			seen[id] = true
			gone = append(gone, strconv.Itoa(id))
		}
	}
	if len(gone) == 0 {
		return nil
	}

	s.logger.Warn("menu items became unavailable during order creation", zap.Strings("menuItemIds", gone))
	return apperrors.NewValidationError("menu items are no longer available", apperrors.ValidationDetail{
		Field:   "itemIds",
		Message: fmt.Sprintf("unavailable item ids: %s", strings.Join(gone, ", ")),
	})
}

func lockConflictOr(err error) error {
	if mysql.IsLockConflict(err) {
		return apperrors.NewConflictError("order was modified concurrently, please retry")
	}
	return err
}

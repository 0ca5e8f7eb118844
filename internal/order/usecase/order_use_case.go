package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bistro/internal/domain"
	"bistro/internal/dto"
	apperrors "bistro/internal/errors"
	"bistro/internal/pricing"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type MenuCatalog interface {
	ValidateIDs(ctx context.Context, ids []int) (resolved []domain.MenuItem, unresolved []int, err error)
}

type OrderService interface {
	Create(ctx context.Context, customerName string, items []domain.MenuItem) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uint, next domain.OrderStatus) (*domain.Order, error)
	Get(ctx context.Context, id uint) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

// EventPublisher fans order events out to live subscribers. Publish must
// not block.
type EventPublisher interface {
	Publish(eventType string, payload any)
}

type PlaceOrderResult struct {
	Order *domain.Order
	// UnresolvedIDs are requested ids dropped because they matched no
	// available menu item.
	UnresolvedIDs []int
}

type OrderUseCase struct {
	catalog    MenuCatalog
	orders     OrderService
	publisher  EventPublisher
	calculator *pricing.Calculator
	logger     *zap.Logger
	strict     bool
}

func NewOrderUseCase(
	catalog MenuCatalog,
	orders OrderService,
	publisher EventPublisher,
	calculator *pricing.Calculator,
	logger *zap.Logger,
	strictItemValidation bool,
) *OrderUseCase {
	return &OrderUseCase{
		catalog:    catalog,
		orders:     orders,
		publisher:  publisher,
		calculator: calculator,
		logger:     logger,
		strict:     strictItemValidation,
	}
}

// PlaceOrder resolves the requested ids and creates a pending order from
// the items that resolved. It fails when nothing resolves, and in strict
// mode when anything does not.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, customerName string, itemIDs []int) (*PlaceOrderResult, error) {
	uc.logger.Info("place order started", zap.String("customerName", customerName), zap.Int("itemCount", len(itemIDs)))

	resolved, unresolved, err := uc.catalog.ValidateIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	if len(resolved) == 0 {
		return nil, apperrors.NewValidationError("no valid menu items provided", apperrors.ValidationDetail{
			Field:   "itemIds",
			Message: "none of the requested items is available",
		})
	}

	if len(unresolved) > 0 {
		if uc.strict {
			return nil, apperrors.NewValidationError("some menu items are not available", apperrors.ValidationDetail{
				Field:   "itemIds",
				Message: fmt.Sprintf("unavailable item ids: %s", joinInts(unresolved)),
			})
		}
		uc.logger.Warn("dropping unresolved menu items", zap.Ints("unresolvedIds", unresolved))
	}

	order, err := uc.orders.Create(ctx, customerName, resolved)
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(EventOrderCreated, dto.FromOrder(*order))

	return &PlaceOrderResult{
		Order:         order,
		UnresolvedIDs: unresolved,
	}, nil
}

func (uc *OrderUseCase) ChangeStatus(ctx context.Context, id uint, status string) (*domain.Order, error) {
	next, err := parseStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := uc.orders.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(EventOrderStatusChanged, dto.FromOrder(*order))
	return order, nil
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	return uc.orders.Get(ctx, id)
}

// ListOrders filters by exact status and by a case-insensitive customer name
// substring. Empty arguments do not filter.
func (uc *OrderUseCase) ListOrders(ctx context.Context, status, customer string) ([]domain.Order, error) {
	var filter domain.OrderFilter

	if status != "" {
		st, err := parseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	filter.Customer = strings.TrimSpace(customer)

	return uc.orders.List(ctx, filter)
}

// GetBill prices a stored order with tax and service charge. The order's
// own total is left as placed.
func (uc *OrderUseCase) GetBill(ctx context.Context, id uint) (pricing.Bill, error) {
	order, err := uc.orders.Get(ctx, id)
	if err != nil {
		return pricing.Bill{}, err
	}
	return uc.calculator.Bill(order.TotalPrice), nil
}

func parseStatus(raw string) (domain.OrderStatus, error) {
	st, err := domain.ParseOrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		names := make([]string, 0, len(domain.OrderStatuses()))
		for _, s := range domain.OrderStatuses() {
			names = append(names, string(s))
		}
		return "", apperrors.NewValidationError("invalid status", apperrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("status must be one of %s", strings.Join(names, ", ")),
		})
	}
	return st, nil
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

package controller

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bistro/internal/config"
	"bistro/internal/domain"
	"bistro/internal/dto"
	apperrors "bistro/internal/errors"
	"bistro/internal/order/usecase"
	"bistro/internal/pricing"
	"bistro/internal/web"
)

type OrderUseCase interface {
	PlaceOrder(ctx context.Context, customerName string, itemIDs []int) (*usecase.PlaceOrderResult, error)
	ChangeStatus(ctx context.Context, id uint, status string) (*domain.Order, error)
	GetOrder(ctx context.Context, id uint) (*domain.Order, error)
	ListOrders(ctx context.Context, status, customer string) ([]domain.Order, error)
	GetBill(ctx context.Context, id uint) (pricing.Bill, error)
}

const orderCreatedMessage = "Order created successfully! Our chefs are preparing your meal..."

var statusMessages = map[domain.OrderStatus]string{
	domain.OrderStatusPending:   "Order is pending",
	domain.OrderStatusPreparing: "Our chefs are preparing your meal...",
	domain.OrderStatusReady:     "Your meal is ready for pickup!",
	domain.OrderStatusServed:    "Order completed. Thank you for dining with us!",
}

type OrderController struct {
	useCase OrderUseCase
	cfg     config.OrderConfig
	logger  *zap.Logger
}

func NewOrderController(useCase OrderUseCase, cfg config.OrderConfig, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}
}

func (c *OrderController) RegisterRoutes(r chi.Router) {
	r.Post("/", c.Create)
	r.Get("/", c.List)
	r.Get("/{id}", c.Get)
	r.Patch("/{id}/status", c.UpdateStatus)
	r.Get("/{id}/bill", c.Bill)
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if err := c.validateCreateOrderRequest(req); err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	result, err := c.useCase.PlaceOrder(r.Context(), req.CustomerName, req.ItemIDs)
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	resp := dto.FromOrder(*result.Order)
	resp.Message = orderCreatedMessage
	resp.UnresolvedItemIDs = result.UnresolvedIDs

	web.WriteData(w, r, http.StatusCreated, resp, c.logger)
}

func (c *OrderController) validateCreateOrderRequest(req dto.CreateOrderRequest) error {
	var details []apperrors.ValidationDetail

	if req.CustomerName == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "customerName",
			Message: "customerName is required",
		})
	} else if utf8.RuneCountInString(req.CustomerName) < c.cfg.MinCustomerNameLength {
		details = append(details, apperrors.ValidationDetail{
			Field:   "customerName",
			Message: fmt.Sprintf("customerName must be at least %d characters", c.cfg.MinCustomerNameLength),
		})
	} else if utf8.RuneCountInString(req.CustomerName) > c.cfg.MaxCustomerNameLength {
		details = append(details, apperrors.ValidationDetail{
			Field:   "customerName",
			Message: fmt.Sprintf("customerName must be at most %d characters", c.cfg.MaxCustomerNameLength),
		})
	}

	if len(req.ItemIDs) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "itemIds",
			Message: "itemIds must not be empty",
		})
	}

	if len(req.ItemIDs) > c.cfg.MaxItemsPerOrder {
		details = append(details, apperrors.ValidationDetail{
			Field:   "itemIds",
			Message: fmt.Sprintf("itemIds exceeds maximum of %d", c.cfg.MaxItemsPerOrder),
		})
	}

	for idx, id := range req.ItemIDs {
		if id <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "itemIds[" + strconv.Itoa(idx) + "]",
				Message: "each item id must be a positive integer",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

// List serves ?status= and ?customer= filtered listings, newest first.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	orders, err := c.useCase.ListOrders(r.Context(), q.Get("status"), q.Get("customer"))
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	web.WriteData(w, r, http.StatusOK, dto.FromOrders(orders), c.logger)
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	order, err := c.useCase.GetOrder(r.Context(), uint(id))
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	web.WriteData(w, r, http.StatusOK, dto.FromOrder(*order), c.logger)
}

func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	if strings.TrimSpace(req.Status) == "" {
		web.WriteError(w, r, apperrors.NewValidationError("status is required", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status is required",
		}), c.logger)
		return
	}

	order, err := c.useCase.ChangeStatus(r.Context(), uint(id), req.Status)
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	resp := dto.FromOrder(*order)
	resp.Message = statusMessages[order.Status]

	web.WriteData(w, r, http.StatusOK, resp, c.logger)
}

func (c *OrderController) Bill(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	bill, err := c.useCase.GetBill(r.Context(), uint(id))
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	web.WriteData(w, r, http.StatusOK, dto.FromBill(uint(id), bill), c.logger)
}

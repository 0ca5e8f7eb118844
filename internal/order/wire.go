package order

import (
	"database/sql"

	"go.uber.org/zap"

	"bistro/internal/config"
	"bistro/internal/order/controller"
	orderrepo "bistro/internal/order/repository"
	"bistro/internal/order/service"
	"bistro/internal/order/usecase"
	"bistro/internal/pricing"
)

func NewModule(
	db *sql.DB,
	catalog usecase.MenuCatalog,
	publisher usecase.EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *controller.OrderController {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	orderItemRepo := orderrepo.NewMySQLOrderItemRepository(db)

	orderSvc := service.NewOrderService(
		db,
		orderRepo,
		orderItemRepo,
		logger,
		cfg.Order.TxTimeout,
	)

	uc := usecase.NewOrderUseCase(
		catalog,
		orderSvc,
		publisher,
		pricing.NewCalculator(cfg.Pricing),
		logger,
		cfg.Order.StrictItemValidation,
	)

	return controller.NewOrderController(uc, cfg.Order, logger)
}

package stats

import (
	"database/sql"

	"go.uber.org/zap"

	"bistro/internal/stats/controller"
	"bistro/internal/stats/repository"
	"bistro/internal/stats/service"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.StatsController {
	repo := repository.NewMySQLStatsRepository(db)
	svc := service.NewStatsService(repo, logger)
	return controller.NewStatsController(svc, logger)
}

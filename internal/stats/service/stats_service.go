package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bistro/internal/domain"
	"bistro/internal/dto"
	apperrors "bistro/internal/errors"
)

type StatsRepository interface {
	CountMenuItems(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	SumRevenue(ctx context.Context) (int64, error)
	SumRevenueBetween(ctx context.Context, start, end time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
}

type StatsService struct {
	repo   StatsRepository
	logger *zap.Logger
}

func NewStatsService(repo StatsRepository, logger *zap.Logger) *StatsService {
	return &StatsService{
		repo:   repo,
		logger: logger,
	}
}

// GetStats runs the three aggregates concurrently. The first failure cancels
// the others.
func (s *StatsService) GetStats(ctx context.Context) (dto.StatsDTO, error) {
	var stats dto.StatsDTO

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalMenuItems, err = s.repo.CountMenuItems(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalOrders, err = s.repo.CountOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalRevenue, err = s.repo.SumRevenue(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to compute restaurant stats", zap.Error(err))
		return dto.StatsDTO{}, apperrors.NewInternalError("failed to compute stats", err)
	}

	return stats, nil
}

// GetOrderStatsByStatus reports every status, including those with no orders.
func (s *StatsService) GetOrderStatsByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count orders by status", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to count orders by status", err)
	}

	out := make(map[string]int64, len(domain.OrderStatuses()))
	for _, status := range domain.OrderStatuses() {
		out[string(status)] = counts[status]
	}
	return out, nil
}

func (s *StatsService) GetRevenueByPeriod(ctx context.Context, start, end time.Time) (dto.RevenueDTO, error) {
	if start.After(end) {
		return dto.RevenueDTO{}, apperrors.NewValidationError("invalid period", apperrors.ValidationDetail{
			Field:   "start",
			Message: "start must not be after end",
		})
	}

	revenue, err := s.repo.SumRevenueBetween(ctx, start, end)
	if err != nil {
		s.logger.Error("Failed to sum revenue",
			zap.Time("start", start),
			zap.Time("end", end),
			zap.Error(err),
		)
		return dto.RevenueDTO{}, apperrors.NewInternalError("failed to sum revenue", err)
	}

	return dto.RevenueDTO{
		Start:   start.UTC(),
		End:     end.UTC(),
		Revenue: revenue,
	}, nil
}

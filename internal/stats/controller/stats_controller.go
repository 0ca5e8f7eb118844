package controller

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bistro/internal/dto"
	apperrors "bistro/internal/errors"
	"bistro/internal/web"
)

const dateLayout = "2006-01-02"

type StatsService interface {
	GetStats(ctx context.Context) (dto.StatsDTO, error)
	GetOrderStatsByStatus(ctx context.Context) (map[string]int64, error)
	GetRevenueByPeriod(ctx context.Context, start, end time.Time) (dto.RevenueDTO, error)
}

type StatsController struct {
	service StatsService
	logger  *zap.Logger
}

func NewStatsController(service StatsService, logger *zap.Logger) *StatsController {
	return &StatsController{
		service: service,
		logger:  logger,
	}
}

func (c *StatsController) RegisterRoutes(r chi.Router) {
	r.Get("/", c.Summary)
	r.Get("/orders", c.OrdersByStatus)
	r.Get("/revenue", c.Revenue)
}

func (c *StatsController) Summary(w http.ResponseWriter, r *http.Request) {
	stats, err := c.service.GetStats(r.Context())
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}
	web.WriteData(w, r, http.StatusOK, stats, c.logger)
}

func (c *StatsController) OrdersByStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := c.service.GetOrderStatsByStatus(r.Context())
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}
	web.WriteData(w, r, http.StatusOK, counts, c.logger)
}

// Revenue serves ?start=&end=. Both accept RFC 3339 or YYYY-MM-DD; a bare
// end date covers that whole day.
func (c *StatsController) Revenue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var details []apperrors.ValidationDetail
	start, ok := parseBound(q.Get("start"), false)
	if !ok {
		details = append(details, boundDetail("start"))
	}
	end, ok := parseBound(q.Get("end"), true)
	if !ok {
		details = append(details, boundDetail("end"))
	}
	if len(details) > 0 {
		web.WriteError(w, r, apperrors.NewValidationError("invalid period", details...), c.logger)
		return
	}

	revenue, err := c.service.GetRevenueByPeriod(r.Context(), start, end)
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}
	web.WriteData(w, r, http.StatusOK, revenue, c.logger)
}

func parseBound(raw string, endOfDay bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Second)
	}
	return d, true
}

func boundDetail(field string) apperrors.ValidationDetail {
	return apperrors.ValidationDetail{
		Field:   field,
		Message: field + " is required as RFC 3339 or YYYY-MM-DD",
	}
}

package controller

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bistro/internal/domain"
	"bistro/internal/dto"
	apperrors "bistro/internal/errors"
	"bistro/internal/web"
)

type Catalog interface {
	ListAll(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error)
	GetByID(ctx context.Context, id int) (*domain.MenuItem, error)
	ListByCuisine(ctx context.Context, cuisine domain.Cuisine) ([]domain.MenuItem, error)
	IsAvailable(ctx context.Context, id int) (bool, error)
	SetAvailability(ctx context.Context, id int, available bool) (*domain.MenuItem, error)
	InitializeDefaults(ctx context.Context) ([]domain.MenuItem, error)
}

type MenuController struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewMenuController(catalog Catalog, logger *zap.Logger) *MenuController {
	return &MenuController{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes mounts the public menu endpoints.
func (c *MenuController) RegisterRoutes(r chi.Router) {
	r.Get("/", c.List)
	r.Get("/{id}", c.Get)
	r.Get("/{id}/availability", c.Availability)
}

// RegisterAdminRoutes mounts the catalog management endpoints.
func (c *MenuController) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", c.ListAll)
	r.Post("/init", c.Initialize)
	r.Patch("/{id}/availability", c.SetAvailability)
}

// List serves the available menu, optionally narrowed by ?cuisine=.
func (c *MenuController) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []domain.MenuItem
		err   error
	)

	if raw := strings.TrimSpace(r.URL.Query().Get("cuisine")); raw != "" {
		cuisine, perr := domain.ParseCuisine(strings.ToLower(raw))
		if perr != nil {
			web.WriteError(w, r, apperrors.NewValidationError("invalid cuisine", apperrors.ValidationDetail{
				Field:   "cuisine",
				Message: fmt.Sprintf("cuisine must be one of %s", cuisineList()),
			}), c.logger)
			return
		}
		items, err = c.catalog.ListByCuisine(r.Context(), cuisine)
	} else {
		items, err = c.catalog.ListAll(r.Context(), true)
	}

	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	web.WriteData(w, r, http.StatusOK, dto.FromMenuItems(items), c.logger)
}

func (c *MenuController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	item, err := c.catalog.GetByID(r.Context(), int(id))
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	web.WriteData(w, r, http.StatusOK, dto.FromMenuItem(*item), c.logger)
}

// Availability answers whether an item can be ordered right now. Unknown ids
// report false rather than 404.
func (c *MenuController) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	available, err := c.catalog.IsAvailable(r.Context(), int(id))
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	web.WriteData(w, r, http.StatusOK, dto.AvailabilityDTO{ID: int(id), Available: available}, c.logger)
}

// ListAll includes unavailable items.
func (c *MenuController) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := c.catalog.ListAll(r.Context(), false)
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	web.WriteData(w, r, http.StatusOK, dto.FromMenuItems(items), c.logger)
}

func (c *MenuController) Initialize(w http.ResponseWriter, r *http.Request) {
	items, err := c.catalog.InitializeDefaults(r.Context())
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	web.WriteData(w, r, http.StatusCreated, dto.InitializeMenuResponse{
		Created: len(items),
		Items:   dto.FromMenuItems(items),
	}, c.logger)
}

func (c *MenuController) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	var req dto.UpdateAvailabilityRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}
	if req.Available == nil {
		web.WriteError(w, r, apperrors.NewValidationError("available is required", apperrors.ValidationDetail{
			Field:   "available",
			Message: "available must be true or false",
		}), c.logger)
		return
	}

	item, err := c.catalog.SetAvailability(r.Context(), int(id), *req.Available)
	if err != nil {
		web.WriteError(w, r, err, c.logger)
		return
	}

	web.WriteData(w, r, http.StatusOK, dto.FromMenuItem(*item), c.logger)
}

func cuisineList() string {
	names := make([]string, 0, len(domain.Cuisines()))
	for _, c := range domain.Cuisines() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

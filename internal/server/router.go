package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"bistro/internal/config"
	"bistro/internal/web"
)

// RouteRegistrar mounts a controller's routes on a sub-router.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type AdminRouteRegistrar interface {
	RegisterAdminRoutes(r chi.Router)
}

type MenuRoutes interface {
	RouteRegistrar
	AdminRouteRegistrar
}

// Routes bundles everything the router mounts.
type Routes struct {
	Menu       MenuRoutes
	Orders     RouteRegistrar
	Stats      RouteRegistrar
	OrderBoard http.Handler
}

// NewRouter builds the HTTP handler. limiter may be nil to disable rate
// limiting.
func NewRouter(cfg config.ServerConfig, routes Routes, limiter *RateLimiter, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(TraceID)
	r.Use(AccessLog(logger))
	r.Use(Recoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", web.TraceIDHeader},
		ExposedHeaders:   []string{web.TraceIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		web.WriteData(w, r, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})

	// The order board is a long-lived connection and is not rate limited.
	if routes.OrderBoard != nil {
		r.Get("/ws/orders", routes.OrderBoard.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Route("/api/menu", routes.Menu.RegisterRoutes)
		r.Route("/api/orders", routes.Orders.RegisterRoutes)
		r.Route("/api/admin", func(r chi.Router) {
			r.Route("/menu", routes.Menu.RegisterAdminRoutes)
			r.Route("/stats", routes.Stats.RegisterRoutes)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		web.WriteStatusError(w, r, http.StatusNotFound, web.CodeNotFound, "route not found", logger)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		web.WriteStatusError(w, r, http.StatusMethodNotAllowed, web.CodeValidation, "method not allowed", logger)
	})

	return r
}

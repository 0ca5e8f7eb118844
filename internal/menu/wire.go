package menu

import (
	"database/sql"

	"go.uber.org/zap"

	"bistro/internal/config"
	"bistro/internal/menu/cache"
	"bistro/internal/menu/controller"
	"bistro/internal/menu/repository"
	"bistro/internal/menu/service"
)

type Module struct {
	// Catalog is the catalog other modules resolve menu items through. It is
	// the cached catalog when caching is enabled.
	Catalog    cache.Catalog
	Controller *controller.MenuController
}

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Module {
	repo := repository.NewMySQLMenuRepository(db)

	var catalog cache.Catalog = service.NewCatalogService(db, repo, logger)
	if cfg.Cache.Enabled {
		catalog = cache.NewCachedCatalog(catalog, cfg.Cache, logger)
	}

	return &Module{
		Catalog:    catalog,
		Controller: controller.NewMenuController(catalog, logger),
	}
}

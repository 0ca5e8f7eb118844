package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"bistro/internal/config"
	"bistro/internal/infrastructure/logger"
	"bistro/internal/infrastructure/mysql"
	"bistro/internal/menu"
	"bistro/internal/order"
	"bistro/internal/server"
	"bistro/internal/stats"
	"bistro/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if cfg.Database.AutoMigrate {
		if err := mysql.MigrateUp(db); err != nil {
			zapLogger.Fatal("running migrations", zap.Error(err))
		}
		zapLogger.Info("migrations applied")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(zapLogger)
	go hub.Run(ctx)

	menuModule := menu.NewModule(db, cfg, zapLogger)
	orderCtrl := order.NewModule(db, menuModule.Catalog, hub, cfg, zapLogger)
	statsCtrl := stats.NewModule(db, zapLogger)

	var limiter *server.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = server.NewRateLimiter(cfg.RateLimit, zapLogger)
		go limiter.Cleanup(ctx)
	}

	router := server.NewRouter(cfg.Server, server.Routes{
		Menu:       menuModule.Controller,
		Orders:     orderCtrl,
		Stats:      statsCtrl,
		OrderBoard: ws.NewHandler(hub, cfg.Server.CORSAllowedOrigins, zapLogger),
	}, limiter, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}

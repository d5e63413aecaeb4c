package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/stocklens/backend/internal/api"
	"github.com/stocklens/backend/internal/cache"
	"github.com/stocklens/backend/internal/config"
	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/repository"
	"github.com/stocklens/backend/internal/repository/memory"
	"github.com/stocklens/backend/internal/repository/postgres"
	"github.com/stocklens/backend/internal/service"
	"github.com/stocklens/backend/pkg/logger"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Mode == "debug" {
		logger.Setup("debug", true)
		gin.SetMode(gin.DebugMode)
	} else {
		logger.Setup("info", false)
		gin.SetMode(gin.ReleaseMode)
	}

	layerRepo, poRepo, orderRepo, returnRepo, cleanup, err := buildRepositories(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer cleanup()

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("report cache unavailable, running without it")
		reportCache = cache.NewNoopReportCache()
	}

	policy := costing.ShortfallPolicy{
		Mode:             costing.ParseShortfallMode(cfg.Costing.ShortfallMode),
		FallbackUnitCost: decimal.NewFromFloat(cfg.Costing.FallbackUnitCost),
	}
	engine := costing.NewEngine(layerRepo, policy)
	reporter := costing.NewReporter(engine)

	services := &api.Services{
		PurchaseOrders: service.NewPurchaseOrderService(poRepo, engine, reportCache),
		Orders:         service.NewOrderService(orderRepo, engine, reportCache),
		Returns:        service.NewReturnService(returnRepo, engine, reportCache),
		Reports:        service.NewReportService(reporter, poRepo, orderRepo, reportCache, cfg.App.ExportDir),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("store", cfg.App.Store).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Log.Info().Msg("server exiting")
}

func buildRepositories(cfg *config.Config) (costing.LayerRepository, repository.PurchaseOrderRepository, repository.OrderRepository, repository.ReturnRepository, func(), error) {
	if cfg.App.Store == "memory" {
		store := memory.NewStore()
		return store, store, store, store, func() {}, nil
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Log.Warn().Err(err).Msg("failed to close database")
		}
	}

	return postgres.NewLayerRepository(db),
		postgres.NewPurchaseOrderRepository(db),
		postgres.NewOrderRepository(db),
		postgres.NewReturnRepository(db),
		cleanup, nil
}

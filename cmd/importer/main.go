package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stocklens/backend/internal/cache"
	"github.com/stocklens/backend/internal/config"
	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/importer"
	"github.com/stocklens/backend/internal/repository/postgres"
	"github.com/stocklens/backend/internal/service"
	"github.com/stocklens/backend/pkg/logger"
)

// The importer runs as its own process so bulk CSV ingestion can be
// deployed and firewalled separately from the API server.
func main() {
	cfg := config.Load()
	logger.Setup("info", cfg.Server.Mode == "debug")

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("report cache unavailable, running without it")
		reportCache = cache.NewNoopReportCache()
	}

	engine := costing.NewEngine(postgres.NewLayerRepository(db), costing.ShortfallPolicy{})
	poService := service.NewPurchaseOrderService(postgres.NewPurchaseOrderRepository(db), engine, reportCache)
	importService := importer.NewService(poService)

	r := mux.NewRouter()
	importer.NewHandler(importService).RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Log.Info().Str("addr", addr).Msg("importer starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Log.Fatal().Err(err).Msg("importer server failed")
	}
}

package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	libdb "evdash/backend/libs/db"
	"evdash/backend/libs/middleware"
	"evdash/backend/libs/server"
	"evdash/backend/services/fleet-api/internal/clients"
	"evdash/backend/services/fleet-api/internal/config"
	"evdash/backend/services/fleet-api/internal/db"
	httpserver "evdash/backend/services/fleet-api/internal/http"
	"evdash/backend/services/fleet-api/internal/http/handlers"
	"evdash/backend/services/fleet-api/internal/metrics"
	"evdash/backend/services/fleet-api/internal/repository"
	"evdash/backend/services/fleet-api/internal/service"
	"evdash/backend/services/fleet-api/internal/sysinfo"
)

// App wires fleet-api dependencies.
type App struct {
	server *server.Server
	db     *sql.DB
	logger *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	database, err := db.NewPostgres(cfg.DB.DSN, libdb.PoolOptions{
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.EnsureSchema(ctx, database); err != nil {
			database.Close()
			return nil, err
		}
		logger.Info("fleet schema ensured")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	apiMetrics := metrics.NewAPI(registry)

	fleetService := service.NewFleetService(
		repository.NewChargePointRepository(database),
		repository.NewTransactionRepository(database),
	)
	predictionClient := clients.NewPredictionClient(cfg.ML.URL, clients.NewDefaultHTTPClient(cfg.ML.Timeout))

	fleetHandlers := handlers.NewFleetHandlers(fleetService, logger)
	predictionHandlers := handlers.NewPredictionHandlers(predictionClient, apiMetrics, logger)

	router := httpserver.NewRouter(httpserver.Routes{
		ChargePoints:     fleetHandlers.ChargePoints,
		Connectors:       fleetHandlers.Connectors,
		Transactions:     fleetHandlers.Transactions,
		Availability:     predictionHandlers.Availability,
		LoadOptimization: predictionHandlers.LoadOptimization,
		Passthrough:      predictionHandlers.Passthrough,
		SystemUsage:      handlers.NewSystemUsageHandler(sysinfo.NewSampler(cfg.System.CPUSampleInterval), logger),
		Health:           handlers.NewHealthHandler(),
		Metrics:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Instrument:       apiMetrics.Instrument,
	})
	srv := server.New(
		cfg.HTTPAddress(),
		router,
		server.Options{},
		logger,
		middleware.Standard(logger, cfg.HTTP.CORSOrigins)...,
	)

	return &App{
		server: srv,
		db:     database,
		logger: logger,
	}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}

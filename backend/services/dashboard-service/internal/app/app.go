package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"evdash/backend/libs/middleware"
	"evdash/backend/libs/server"
	"evdash/backend/services/dashboard-service/internal/clients"
	"evdash/backend/services/dashboard-service/internal/config"
	httpserver "evdash/backend/services/dashboard-service/internal/http"
	"evdash/backend/services/dashboard-service/internal/http/handlers"
	"evdash/backend/services/dashboard-service/internal/metrics"
	"evdash/backend/services/dashboard-service/internal/service"
	"evdash/backend/services/dashboard-service/internal/ws"
)

// App wires dashboard-service dependencies.
type App struct {
	server *server.Server
	poller *service.Poller
	hub    *ws.Hub
	logger *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dashboardMetrics := metrics.NewDashboard(registry)

	httpClient := clients.NewDefaultHTTPClient(cfg.FleetAPI.FetchTimeout)
	fleetClient := clients.NewFleetClient(cfg.FleetAPI.URL, httpClient, cfg.FleetAPI.FetchTimeout, logger)

	hub := ws.NewHub(cfg.WS.PingInterval, dashboardMetrics, logger)
	poller := service.NewPoller(fleetClient, hub, dashboardMetrics, service.PollerOptions{
		Interval:         cfg.Poller.Interval,
		TransactionLimit: cfg.Poller.TransactionLimit,
		ForecastHours:    cfg.Poller.ForecastHours,
	}, logger)
	hub.Broadcast(poller.State())

	dashboardHandlers := handlers.NewDashboardHandlers(poller, logger)
	wsServer := ws.NewServer(hub, cfg.WS.WriteTimeout, logger)

	router := httpserver.NewRouter(httpserver.Routes{
		State:   dashboardHandlers.State,
		Refresh: dashboardHandlers.Refresh,
		WS:      wsServer.HandleWS,
		Health:  handlers.NewHealthHandler(),
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	srv := server.New(
		cfg.HTTPAddress(),
		router,
		server.Options{},
		logger,
		middleware.Standard(logger, cfg.HTTP.CORSOrigins)...,
	)

	logger.Info("polling fleet api",
		zap.String("url", cfg.FleetAPI.URL),
		zap.Duration("interval", cfg.Poller.Interval),
		zap.Duration("fetch_timeout", cfg.FleetAPI.FetchTimeout),
	)

	return &App{
		server: srv,
		poller: poller,
		hub:    hub,
		logger: logger,
	}, nil
}

// Run starts the poller, the subscriber hub and the HTTP server.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Start(ctx)
	go a.poller.Run(ctx)
	return a.server.Run(ctx)
}

package app

import (
	"context"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"evdash/backend/libs/middleware"
	"evdash/backend/libs/server"
	libredis "evdash/backend/libs/redis"
	"evdash/backend/services/status-service/internal/config"
	httpserver "evdash/backend/services/status-service/internal/http"
	"evdash/backend/services/status-service/internal/http/handlers"
	"evdash/backend/services/status-service/internal/metrics"
	redisstore "evdash/backend/services/status-service/internal/redis"
	"evdash/backend/services/status-service/internal/service"
	"evdash/backend/services/status-service/internal/store"
)

// App wires status-service dependencies.
type App struct {
	server      *server.Server
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	statusMetrics := metrics.NewStatus(registry)

	var (
		redisClient *redis.Client
		publisher   service.Publisher
	)
	if cfg.RedisEnabled() {
		client, err := libredis.NewRedisClient(libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		redisClient = client
		p := redisstore.NewPublisher(client, cfg.Redis.Channel)
		publisher = p
		logger.Info("publishing status snapshots", zap.String("channel", p.Channel()))
	}

	snapshots := store.NewSnapshotStore()
	statusService := service.NewStatusService(snapshots, publisher, statusMetrics, logger)
	statusHandlers := handlers.NewStatusHandlers(statusService, logger)

	routes := httpserver.Routes{
		Ingest:  statusHandlers.Ingest,
		Query:   statusHandlers.Query,
		Health:  handlers.NewHealthHandler(),
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	if dir := strings.TrimSpace(cfg.Static.Dir); dir != "" {
		routes.Static = http.FileServer(http.Dir(dir))
	}

	router := httpserver.NewRouter(routes)
	srv := server.New(
		cfg.HTTPAddress(),
		router,
		server.Options{},
		logger,
		middleware.Standard(logger, cfg.HTTP.CORSOrigins)...,
	)

	return &App{
		server:      srv,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}

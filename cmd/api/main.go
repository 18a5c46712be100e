package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediafolio/catalog-backend/api/controllers"
	"github.com/mediafolio/catalog-backend/api/routes"
	"github.com/mediafolio/catalog-backend/internal/catalog"
	"github.com/mediafolio/catalog-backend/pkg/cache"
	"github.com/mediafolio/catalog-backend/pkg/config"
	"github.com/mediafolio/catalog-backend/pkg/db"
	"github.com/mediafolio/catalog-backend/pkg/logger"
	"github.com/mediafolio/catalog-backend/pkg/metrics"
	"github.com/mediafolio/catalog-backend/pkg/migrate"
	"github.com/mediafolio/catalog-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cacheMetrics := metrics.NewCacheMetrics(registry)

	cacheController, err := cache.NewController(cache.ControllerParams{
		Backend: redisClient,
		Config:  cfg.Cache,
		Logger:  logg,
		Metrics: cacheMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cache controller", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(
		catalog.NewRepository(dbClient),
		cacheController,
		cfg.Catalog,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	deps := map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisClient,
	}

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, deps, catalogService,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/nurseryinventory/pkg/app"
	"github.com/ghuser/nurseryinventory/pkg/cache"
	"github.com/ghuser/nurseryinventory/pkg/config"
	"github.com/ghuser/nurseryinventory/pkg/database"
	"github.com/ghuser/nurseryinventory/pkg/events"
	"github.com/ghuser/nurseryinventory/pkg/httpx"
	"github.com/ghuser/nurseryinventory/pkg/logger"
	"github.com/ghuser/nurseryinventory/pkg/telemetry"
	"github.com/ghuser/nurseryinventory/pkg/workflows"
	appsvcs "github.com/ghuser/nurseryinventory/services/inventory/application/services"
	"github.com/ghuser/nurseryinventory/services/inventory/application/subscribers"
	inventoryWorkflows "github.com/ghuser/nurseryinventory/services/inventory/application/workflows"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg, telemetry.RoleWorker)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg, telemetry.RoleWorker); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	appConfig := &app.Application{Config: cfg, Logger: log}

	if cfg.StoreDriver == config.StoreDriverMemory {
		// Nothing crosses process boundaries in memory mode; the worker only
		// sees events published by its own services.
		log.Warn("worker running against the in-memory document store")
		appConfig.EventBus = events.NewInMemoryEventBus(log)
	} else {
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer pool.Close()
		log.Info("database pool connected")
		appConfig.Db = pool

		eventBus, err := events.NewEventBus(pool.DB(), events.OptionsFromConfig(cfg), log)
		if err != nil {
			log.Error("failed to setup event bus", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		appConfig.EventBus = eventBus
	}
	// EventBus.Close() waits up to 30s for in-flight handlers.
	defer appConfig.EventBus.Close() //nolint:errcheck

	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
		appConfig.Redis = redisClient
	}

	svcs, err := appsvcs.New(appConfig)
	if err != nil {
		log.Error("failed to wire inventory services", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	var statsCache appsvcs.StatsCache
	if appConfig.Redis != nil {
		statsCache = cache.NewStatsCache(appConfig.Redis, cfg.StatsCacheTTL)
	}
	if err := subscribers.Register(ctx, appConfig.EventBus, svcs.Engine, statsCache, log); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	if cfg.TemporalHostPort != "" {
		temporalClient, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			log.Warn("temporal unavailable, repair workflows will not run here", "error", err)
		} else {
			defer temporalClient.Close()
			appConfig.TemporalClient = temporalClient
			w := temporalClient.NewWorker(cfg.TemporalTaskQueue)
			inventoryWorkflows.Register(w, svcs.Engine)
			if err := w.Start(); err != nil {
				log.Error("failed to start temporal worker", "error", err)
				os.Exit(1) //nolint:gocritic
			}
			defer w.Stop()
			log.Info("temporal worker started", "task_queue", cfg.TemporalTaskQueue)
		}
	}

	var ops *http.Server
	if cfg.WorkerHTTPPort > 0 {
		r := chi.NewRouter()
		r.Use(logger.Recovery(log))
		r.Get("/health", httpx.HealthHandler(appConfig.HealthChecks(svcs.Store)))
		r.Get("/metrics", metricsHandler.ServeHTTP)
		ops = httpx.NewServer(":"+strconv.Itoa(cfg.WorkerHTTPPort), r, 0)
		go func() {
			log.Info("worker ops listener started", "addr", ops.Addr)
			if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("worker ops listener failed", "error", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	if ops != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		if err := ops.Shutdown(shutdownCtx); err != nil {
			log.Error("worker ops listener shutdown", "error", err)
		}
		done()
	}
	cancel()
	log.Info("worker stopped")
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/nurseryinventory/docs/swagger"
	"github.com/ghuser/nurseryinventory/pkg/app"
	"github.com/ghuser/nurseryinventory/pkg/auth"
	"github.com/ghuser/nurseryinventory/pkg/cache"
	"github.com/ghuser/nurseryinventory/pkg/config"
	"github.com/ghuser/nurseryinventory/pkg/database"
	"github.com/ghuser/nurseryinventory/pkg/events"
	"github.com/ghuser/nurseryinventory/pkg/httpx"
	"github.com/ghuser/nurseryinventory/pkg/logger"
	"github.com/ghuser/nurseryinventory/pkg/telemetry"
	"github.com/ghuser/nurseryinventory/pkg/workflows"
	inventoryApi "github.com/ghuser/nurseryinventory/services/inventory/application/api"
)

// @title					Nursery Inventory API
// @version				1.0
// @description			Nursery, bed and cutting-batch inventory with rolled-up statistics.
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
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

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg, telemetry.RoleAPI)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
	if err := telemetry.SetupSentry(cfg, telemetry.RoleAPI); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	appConfig := &app.Application{Config: cfg, Logger: log}

	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("using the in-memory document store; data is lost on restart")
		appConfig.EventBus = events.NewInMemoryEventBus(log)
	} else {
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
		}
		defer pool.Close()
		log.Info("database pool connected")
		appConfig.Db = pool

		busOpts := events.OptionsFromConfig(cfg)
		busOpts.Forwarder = true
		eventBus, err := events.NewEventBus(pool.DB(), busOpts, log)
		if err != nil {
			log.Error("failed to setup event bus", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		if err := eventBus.StartForwarder(ctx); err != nil {
			log.Error("failed to start event forwarder", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		appConfig.EventBus = eventBus
	}
	defer appConfig.EventBus.Close() //nolint:errcheck

	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure
		}
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
		appConfig.Redis = redisClient
	} else {
		log.Warn("REDIS_URL empty; statistics cache disabled, sessions kept in cookies")
	}

	if cfg.TemporalHostPort != "" {
		temporalClient, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			log.Warn("temporal unavailable, repair workflows disabled", "error", err)
		} else {
			defer temporalClient.Close()
			appConfig.TemporalClient = temporalClient
		}
	}

	appConfig.SessionStore = newSessionStore(cfg, appConfig.Redis)

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimit:          cfg.HTTPRateLimit,
			BodyLimit:          cfg.HTTPBodyLimit,
			HandlerTimeout:     cfg.HTTPHandlerTimeout,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	apiRouter := chi.NewRouter()
	if cfg.RequireAuth {
		apiRouter.Use(auth.RequireAuth(appConfig.SessionStore, log))
	} else {
		apiRouter.Use(auth.LoadIdentity(appConfig.SessionStore, log))
	}
	svcs, err := inventoryApi.InventoryRoutes(apiRouter, appConfig)
	if err != nil {
		log.Error("failed to wire inventory services", "error", err)
		os.Exit(1)
	}
	r.Mount("/api", apiRouter)

	r.Get("/health", httpx.HealthHandler(appConfig.HealthChecks(svcs.Store)))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	srv := httpx.NewServer(":"+strconv.Itoa(cfg.HTTPPort), r, cfg.HTTPHandlerTimeout)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// newSessionStore keeps sessions in Redis when it is configured and falls back
// to encrypted cookies otherwise.
func newSessionStore(cfg *config.Config, redisClient *cache.RedisClient) sessions.Store {
	secure := cfg.Environment == config.EnvProduction
	if redisClient == nil {
		return auth.NewCookieStore([]byte(cfg.SessionAuthKey), []byte(cfg.SessionEncryptionKey), secure)
	}
	return auth.NewSessionStore(redisClient.Client(), []byte(cfg.SessionAuthKey), []byte(cfg.SessionEncryptionKey), secure)
}

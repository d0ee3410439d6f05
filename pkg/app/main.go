package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/nurseryinventory/pkg/cache"
	"github.com/ghuser/nurseryinventory/pkg/config"
	"github.com/ghuser/nurseryinventory/pkg/database"
	"github.com/ghuser/nurseryinventory/pkg/events"
	"github.com/ghuser/nurseryinventory/pkg/httpx"
	"github.com/ghuser/nurseryinventory/pkg/logger"
	"github.com/ghuser/nurseryinventory/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to InventoryRoutes during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler; use slog's context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "bed created", "nursery_id", nurseryID)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
//
// With STORE_DRIVER=memory, Db is nil and Redis, TemporalClient may be nil;
// consumers must treat those as disabled.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient
	SessionStore   sessions.Store // Redis or cookie backed; nil in worker process
}

// HealthChecks probes store plus whichever optional dependencies are wired.
// Nil fields stay nil interfaces so they report "disabled".
func (a *Application) HealthChecks(store httpx.HealthChecker) httpx.HealthChecks {
	checks := httpx.HealthChecks{Store: store}
	if a.EventBus != nil {
		checks.EventBus = a.EventBus
	}
	if a.Redis != nil {
		checks.Redis = a.Redis
	}
	if a.TemporalClient != nil {
		checks.Workflows = a.TemporalClient
	}
	return checks
}

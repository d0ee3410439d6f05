package services

import (
	"fmt"
	"time"

	"github.com/ghuser/nurseryinventory/pkg/app"
	"github.com/ghuser/nurseryinventory/pkg/auth"
	"github.com/ghuser/nurseryinventory/pkg/cache"
	"github.com/ghuser/nurseryinventory/pkg/logger"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
	"github.com/ghuser/nurseryinventory/services/inventory/infrastructure/geocoding"
	"github.com/ghuser/nurseryinventory/services/inventory/infrastructure/persistence"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Store     repositories.Store
	Engine    *AggregationEngine
	Deleter   *CascadeDeleter
	Nurseries *NurseryService
	Beds      *BedService
	Batches   *CuttingBatchService
}

// Deps are the collaborators of the inventory services. Only Store and
// Logger are required.
type Deps struct {
	Store        repositories.Store
	Publisher    EventPublisher
	Cache        StatsCache
	Geocoder     repositories.Geocoder
	Identity     repositories.IdentityProvider
	Logger       logger.Logger
	StoreTimeout time.Duration
}

// NewServices wires the inventory services over d.
func NewServices(d Deps) *Services {
	engine := NewAggregationEngine(d.Store, d.Publisher, d.Cache, d.Logger, d.StoreTimeout)
	beds := NewBedService(d.Store, engine, d.Identity, d.Logger, d.StoreTimeout)
	return &Services{
		Store:     d.Store,
		Engine:    engine,
		Deleter:   NewCascadeDeleter(d.Store, engine, d.Publisher, d.Cache, d.Logger, d.StoreTimeout),
		Nurseries: NewNurseryService(d.Store, beds, d.Cache, d.Geocoder, d.Identity, d.Logger, d.StoreTimeout),
		Beds:      beds,
		Batches:   NewCuttingBatchService(d.Store, engine, d.Identity, d.Logger, d.StoreTimeout),
	}
}

// New wires all inventory application services with infrastructure from the
// Application container.
func New(a *app.Application) (*Services, error) {
	cfg := a.Config
	store, err := persistence.Open(cfg, a.Db)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}

	d := Deps{
		Store:        store,
		Identity:     auth.ContextIdentity{},
		Logger:       a.Logger,
		StoreTimeout: cfg.StoreTimeout,
	}
	// Nil pointers must stay nil interfaces so the services see them as disabled.
	if a.EventBus != nil {
		d.Publisher = a.EventBus
	}
	if a.Redis != nil {
		d.Cache = cache.NewStatsCache(a.Redis, cfg.StatsCacheTTL)
	}
	if cfg.GeocoderURL != "" {
		d.Geocoder = geocoding.NewClient(cfg.GeocoderURL, cfg.ServiceName+"/"+cfg.ServiceVersion, cfg.GeocoderTimeout)
	}
	return NewServices(d), nil
}

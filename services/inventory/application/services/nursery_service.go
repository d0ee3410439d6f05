package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/nurseryinventory/pkg/logger"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/nurseryinventory/services/inventory/domain/services"
)

// NurseryOrderFields are the fields a nursery listing may be sorted by.
var NurseryOrderFields = []string{fieldID, fieldName, fieldCreatedAt}

// NurseryListOptions narrows NurseryService.List.
type NurseryListOptions struct {
	PublicOnly bool
	OrderBy    string
	Descending bool
	Limit      int
}

// NurseryService orchestrates the nursery records. Statistics are never
// written here; see AggregationEngine.
type NurseryService struct {
	store    repositories.Store
	beds     *BedService
	cache    StatsCache
	geocoder repositories.Geocoder
	identity repositories.IdentityProvider
	log      logger.Logger
	timeout  time.Duration
}

// NewNurseryService returns a NurseryService. beds, cache and geocoder may be nil.
func NewNurseryService(
	store repositories.Store,
	beds *BedService,
	cache StatsCache,
	geocoder repositories.Geocoder,
	identity repositories.IdentityProvider,
	log logger.Logger,
	timeout time.Duration,
) *NurseryService {
	return &NurseryService{
		store:    store,
		beds:     beds,
		cache:    cache,
		geocoder: geocoder,
		identity: identity,
		log:      log,
		timeout:  timeout,
	}
}

// Create validates and persists a nursery with zeroed statistics. Returns
// ErrAlreadyExists if the id is taken.
func (s *NurseryService) Create(ctx context.Context, in models.NewNurseryInput) (*models.Nursery, error) {
	if err := domainsvcs.ValidateNurseryInput(in); err != nil {
		return nil, invalid(err)
	}
	if in.Location.Kind == "" {
		in.Location = models.EmptyLocation()
	}
	in.Location = s.resolveAddress(ctx, in.Location)

	user := actor(ctx, s.identity)
	rec := nurseryToRecord(models.Nursery{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Location:    in.Location,
		Owner:       in.Owner,
		Config:      in.Config,
		Audit:       models.Audit{CreatedBy: user, UpdatedBy: user},
	})

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	var created models.Nursery
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if err := tx.Create(ctx, repositories.CollectionNurseries, in.ID, rec); err != nil {
			return err
		}
		stored, err := tx.Get(ctx, repositories.CollectionNurseries, in.ID)
		if err != nil {
			return err
		}
		created = recordToNursery(in.ID, stored)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create nursery %s: %w", in.ID, err)
	}

	s.log.InfoContext(ctx, "nursery created", "nursery_id", created.ID)
	return &created, nil
}

// Get returns the nursery or ErrNotFound.
func (s *NurseryService) Get(ctx context.Context, nurseryID string) (*models.Nursery, error) {
	if err := checkSlugs(nurseryID); err != nil {
		return nil, err
	}
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	rec, err := s.store.Get(ctx, repositories.CollectionNurseries, nurseryID)
	if err != nil {
		return nil, fmt.Errorf("get nursery %s: %w", nurseryID, err)
	}
	n := recordToNursery(nurseryID, rec)
	return &n, nil
}

// List returns nurseries ordered by opts.OrderBy (id by default).
func (s *NurseryService) List(ctx context.Context, opts NurseryListOptions) ([]models.Nursery, error) {
	var filters []repositories.Filter
	if opts.PublicOnly {
		filters = append(filters, repositories.Filter{Field: fieldPublic, Value: true})
	}
	q, err := listQuery(opts.OrderBy, NurseryOrderFields, opts.Descending, opts.Limit, filters...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	docs, err := s.store.List(ctx, repositories.CollectionNurseries, q)
	if err != nil {
		return nil, fmt.Errorf("list nurseries: %w", err)
	}
	out := make([]models.Nursery, len(docs))
	for i, d := range docs {
		out[i] = recordToNursery(d.ID, d.Data)
	}
	return out, nil
}

// Update merges patch into the nursery. A location replaces the whole
// variant. A rename refreshes the display names of the nursery's beds.
func (s *NurseryService) Update(ctx context.Context, nurseryID string, patch models.NurseryPatch) (*models.Nursery, error) {
	if err := checkSlugs(nurseryID); err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateNurseryPatch(patch); err != nil {
		return nil, invalid(err)
	}

	fields := repositories.Record{
		fieldUpdatedAt: repositories.ServerTimestamp,
		fieldUpdatedBy: actor(ctx, s.identity),
	}
	if patch.Name != nil {
		fields[fieldName] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Owner != nil {
		fields["owner"] = *patch.Owner
	}
	if patch.Config != nil {
		fields["configuration"] = configRecord(*patch.Config)
	}
	if patch.Location != nil {
		loc := *patch.Location
		if loc.Kind == "" {
			loc = models.EmptyLocation()
		}
		fields["location"] = locationRecord(s.resolveAddress(ctx, loc))
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	var before, after models.Nursery
	err := s.store.RunInTransaction(storeCtx, func(ctx context.Context, tx repositories.Tx) error {
		old, err := tx.Get(ctx, repositories.CollectionNurseries, nurseryID)
		if err != nil {
			return err
		}
		before = recordToNursery(nurseryID, old)
		if err := tx.Update(ctx, repositories.CollectionNurseries, nurseryID, fields); err != nil {
			return err
		}
		updated, err := tx.Get(ctx, repositories.CollectionNurseries, nurseryID)
		if err != nil {
			return err
		}
		after = recordToNursery(nurseryID, updated)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update nursery %s: %w", nurseryID, err)
	}

	if before.Name != after.Name && s.beds != nil {
		if _, err := s.beds.RefreshDisplayNames(ctx, nurseryID); err != nil {
			s.log.WarnContext(ctx, "failed to refresh bed display names after rename",
				"nursery_id", nurseryID, "error", err)
		}
	}
	return &after, nil
}

// Statistics returns the nursery's statistics block, read through the cache.
// A miss is filled with the stored block and its revision, so it never
// replaces an entry a newer recompute already wrote.
func (s *NurseryService) Statistics(ctx context.Context, nurseryID string) (models.NurseryStatistics, error) {
	if err := checkSlugs(nurseryID); err != nil {
		return models.NurseryStatistics{}, err
	}
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, nurseryID)
		if err == nil {
			return *cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "statistics cache read failed", "nursery_id", nurseryID, "error", err)
		}
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	rec, err := s.store.Get(storeCtx, repositories.CollectionNurseries, nurseryID)
	if err != nil {
		return models.NurseryStatistics{}, fmt.Errorf("get nursery %s: %w", nurseryID, err)
	}
	stats := recordNurseryStats(rec.Map(fieldStatistics))

	if s.cache != nil {
		if _, err := s.cache.Set(ctx, nurseryID, stats, int64(rec.Int(fieldStatsRevision))); err != nil {
			s.log.WarnContext(ctx, "statistics cache write failed", "nursery_id", nurseryID, "error", err)
		}
	}
	return stats, nil
}

// resolveAddress fills the address of a GPS location that has none. A failed
// lookup falls back to the coordinates themselves.
func (s *NurseryService) resolveAddress(ctx context.Context, loc models.Location) models.Location {
	if !loc.NeedsGeocoding() {
		return loc
	}
	if s.geocoder != nil {
		addr, err := s.geocoder.ReverseGeocode(ctx, loc.Lat, loc.Lng)
		if err == nil && addr != "" {
			loc.Address = addr
			return loc
		}
		s.log.WarnContext(ctx, "reverse geocoding failed, using coordinates", "error", err)
	}
	loc.Address = loc.CoordinatesLabel()
	return loc
}

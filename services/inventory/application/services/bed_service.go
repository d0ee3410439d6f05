package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ghuser/nurseryinventory/pkg/logger"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/nurseryinventory/services/inventory/domain/services"
)

// BedOrderFields are the fields a bed listing may be sorted by.
var BedOrderFields = []string{fieldID, fieldCreatedAt, fieldPlantCount, "plantingDate", fieldSpecies}

// BedListOptions narrows BedService.List. An empty State lists every bed.
type BedListOptions struct {
	State      models.BedState
	OrderBy    string
	Descending bool
	Limit      int
}

// BedService orchestrates the beds of a nursery.
type BedService struct {
	store    repositories.Store
	engine   *AggregationEngine
	identity repositories.IdentityProvider
	log      logger.Logger
	timeout  time.Duration
}

// NewBedService returns a BedService.
func NewBedService(store repositories.Store, engine *AggregationEngine, identity repositories.IdentityProvider, log logger.Logger, timeout time.Duration) *BedService {
	return &BedService{store: store, engine: engine, identity: identity, log: log, timeout: timeout}
}

// Create adds a bed with zeroed statistics under an existing nursery and
// recomputes the nursery. The display name is derived from the nursery name
// read in the same transaction.
func (s *BedService) Create(ctx context.Context, nurseryID string, in models.NewBedInput) (*models.Bed, error) {
	if err := checkSlugs(nurseryID); err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateBedInput(in); err != nil {
		return nil, invalid(err)
	}
	state, _ := models.ParseBedState(string(in.State))
	user := actor(ctx, s.identity)
	beds := repositories.BedsCollection(nurseryID)

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	var created models.Bed
	err := s.store.RunInTransaction(storeCtx, func(ctx context.Context, tx repositories.Tx) error {
		parent, err := tx.Get(ctx, repositories.CollectionNurseries, nurseryID)
		if err != nil {
			return fmt.Errorf("nursery %s: %w", nurseryID, err)
		}
		rec := bedToRecord(models.Bed{
			ID:                   in.ID,
			NurseryID:            nurseryID,
			DisplayName:          models.BedDisplayName(parent.String(fieldName), in.Species),
			Species:              in.Species,
			PlantCount:           in.PlantCount,
			Substrate:            in.Substrate,
			ContainerSize:        in.ContainerSize,
			ContainerUnit:        in.ContainerUnit,
			State:                state,
			PlantingDate:         in.PlantingDate,
			EstimatedHarvestDate: in.EstimatedHarvestDate,
			Audit:                models.Audit{CreatedBy: user, UpdatedBy: user},
		})
		if err := tx.Create(ctx, beds, in.ID, rec); err != nil {
			return err
		}
		stored, err := tx.Get(ctx, beds, in.ID)
		if err != nil {
			return err
		}
		created = recordToBed(in.ID, stored)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create bed %s/%s: %w", nurseryID, in.ID, err)
	}

	s.log.InfoContext(ctx, "bed created", "nursery_id", nurseryID, "bed_id", created.ID)
	s.engine.Reconcile(ctx, nurseryID, "")
	return &created, nil
}

// Get returns the bed or ErrNotFound.
func (s *BedService) Get(ctx context.Context, nurseryID, bedID string) (*models.Bed, error) {
	if err := checkSlugs(nurseryID, bedID); err != nil {
		return nil, err
	}
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	rec, err := s.store.Get(ctx, repositories.BedsCollection(nurseryID), bedID)
	if err != nil {
		return nil, fmt.Errorf("get bed %s/%s: %w", nurseryID, bedID, err)
	}
	b := recordToBed(bedID, rec)
	return &b, nil
}

// List returns the beds of a nursery. A nursery without beds, or one that
// does not exist, yields an empty list.
func (s *BedService) List(ctx context.Context, nurseryID string, opts BedListOptions) ([]models.Bed, error) {
	if err := checkSlugs(nurseryID); err != nil {
		return nil, err
	}
	var filters []repositories.Filter
	if opts.State != "" {
		if _, err := models.ParseBedState(string(opts.State)); err != nil {
			return nil, invalid(err)
		}
		filters = append(filters, repositories.Filter{Field: fieldState, Value: string(opts.State)})
	}
	q, err := listQuery(opts.OrderBy, BedOrderFields, opts.Descending, opts.Limit, filters...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	docs, err := s.store.List(ctx, repositories.BedsCollection(nurseryID), q)
	if err != nil {
		return nil, fmt.Errorf("list beds of %s: %w", nurseryID, err)
	}
	out := make([]models.Bed, len(docs))
	for i, d := range docs {
		out[i] = recordToBed(d.ID, d.Data)
	}
	return out, nil
}

// Update merges patch into the bed. A species change regenerates the display
// name from the current nursery name; a plant count change recomputes the
// nursery, since occupancy depends on it.
func (s *BedService) Update(ctx context.Context, nurseryID, bedID string, patch models.BedPatch) (*models.Bed, error) {
	if err := checkSlugs(nurseryID, bedID); err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateBedPatch(patch); err != nil {
		return nil, invalid(err)
	}

	fields := repositories.Record{
		fieldUpdatedAt: repositories.ServerTimestamp,
		fieldUpdatedBy: actor(ctx, s.identity),
	}
	if patch.Species != nil {
		fields[fieldSpecies] = *patch.Species
	}
	if patch.PlantCount != nil {
		fields[fieldPlantCount] = *patch.PlantCount
	}
	if patch.Substrate != nil {
		fields["substrate"] = *patch.Substrate
	}
	if patch.ContainerSize != nil {
		fields["containerSize"] = *patch.ContainerSize
	}
	if patch.ContainerUnit != nil {
		fields["containerUnit"] = *patch.ContainerUnit
	}
	if patch.State != nil {
		fields[fieldState] = string(*patch.State)
	}
	if patch.PlantingDate != nil {
		fields["plantingDate"] = *patch.PlantingDate
	}
	if patch.EstimatedHarvestDate != nil {
		fields["estimatedHarvestDate"] = *patch.EstimatedHarvestDate
	}

	beds := repositories.BedsCollection(nurseryID)
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	var before, after models.Bed
	err := s.store.RunInTransaction(storeCtx, func(ctx context.Context, tx repositories.Tx) error {
		old, err := tx.Get(ctx, beds, bedID)
		if err != nil {
			return err
		}
		before = recordToBed(bedID, old)

		if patch.Species != nil {
			parent, err := tx.Get(ctx, repositories.CollectionNurseries, nurseryID)
			if err != nil {
				return fmt.Errorf("nursery %s: %w", nurseryID, err)
			}
			fields[fieldDisplayName] = models.BedDisplayName(parent.String(fieldName), *patch.Species)
		}
		if err := tx.Update(ctx, beds, bedID, fields); err != nil {
			return err
		}
		updated, err := tx.Get(ctx, beds, bedID)
		if err != nil {
			return err
		}
		after = recordToBed(bedID, updated)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update bed %s/%s: %w", nurseryID, bedID, err)
	}

	if before.PlantCount != after.PlantCount {
		s.engine.Reconcile(ctx, nurseryID, "")
	}
	return &after, nil
}

// RefreshDisplayNames rewrites the display name of every bed in the nursery
// whose name is stale, all in one transaction. Returns how many beds changed.
func (s *BedService) RefreshDisplayNames(ctx context.Context, nurseryID string) (int, error) {
	if err := checkSlugs(nurseryID); err != nil {
		return 0, err
	}
	beds := repositories.BedsCollection(nurseryID)
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	var changed int
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		changed = 0
		parent, err := tx.Get(ctx, repositories.CollectionNurseries, nurseryID)
		if err != nil {
			return fmt.Errorf("nursery %s: %w", nurseryID, err)
		}
		docs, err := tx.List(ctx, beds, repositories.Query{})
		if err != nil {
			return err
		}
		for _, d := range docs {
			name := models.BedDisplayName(parent.String(fieldName), d.Data.String(fieldSpecies))
			if name == d.Data.String(fieldDisplayName) {
				continue
			}
			if err := tx.Update(ctx, beds, d.ID, repositories.Record{fieldDisplayName: name}); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("refresh display names of %s: %w", nurseryID, err)
	}
	s.log.DebugContext(ctx, "bed display names refreshed", "nursery_id", nurseryID, "changed", changed)
	return changed, nil
}

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

// BatchListOptions narrows CuttingBatchService.List. Batches are listed by
// event date, newest first unless Ascending is set.
type BatchListOptions struct {
	Ascending bool
	Limit     int
}

// CuttingBatchService orchestrates the cutting batches of a bed. Every
// mutation is followed by a best-effort bed then nursery reconcile.
type CuttingBatchService struct {
	store    repositories.Store
	engine   *AggregationEngine
	identity repositories.IdentityProvider
	log      logger.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewCuttingBatchService returns a CuttingBatchService.
func NewCuttingBatchService(store repositories.Store, engine *AggregationEngine, identity repositories.IdentityProvider, log logger.Logger, timeout time.Duration) *CuttingBatchService {
	return &CuttingBatchService{store: store, engine: engine, identity: identity, log: log, timeout: timeout, now: time.Now}
}

// Create records a batch under an existing bed. The id is a fresh ULID.
func (s *CuttingBatchService) Create(ctx context.Context, nurseryID, bedID string, in models.NewCuttingBatchInput) (*models.CuttingBatch, error) {
	if err := checkSlugs(nurseryID, bedID); err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateCuttingBatchInput(in); err != nil {
		return nil, invalid(err)
	}
	id, err := models.NewCuttingBatchID(s.now())
	if err != nil {
		return nil, err
	}
	user := actor(ctx, s.identity)
	batches := repositories.CuttingBatchesCollection(nurseryID, bedID)
	rec := batchToRecord(models.CuttingBatch{
		ID:          id,
		NurseryID:   nurseryID,
		BedID:       bedID,
		Date:        in.Date,
		Quantity:    in.Quantity,
		Quality:     in.Quality,
		Notes:       in.Notes,
		Responsible: in.Responsible,
		Audit:       models.Audit{CreatedBy: user, UpdatedBy: user},
	})

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	var created models.CuttingBatch
	err = s.store.RunInTransaction(storeCtx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := tx.Get(ctx, repositories.BedsCollection(nurseryID), bedID); err != nil {
			return fmt.Errorf("bed %s/%s: %w", nurseryID, bedID, err)
		}
		if err := tx.Create(ctx, batches, id, rec); err != nil {
			return err
		}
		stored, err := tx.Get(ctx, batches, id)
		if err != nil {
			return err
		}
		created = recordToBatch(id, stored)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create cutting batch: %w", err)
	}

	s.log.InfoContext(ctx, "cutting batch created",
		"nursery_id", nurseryID, "bed_id", bedID, "batch_id", id, "quantity", in.Quantity)
	s.engine.Reconcile(ctx, nurseryID, bedID)
	return &created, nil
}

// Get returns the batch or ErrNotFound.
func (s *CuttingBatchService) Get(ctx context.Context, nurseryID, bedID, batchID string) (*models.CuttingBatch, error) {
	if err := checkBatchPath(nurseryID, bedID, batchID); err != nil {
		return nil, err
	}
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	rec, err := s.store.Get(ctx, repositories.CuttingBatchesCollection(nurseryID, bedID), batchID)
	if err != nil {
		return nil, fmt.Errorf("get cutting batch %s: %w", batchID, err)
	}
	b := recordToBatch(batchID, rec)
	return &b, nil
}

// List returns the batches of a bed ordered by event date. A bed without
// batches, or one that does not exist, yields an empty list.
func (s *CuttingBatchService) List(ctx context.Context, nurseryID, bedID string, opts BatchListOptions) ([]models.CuttingBatch, error) {
	if err := checkSlugs(nurseryID, bedID); err != nil {
		return nil, err
	}
	if opts.Limit < 0 {
		return nil, invalid(fmt.Errorf("limit must not be negative"))
	}
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	docs, err := s.store.List(ctx, repositories.CuttingBatchesCollection(nurseryID, bedID), repositories.Query{
		OrderBy:    fieldDate,
		Descending: !opts.Ascending,
		Limit:      opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list cutting batches of %s/%s: %w", nurseryID, bedID, err)
	}
	out := make([]models.CuttingBatch, len(docs))
	for i, d := range docs {
		out[i] = recordToBatch(d.ID, d.Data)
	}
	return out, nil
}

// Update merges patch into the batch. A changed quantity or date reconciles
// the bed and nursery statistics.
func (s *CuttingBatchService) Update(ctx context.Context, nurseryID, bedID, batchID string, patch models.CuttingBatchPatch) (*models.CuttingBatch, error) {
	if err := checkBatchPath(nurseryID, bedID, batchID); err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateCuttingBatchPatch(patch); err != nil {
		return nil, invalid(err)
	}

	fields := repositories.Record{
		fieldUpdatedAt: repositories.ServerTimestamp,
		fieldUpdatedBy: actor(ctx, s.identity),
	}
	if patch.Date != nil {
		fields[fieldDate] = *patch.Date
	}
	if patch.Quantity != nil {
		fields[fieldQuantity] = *patch.Quantity
	}
	if patch.Quality != nil {
		fields["quality"] = string(*patch.Quality)
	}
	if patch.Notes != nil {
		fields["notes"] = *patch.Notes
	}
	if patch.Responsible != nil {
		fields["responsible"] = *patch.Responsible
	}

	batches := repositories.CuttingBatchesCollection(nurseryID, bedID)
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	var updated models.CuttingBatch
	err := s.store.RunInTransaction(storeCtx, func(ctx context.Context, tx repositories.Tx) error {
		if err := tx.Update(ctx, batches, batchID, fields); err != nil {
			return err
		}
		rec, err := tx.Get(ctx, batches, batchID)
		if err != nil {
			return err
		}
		updated = recordToBatch(batchID, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update cutting batch %s: %w", batchID, err)
	}

	if patch.AffectsStatistics() {
		s.engine.Reconcile(ctx, nurseryID, bedID)
	}
	return &updated, nil
}

// Delete removes the batch and reconciles the bed and nursery statistics.
// Returns ErrNotFound if the batch is absent.
func (s *CuttingBatchService) Delete(ctx context.Context, nurseryID, bedID, batchID string) error {
	if err := checkBatchPath(nurseryID, bedID, batchID); err != nil {
		return err
	}
	batches := repositories.CuttingBatchesCollection(nurseryID, bedID)
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	err := s.store.RunInTransaction(storeCtx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := tx.Get(ctx, batches, batchID); err != nil {
			return err
		}
		return tx.Delete(ctx, batches, batchID)
	})
	if err != nil {
		return fmt.Errorf("delete cutting batch %s: %w", batchID, err)
	}

	s.log.InfoContext(ctx, "cutting batch deleted", "nursery_id", nurseryID, "bed_id", bedID, "batch_id", batchID)
	s.engine.Reconcile(ctx, nurseryID, bedID)
	return nil
}

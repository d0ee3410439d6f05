package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/nurseryinventory/pkg/events"
	"github.com/ghuser/nurseryinventory/pkg/logger"
	"github.com/ghuser/nurseryinventory/pkg/telemetry"
	"github.com/ghuser/nurseryinventory/services/inventory/domain"
	inventoryevents "github.com/ghuser/nurseryinventory/services/inventory/domain/events"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/nurseryinventory/services/inventory/domain/services"
)

const (
	recomputeAttempts = 3
	recomputeBackoff  = 20 * time.Millisecond
)

// AggregationEngine recomputes the derived statistics of beds and nurseries
// from their children. It is the only writer of the statistics fields.
//
// Every recompute reads the children and writes the fold inside one store
// transaction, so a recompute racing a leaf write either sees that write or
// loses the commit with ErrConflict and is retried. Running a recompute twice
// with no intervening mutation writes identical statistics.
type AggregationEngine struct {
	store     repositories.Store
	publisher EventPublisher
	cache     StatsCache
	log       logger.Logger
	timeout   time.Duration
	now       func() time.Time
	inst      instruments
}

// NewAggregationEngine returns an engine over store. publisher and cache may
// be nil.
func NewAggregationEngine(store repositories.Store, publisher EventPublisher, cache StatsCache, log logger.Logger, timeout time.Duration) *AggregationEngine {
	return &AggregationEngine{
		store:     store,
		publisher: publisher,
		cache:     cache,
		log:       log,
		timeout:   timeout,
		now:       time.Now,
		inst:      newInstruments(),
	}
}

// RecomputeBedStats folds every cutting batch of the bed and writes the result
// to the bed's statistics field.
func (e *AggregationEngine) RecomputeBedStats(ctx context.Context, nurseryID, bedID string) (models.BedStatistics, error) {
	if err := checkSlugs(nurseryID, bedID); err != nil {
		return models.BedStatistics{}, err
	}
	ctx, span := e.inst.tracer.Start(ctx, "AggregationEngine.RecomputeBedStats", trace.WithAttributes(
		attribute.String("nursery.id", nurseryID),
		attribute.String("bed.id", bedID),
	))
	defer span.End()
	e.inst.recomputes.Add(ctx, 1, metric.WithAttributes(attribute.String("level", "bed")))

	ctx, cancel := storeContext(ctx, e.timeout)
	defer cancel()

	var stats models.BedStatistics
	err := e.retry(ctx, func() error {
		return e.store.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
			beds := repositories.BedsCollection(nurseryID)
			if _, err := tx.Get(ctx, beds, bedID); err != nil {
				return fmt.Errorf("bed %s/%s: %w", nurseryID, bedID, err)
			}
			docs, err := tx.List(ctx, repositories.CuttingBatchesCollection(nurseryID, bedID), repositories.Query{})
			if err != nil {
				return fmt.Errorf("list cutting batches: %w", err)
			}
			batches := make([]models.CuttingBatch, 0, len(docs))
			for _, d := range docs {
				batches = append(batches, recordToBatch(d.ID, d.Data))
			}
			stats = domainsvcs.FoldBedStatistics(batches)
			return tx.Update(ctx, beds, bedID, repositories.Record{fieldStatistics: bedStatsRecord(stats)})
		})
	})
	if err != nil {
		recordSpanError(span, err)
		return models.BedStatistics{}, fmt.Errorf("recompute bed stats: %w", err)
	}

	e.log.DebugContext(ctx, "bed statistics recomputed",
		"nursery_id", nurseryID,
		"bed_id", bedID,
		"total_cuts", stats.TotalCuts,
		"historical_total", stats.HistoricalTotal,
	)
	return stats, nil
}

// RecomputeNurseryStats folds every bed of the nursery and writes the result
// to the nursery's statistics field. Each write bumps the nursery's
// statistics revision; the cached read model is refreshed with it, so a
// recompute that commits first cannot overwrite a later one in the cache.
func (e *AggregationEngine) RecomputeNurseryStats(ctx context.Context, nurseryID string) (models.NurseryStatistics, error) {
	if err := checkSlugs(nurseryID); err != nil {
		return models.NurseryStatistics{}, err
	}
	ctx, span := e.inst.tracer.Start(ctx, "AggregationEngine.RecomputeNurseryStats", trace.WithAttributes(
		attribute.String("nursery.id", nurseryID),
	))
	defer span.End()
	e.inst.recomputes.Add(ctx, 1, metric.WithAttributes(attribute.String("level", "nursery")))

	ctx, cancel := storeContext(ctx, e.timeout)
	defer cancel()

	var (
		stats    models.NurseryStatistics
		revision int64
	)
	err := e.retry(ctx, func() error {
		return e.store.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
			current, err := tx.Get(ctx, repositories.CollectionNurseries, nurseryID)
			if err != nil {
				return fmt.Errorf("nursery %s: %w", nurseryID, err)
			}
			docs, err := tx.List(ctx, repositories.BedsCollection(nurseryID), repositories.Query{})
			if err != nil {
				return fmt.Errorf("list beds: %w", err)
			}
			beds := make([]models.Bed, 0, len(docs))
			for _, d := range docs {
				beds = append(beds, recordToBed(d.ID, d.Data))
			}
			stats = domainsvcs.FoldNurseryStatistics(beds)
			revision = int64(current.Int(fieldStatsRevision)) + 1
			return tx.Update(ctx, repositories.CollectionNurseries, nurseryID, repositories.Record{
				fieldStatistics:    nurseryStatsRecord(stats),
				fieldStatsRevision: revision,
			})
		})
	})
	if err != nil {
		recordSpanError(span, err)
		return models.NurseryStatistics{}, fmt.Errorf("recompute nursery stats: %w", err)
	}

	if e.cache != nil {
		if _, err := e.cache.Set(ctx, nurseryID, stats, revision); err != nil {
			e.log.WarnContext(ctx, "failed to refresh cached statistics", "nursery_id", nurseryID, "error", err)
		}
	}

	e.log.DebugContext(ctx, "nursery statistics recomputed",
		"nursery_id", nurseryID,
		"total_beds", stats.TotalBeds,
		"occupied_beds", stats.OccupiedBeds,
		"total_plants", stats.TotalPlants,
	)
	return stats, nil
}

// RecomputeAll recomputes every bed of the nursery and then the nursery
// itself. Used for bulk repair after drift or a failed reconcile.
func (e *AggregationEngine) RecomputeAll(ctx context.Context, nurseryID string) (models.NurseryStatistics, error) {
	if err := checkSlugs(nurseryID); err != nil {
		return models.NurseryStatistics{}, err
	}
	ctx, span := e.inst.tracer.Start(ctx, "AggregationEngine.RecomputeAll", trace.WithAttributes(
		attribute.String("nursery.id", nurseryID),
	))
	defer span.End()

	bedIDs, err := e.listIDs(ctx, repositories.BedsCollection(nurseryID))
	if err != nil {
		recordSpanError(span, err)
		return models.NurseryStatistics{}, fmt.Errorf("recompute all: list beds: %w", err)
	}
	for _, bedID := range bedIDs {
		// A bed deleted since the listing has nothing left to recompute.
		if _, err := e.RecomputeBedStats(ctx, nurseryID, bedID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			recordSpanError(span, err)
			return models.NurseryStatistics{}, fmt.Errorf("recompute all: %w", err)
		}
	}
	stats, err := e.RecomputeNurseryStats(ctx, nurseryID)
	if err != nil {
		recordSpanError(span, err)
		return models.NurseryStatistics{}, fmt.Errorf("recompute all: %w", err)
	}
	return stats, nil
}

// NurseryIDs lists every nursery id in ascending order.
func (e *AggregationEngine) NurseryIDs(ctx context.Context) ([]string, error) {
	ids, err := e.listIDs(ctx, repositories.CollectionNurseries)
	if err != nil {
		return nil, fmt.Errorf("list nurseries: %w", err)
	}
	return ids, nil
}

// Reconcile is the two-step pull run after a leaf mutation: the bed (when
// bedID is set) and then its nursery. It never fails the caller. On failure
// the statistics stay stale until a repair request, published here, is
// processed by the worker.
func (e *AggregationEngine) Reconcile(ctx context.Context, nurseryID, bedID string) {
	var err error
	if bedID != "" {
		_, err = e.RecomputeBedStats(ctx, nurseryID, bedID)
	}
	if err == nil {
		_, err = e.RecomputeNurseryStats(ctx, nurseryID)
	}
	if err == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	e.inst.failures.Add(ctx, 1)
	e.log.ErrorContext(ctx, "statistics reconcile failed; requesting repair",
		"nursery_id", nurseryID,
		"bed_id", bedID,
		"retryable", domain.IsRetryable(err),
		"error", err,
	)
	telemetry.CaptureError(ctx, err, "nursery_id", nurseryID, "bed_id", bedID)
	if pubErr := e.RequestRepair(ctx, nurseryID, bedID, err.Error()); pubErr != nil {
		e.log.ErrorContext(ctx, "failed to publish repair request", "nursery_id", nurseryID, "error", pubErr)
	}
}

// RequestRepair publishes a stats repair request for the nursery.
func (e *AggregationEngine) RequestRepair(ctx context.Context, nurseryID, bedID, reason string) error {
	if e.publisher == nil {
		return nil
	}
	evt := inventoryevents.NewStatsRepairRequested(nurseryID, bedID, reason, e.now())
	msg, err := events.NewJSONMessage(evt.EventID.String(), evt.Version, evt)
	if err != nil {
		return err
	}
	return e.publisher.Publish(ctx, inventoryevents.TopicStatsRepairRequested, msg)
}

// retry runs fn until it succeeds, fails with a non-conflict error, or the
// attempts are exhausted.
func (e *AggregationEngine) retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= recomputeAttempts; attempt++ {
		if err = fn(); err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if attempt == recomputeAttempts {
			break
		}
		e.log.DebugContext(ctx, "recompute lost a concurrent commit, retrying", "attempt", attempt)
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %w", domain.ErrTimeout, ctx.Err())
			}
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * recomputeBackoff):
		}
	}
	return err
}

func (e *AggregationEngine) listIDs(ctx context.Context, collection string) ([]string, error) {
	ctx, cancel := storeContext(ctx, e.timeout)
	defer cancel()
	docs, err := e.store.List(ctx, collection, repositories.Query{OrderBy: fieldID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

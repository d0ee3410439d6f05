package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/nurseryinventory/pkg/events"
	"github.com/ghuser/nurseryinventory/pkg/logger"
	inventoryevents "github.com/ghuser/nurseryinventory/services/inventory/domain/events"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
)

// deleteState names a step of a cascading delete.
type deleteState string

const (
	stateStart              deleteState = "start"
	stateVerifyExists       deleteState = "verify_exists"
	stateCollectDescendants deleteState = "collect_descendants"
	stateDeleteDescendants  deleteState = "delete_descendants_atomically"
	stateDeleteTarget       deleteState = "delete_target"
	stateDone               deleteState = "done"
	stateFailed             deleteState = "failed"
)

// docRef addresses one stored record.
type docRef struct {
	collection string
	id         string
}

// cascade walks a single delete through its states, logging each transition.
type cascade struct {
	log   logger.Logger
	state deleteState
}

func newCascade(log logger.Logger) *cascade {
	c := &cascade{log: log}
	c.enter(context.Background(), stateStart)
	return c
}

func (c *cascade) enter(ctx context.Context, next deleteState) {
	c.log.DebugContext(ctx, "cascade delete transition", "from", string(c.state), "to", string(next))
	c.state = next
}

// fail moves to the failed state and returns err annotated with the state it
// was raised in.
func (c *cascade) fail(ctx context.Context, err error) error {
	at := c.state
	c.enter(ctx, stateFailed)
	return fmt.Errorf("%s: %w", at, err)
}

// CascadeDeleter removes a nursery or bed together with every descendant in
// one store transaction. Either the whole subtree is gone or nothing changed.
type CascadeDeleter struct {
	store     repositories.Store
	engine    *AggregationEngine
	publisher EventPublisher
	cache     StatsCache
	log       logger.Logger
	timeout   time.Duration
	now       func() time.Time
	inst      instruments
}

// NewCascadeDeleter returns a coordinator over store. publisher and cache may
// be nil.
func NewCascadeDeleter(store repositories.Store, engine *AggregationEngine, publisher EventPublisher, cache StatsCache, log logger.Logger, timeout time.Duration) *CascadeDeleter {
	return &CascadeDeleter{
		store:     store,
		engine:    engine,
		publisher: publisher,
		cache:     cache,
		log:       log,
		timeout:   timeout,
		now:       time.Now,
		inst:      newInstruments(),
	}
}

// DeleteBed removes the bed and all its cutting batches, then recomputes the
// nursery statistics best-effort. Returns ErrNotFound if the bed is absent.
func (d *CascadeDeleter) DeleteBed(ctx context.Context, nurseryID, bedID string) error {
	if err := checkSlugs(nurseryID, bedID); err != nil {
		return err
	}
	ctx, span := d.inst.tracer.Start(ctx, "CascadeDeleter.DeleteBed", trace.WithAttributes(
		attribute.String("nursery.id", nurseryID),
		attribute.String("bed.id", bedID),
	))
	defer span.End()

	log := d.log.With("nursery_id", nurseryID, "bed_id", bedID)
	deleted, err := d.run(ctx, log, func(ctx context.Context, tx repositories.Tx, c *cascade) ([]docRef, error) {
		c.enter(ctx, stateVerifyExists)
		if _, err := tx.Get(ctx, repositories.BedsCollection(nurseryID), bedID); err != nil {
			return nil, fmt.Errorf("bed %s/%s: %w", nurseryID, bedID, err)
		}
		c.enter(ctx, stateCollectDescendants)
		refs, err := collectBatches(ctx, tx, nurseryID, bedID)
		if err != nil {
			return nil, err
		}
		return append(refs, docRef{repositories.BedsCollection(nurseryID), bedID}), nil
	})
	if err != nil {
		recordSpanError(span, err)
		return fmt.Errorf("delete bed: %w", err)
	}

	evt := inventoryevents.NewBedDeleted(nurseryID, bedID, deleted, d.now())
	d.afterCommit(ctx, log, nurseryID, inventoryevents.TopicBedDeleted, evt.EventID.String(), evt.Version, evt)
	if d.engine != nil {
		d.engine.Reconcile(ctx, nurseryID, "")
	}
	return nil
}

// DeleteNursery removes the nursery, its beds and all their cutting batches.
// Returns ErrNotFound if the nursery is absent.
func (d *CascadeDeleter) DeleteNursery(ctx context.Context, nurseryID string) error {
	if err := checkSlugs(nurseryID); err != nil {
		return err
	}
	ctx, span := d.inst.tracer.Start(ctx, "CascadeDeleter.DeleteNursery", trace.WithAttributes(
		attribute.String("nursery.id", nurseryID),
	))
	defer span.End()

	log := d.log.With("nursery_id", nurseryID)
	deleted, err := d.run(ctx, log, func(ctx context.Context, tx repositories.Tx, c *cascade) ([]docRef, error) {
		c.enter(ctx, stateVerifyExists)
		if _, err := tx.Get(ctx, repositories.CollectionNurseries, nurseryID); err != nil {
			return nil, fmt.Errorf("nursery %s: %w", nurseryID, err)
		}
		c.enter(ctx, stateCollectDescendants)
		beds, err := tx.List(ctx, repositories.BedsCollection(nurseryID), repositories.Query{})
		if err != nil {
			return nil, fmt.Errorf("list beds: %w", err)
		}
		var refs []docRef
		for _, bed := range beds {
			batches, err := collectBatches(ctx, tx, nurseryID, bed.ID)
			if err != nil {
				return nil, err
			}
			refs = append(refs, batches...)
		}
		for _, bed := range beds {
			refs = append(refs, docRef{repositories.BedsCollection(nurseryID), bed.ID})
		}
		return append(refs, docRef{repositories.CollectionNurseries, nurseryID}), nil
	})
	if err != nil {
		recordSpanError(span, err)
		return fmt.Errorf("delete nursery: %w", err)
	}

	evt := inventoryevents.NewNurseryDeleted(nurseryID, deleted, d.now())
	d.afterCommit(ctx, log, nurseryID, inventoryevents.TopicNurseryDeleted, evt.EventID.String(), evt.Version, evt)
	return nil
}

// run executes one cascade inside a transaction. collect returns every record
// to remove, descendants first and the target last.
func (d *CascadeDeleter) run(
	ctx context.Context,
	log logger.Logger,
	collect func(ctx context.Context, tx repositories.Tx, c *cascade) ([]docRef, error),
) (int, error) {
	ctx, cancel := storeContext(ctx, d.timeout)
	defer cancel()

	c := newCascade(log)
	var deleted int
	err := d.store.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		refs, err := collect(ctx, tx, c)
		if err != nil {
			return c.fail(ctx, err)
		}
		descendants, target := refs[:len(refs)-1], refs[len(refs)-1]

		c.enter(ctx, stateDeleteDescendants)
		for _, ref := range descendants {
			if err := tx.Delete(ctx, ref.collection, ref.id); err != nil {
				return c.fail(ctx, fmt.Errorf("delete %s/%s: %w", ref.collection, ref.id, err))
			}
		}
		c.enter(ctx, stateDeleteTarget)
		if err := tx.Delete(ctx, target.collection, target.id); err != nil {
			return c.fail(ctx, fmt.Errorf("delete %s/%s: %w", target.collection, target.id, err))
		}
		deleted = len(refs)
		return nil
	})
	if err != nil {
		// A commit failure surfaces after the last transition.
		if c.state != stateFailed {
			c.enter(ctx, stateFailed)
		}
		log.WarnContext(ctx, "cascade delete rolled back", "error", err)
		return 0, err
	}
	c.enter(ctx, stateDone)
	d.inst.cascadeRecords.Add(ctx, int64(deleted))
	log.InfoContext(ctx, "cascade delete committed", "deleted_records", deleted)
	return deleted, nil
}

// afterCommit publishes the delete notification and drops cached statistics.
// Neither step can undo the committed delete, so failures are only logged.
func (d *CascadeDeleter) afterCommit(ctx context.Context, log logger.Logger, nurseryID, topic, eventID string, version int, payload any) {
	if d.cache != nil {
		if err := d.cache.Delete(ctx, nurseryID); err != nil {
			log.WarnContext(ctx, "failed to evict cached statistics", "error", err)
		}
	}
	if d.publisher == nil {
		return
	}
	msg, err := events.NewJSONMessage(eventID, version, payload)
	if err == nil {
		err = d.publisher.Publish(ctx, topic, msg)
	}
	if err != nil {
		log.ErrorContext(ctx, "failed to publish delete notification", "topic", topic, "error", err)
	}
}

func collectBatches(ctx context.Context, tx repositories.Tx, nurseryID, bedID string) ([]docRef, error) {
	collection := repositories.CuttingBatchesCollection(nurseryID, bedID)
	docs, err := tx.List(ctx, collection, repositories.Query{})
	if err != nil {
		return nil, fmt.Errorf("list cutting batches of %s: %w", bedID, err)
	}
	refs := make([]docRef, len(docs))
	for i, doc := range docs {
		refs[i] = docRef{collection, doc.ID}
	}
	return refs, nil
}

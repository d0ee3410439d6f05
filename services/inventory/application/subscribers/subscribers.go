// Package subscribers consumes the inventory events in the worker process.
package subscribers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	pkgevents "github.com/ghuser/nurseryinventory/pkg/events"
	"github.com/ghuser/nurseryinventory/pkg/logger"
	appsvcs "github.com/ghuser/nurseryinventory/services/inventory/application/services"
	"github.com/ghuser/nurseryinventory/services/inventory/domain"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/events"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
)

// Subscriber is the slice of the event bus the worker consumes from.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error)
}

// Recomputer rebuilds a nursery's statistics.
type Recomputer interface {
	RecomputeAll(ctx context.Context, nurseryID string) (models.NurseryStatistics, error)
}

// Register subscribes the inventory handlers. cache may be nil.
func Register(ctx context.Context, bus Subscriber, engine Recomputer, cache appsvcs.StatsCache, log logger.Logger) error {
	handlers := map[string]func(context.Context, *message.Message) error{
		events.TopicStatsRepairRequested: HandleStatsRepairRequested(engine, log),
		events.TopicNurseryDeleted:       HandleNurseryDeleted(cache, log),
		events.TopicBedDeleted:           HandleBedDeleted(cache, log),
	}
	topics := make([]string, 0, len(handlers))
	for topic, h := range handlers {
		errCh, err := bus.Subscribe(ctx, topic, h)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go drain(ctx, log, topic, errCh)
		topics = append(topics, topic)
	}
	log.Info("event subscribers registered", "topics", topics)
	return nil
}

// drain logs subscriber errors so the channel never blocks.
func drain(ctx context.Context, log logger.Logger, topic string, errCh <-chan error) {
	for err := range errCh {
		log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
	}
}

// HandleStatsRepairRequested recomputes the nursery named in the event.
// Returning an error makes the bus redeliver; a nursery deleted in the
// meantime is acknowledged and an undecodable payload is reported as
// permanent.
func HandleStatsRepairRequested(engine Recomputer, log logger.Logger) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt events.StatsRepairRequestedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return pkgevents.Permanent(fmt.Errorf("decode %s: %w", msg.UUID, err))
		}
		stats, err := engine.RecomputeAll(ctx, evt.NurseryID)
		if errors.Is(err, domain.ErrNotFound) {
			log.InfoContext(ctx, "repair skipped, nursery gone", "nursery_id", evt.NurseryID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("repair nursery %s: %w", evt.NurseryID, err)
		}
		log.InfoContext(ctx, "nursery statistics repaired",
			"nursery_id", evt.NurseryID, "reason", evt.Reason, "total_beds", stats.TotalBeds)
		return nil
	}
}

// HandleNurseryDeleted evicts the cached statistics of a deleted nursery.
func HandleNurseryDeleted(cache appsvcs.StatsCache, log logger.Logger) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt events.NurseryDeletedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return pkgevents.Permanent(fmt.Errorf("decode %s: %w", msg.UUID, err))
		}
		evict(ctx, cache, log, evt.NurseryID)
		return nil
	}
}

// HandleBedDeleted evicts the parent nursery's cached statistics; the next
// read repopulates them from the store.
func HandleBedDeleted(cache appsvcs.StatsCache, log logger.Logger) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt events.BedDeletedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return pkgevents.Permanent(fmt.Errorf("decode %s: %w", msg.UUID, err))
		}
		evict(ctx, cache, log, evt.NurseryID)
		return nil
	}
}

// evict is best-effort: the cache entry expires on its own.
func evict(ctx context.Context, cache appsvcs.StatsCache, log logger.Logger, nurseryID string) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, nurseryID); err != nil {
		log.WarnContext(ctx, "statistics cache eviction failed", "nursery_id", nurseryID, "error", err)
		return
	}
	log.DebugContext(ctx, "statistics cache evicted", "nursery_id", nurseryID)
}

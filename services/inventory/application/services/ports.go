package services

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
)

// EventPublisher is the slice of the event bus the inventory services publish
// through. *events.EventBus satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// StatsCache is the statistics read model. *cache.StatsCache satisfies it; a
// miss is reported as an error. Set keeps an entry already holding revision
// or a newer one.
type StatsCache interface {
	Get(ctx context.Context, nurseryID string) (*models.NurseryStatistics, error)
	Set(ctx context.Context, nurseryID string, stats models.NurseryStatistics, revision int64) (bool, error)
	Delete(ctx context.Context, nurseryID string) error
}

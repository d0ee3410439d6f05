package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the inventory context.
const (
	// TopicStatsRepairRequested is published when a best-effort reconcile
	// after a leaf mutation failed and the nursery's statistics may be stale.
	TopicStatsRepairRequested = "inventory.stats_repair_requested"

	// TopicNurseryDeleted is published after a nursery cascade delete commits.
	TopicNurseryDeleted = "inventory.nursery_deleted"

	// TopicBedDeleted is published after a bed cascade delete commits.
	TopicBedDeleted = "inventory.bed_deleted"
)

// StatsRepairRequestedEvent asks the worker to run a full recompute of a
// nursery. Recomputation is idempotent, so duplicate deliveries are harmless.
type StatsRepairRequestedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	NurseryID  string    `json:"nursery_id"`
	BedID      string    `json:"bed_id,omitempty"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NurseryDeletedEvent is published after a nursery and all its descendants
// were removed.
type NurseryDeletedEvent struct {
	EventID        uuid.UUID `json:"event_id"`
	Version        int       `json:"version"`
	NurseryID      string    `json:"nursery_id"`
	DeletedRecords int       `json:"deleted_records"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// BedDeletedEvent is published after a bed and its cutting batches were removed.
type BedDeletedEvent struct {
	EventID        uuid.UUID `json:"event_id"`
	Version        int       `json:"version"`
	NurseryID      string    `json:"nursery_id"`
	BedID          string    `json:"bed_id"`
	DeletedRecords int       `json:"deleted_records"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// currentVersion is the schema version stamped on newly built events.
const currentVersion = 1

// NewStatsRepairRequested builds a repair request for nurseryID. bedID names
// the bed whose mutation triggered it and may be empty.
func NewStatsRepairRequested(nurseryID, bedID, reason string, at time.Time) StatsRepairRequestedEvent {
	return StatsRepairRequestedEvent{
		EventID:    uuid.New(),
		Version:    currentVersion,
		NurseryID:  nurseryID,
		BedID:      bedID,
		Reason:     reason,
		OccurredAt: at.UTC(),
	}
}

// NewNurseryDeleted builds the notification for a committed nursery delete.
func NewNurseryDeleted(nurseryID string, deleted int, at time.Time) NurseryDeletedEvent {
	return NurseryDeletedEvent{
		EventID:        uuid.New(),
		Version:        currentVersion,
		NurseryID:      nurseryID,
		DeletedRecords: deleted,
		OccurredAt:     at.UTC(),
	}
}

// NewBedDeleted builds the notification for a committed bed delete.
func NewBedDeleted(nurseryID, bedID string, deleted int, at time.Time) BedDeletedEvent {
	return BedDeletedEvent{
		EventID:        uuid.New(),
		Version:        currentVersion,
		NurseryID:      nurseryID,
		BedID:          bedID,
		DeletedRecords: deleted,
		OccurredAt:     at.UTC(),
	}
}

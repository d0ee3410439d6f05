package models

import (
	"fmt"
	"strings"
	"time"
)

// BedState is the lifecycle state of a bed.
type BedState string

const (
	BedStateActive   BedState = "active"
	BedStateInactive BedState = "inactive"
	BedStateOther    BedState = "other"
)

// ParseBedState validates s. An empty string defaults to active.
func ParseBedState(s string) (BedState, error) {
	switch BedState(s) {
	case "":
		return BedStateActive, nil
	case BedStateActive, BedStateInactive, BedStateOther:
		return BedState(s), nil
	default:
		return "", fmt.Errorf("unknown bed state %q", s)
	}
}

// BedStatistics is derived from the bed's cutting batches. Only the
// aggregation engine writes it. LastCutAt is nil when the bed has no batches.
type BedStatistics struct {
	HistoricalTotal int
	TotalCuts       int
	LastCutAt       *time.Time
}

// Bed is a planting unit inside a nursery. It owns its cutting batches.
type Bed struct {
	ID                   string
	NurseryID            string
	DisplayName          string
	Species              string
	PlantCount           int
	Substrate            string
	ContainerSize        float64
	ContainerUnit        string
	State                BedState
	PlantingDate         *time.Time
	EstimatedHarvestDate *time.Time
	Statistics           BedStatistics
	Audit
}

// NewBedInput carries the caller-authored fields of a bed.
type NewBedInput struct {
	ID                   string
	Species              string
	PlantCount           int
	Substrate            string
	ContainerSize        float64
	ContainerUnit        string
	State                BedState
	PlantingDate         *time.Time
	EstimatedHarvestDate *time.Time
}

// BedPatch is a partial update. Nil fields are left untouched.
type BedPatch struct {
	Species              *string
	PlantCount           *int
	Substrate            *string
	ContainerSize        *float64
	ContainerUnit        *string
	State                *BedState
	PlantingDate         *time.Time
	EstimatedHarvestDate *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p BedPatch) IsEmpty() bool {
	return p.Species == nil && p.PlantCount == nil && p.Substrate == nil &&
		p.ContainerSize == nil && p.ContainerUnit == nil && p.State == nil &&
		p.PlantingDate == nil && p.EstimatedHarvestDate == nil
}

// BedDisplayName builds the denormalized label shown for a bed.
func BedDisplayName(nurseryName, species string) string {
	nurseryName = strings.TrimSpace(nurseryName)
	species = strings.TrimSpace(species)
	switch {
	case species == "":
		return nurseryName
	case nurseryName == "":
		return species
	default:
		return nurseryName + " · " + species
	}
}

package models

import "time"

// Audit holds the creation and last-modification stamps shared by every record.
// CreatedAt and CreatedBy are immutable after create.
type Audit struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// NurseryConfig is the closed set of per-nursery feature flags.
type NurseryConfig struct {
	PublicVisible   bool
	PublicQREnabled bool
}

// NurseryStatistics is derived from the nursery's beds. Only the aggregation
// engine writes it.
type NurseryStatistics struct {
	TotalBeds       int
	OccupiedBeds    int
	FreeBeds        int
	TotalPlants     int
	HistoricalTotal int
}

// Nursery is the top-level facility record. It owns its beds.
type Nursery struct {
	ID          string
	Name        string
	Description string
	Location    Location
	Owner       string
	Config      NurseryConfig
	Statistics  NurseryStatistics
	Audit
}

// NewNurseryInput carries the caller-authored fields of a nursery.
type NewNurseryInput struct {
	ID          string
	Name        string
	Description string
	Location    Location
	Owner       string
	Config      NurseryConfig
}

// NurseryPatch is a partial update. Nil fields are left untouched. The type
// has no id, audit-creation or statistics fields, so those cannot be written
// through it.
type NurseryPatch struct {
	Name        *string
	Description *string
	Location    *Location
	Owner       *string
	Config      *NurseryConfig
}

// IsEmpty reports whether the patch changes nothing.
func (p NurseryPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Location == nil && p.Owner == nil && p.Config == nil
}

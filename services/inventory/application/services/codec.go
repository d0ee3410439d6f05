package services

import (
	"time"

	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
)

// Stored field names. Audit and identity keys are shared by every level.
const (
	fieldID          = "id"
	fieldNurseryID   = "nurseryId"
	fieldBedID       = "bedId"
	fieldStatistics  = "statistics"
	fieldCreatedAt   = "createdAt"
	fieldUpdatedAt   = "updatedAt"
	fieldCreatedBy   = "createdBy"
	fieldUpdatedBy   = "updatedBy"
	fieldName        = "name"
	fieldSpecies     = "species"
	fieldPlantCount  = "plantCount"
	fieldState       = "state"
	fieldDisplayName = "displayName"
	fieldDate        = "date"
	fieldQuantity    = "quantity"
	fieldPublic      = "configuration.publicVisible"

	// fieldStatsRevision counts the committed statistics writes of a
	// nursery. The cache orders its entries by it.
	fieldStatsRevision = "statisticsRevision"
)

func auditRecord(rec repositories.Record, a models.Audit) {
	rec[fieldCreatedAt] = timeValue(a.CreatedAt)
	rec[fieldUpdatedAt] = timeValue(a.UpdatedAt)
	rec[fieldCreatedBy] = a.CreatedBy
	rec[fieldUpdatedBy] = a.UpdatedBy
}

// timeValue maps a zero time to ServerTimestamp so the store stamps it.
func timeValue(t time.Time) any {
	if t.IsZero() {
		return repositories.ServerTimestamp
	}
	return t
}

func recordAudit(rec repositories.Record) models.Audit {
	return models.Audit{
		CreatedAt: rec.Time(fieldCreatedAt),
		UpdatedAt: rec.Time(fieldUpdatedAt),
		CreatedBy: rec.String(fieldCreatedBy),
		UpdatedBy: rec.String(fieldUpdatedBy),
	}
}

func locationRecord(l models.Location) repositories.Record {
	kind := l.Kind
	if kind == "" {
		kind = models.LocationEmpty
	}
	rec := repositories.Record{"kind": string(kind)}
	switch kind {
	case models.LocationManual:
		rec["address"] = l.Address
	case models.LocationGPS:
		rec["lat"] = l.Lat
		rec["lng"] = l.Lng
		if l.Address != "" {
			rec["address"] = l.Address
		}
	}
	return rec
}

func recordLocation(rec repositories.Record) models.Location {
	switch models.LocationKind(rec.String("kind")) {
	case models.LocationManual:
		return models.Location{Kind: models.LocationManual, Address: rec.String("address")}
	case models.LocationGPS:
		return models.Location{
			Kind:    models.LocationGPS,
			Lat:     rec.Float("lat"),
			Lng:     rec.Float("lng"),
			Address: rec.String("address"),
		}
	default:
		return models.EmptyLocation()
	}
}

func configRecord(c models.NurseryConfig) repositories.Record {
	return repositories.Record{
		"publicVisible":   c.PublicVisible,
		"publicQREnabled": c.PublicQREnabled,
	}
}

func nurseryStatsRecord(s models.NurseryStatistics) repositories.Record {
	return repositories.Record{
		"totalBeds":       s.TotalBeds,
		"occupiedBeds":    s.OccupiedBeds,
		"freeBeds":        s.FreeBeds,
		"totalPlants":     s.TotalPlants,
		"historicalTotal": s.HistoricalTotal,
	}
}

func recordNurseryStats(rec repositories.Record) models.NurseryStatistics {
	return models.NurseryStatistics{
		TotalBeds:       rec.Int("totalBeds"),
		OccupiedBeds:    rec.Int("occupiedBeds"),
		FreeBeds:        rec.Int("freeBeds"),
		TotalPlants:     rec.Int("totalPlants"),
		HistoricalTotal: rec.Int("historicalTotal"),
	}
}

func nurseryToRecord(n models.Nursery) repositories.Record {
	rec := repositories.Record{
		fieldID:         n.ID,
		fieldName:       n.Name,
		"description":   n.Description,
		"location":      locationRecord(n.Location),
		"owner":         n.Owner,
		"configuration": configRecord(n.Config),
		fieldStatistics: nurseryStatsRecord(n.Statistics),
	}
	auditRecord(rec, n.Audit)
	return rec
}

func recordToNursery(id string, rec repositories.Record) models.Nursery {
	cfg := rec.Map("configuration")
	return models.Nursery{
		ID:          id,
		Name:        rec.String(fieldName),
		Description: rec.String("description"),
		Location:    recordLocation(rec.Map("location")),
		Owner:       rec.String("owner"),
		Config: models.NurseryConfig{
			PublicVisible:   cfg.Bool("publicVisible"),
			PublicQREnabled: cfg.Bool("publicQREnabled"),
		},
		Statistics: recordNurseryStats(rec.Map(fieldStatistics)),
		Audit:      recordAudit(rec),
	}
}

func bedStatsRecord(s models.BedStatistics) repositories.Record {
	rec := repositories.Record{
		"historicalTotal": s.HistoricalTotal,
		"totalCuts":       s.TotalCuts,
	}
	if s.LastCutAt != nil {
		rec["lastCutAt"] = *s.LastCutAt
	}
	return rec
}

func recordBedStats(rec repositories.Record) models.BedStatistics {
	return models.BedStatistics{
		HistoricalTotal: rec.Int("historicalTotal"),
		TotalCuts:       rec.Int("totalCuts"),
		LastCutAt:       rec.TimePtr("lastCutAt"),
	}
}

func bedToRecord(b models.Bed) repositories.Record {
	rec := repositories.Record{
		fieldID:                b.ID,
		fieldNurseryID:         b.NurseryID,
		fieldDisplayName:       b.DisplayName,
		fieldSpecies:           b.Species,
		fieldPlantCount:        b.PlantCount,
		"substrate":            b.Substrate,
		"containerSize":        b.ContainerSize,
		"containerUnit":        b.ContainerUnit,
		fieldState:             string(b.State),
		"plantingDate":         b.PlantingDate,
		"estimatedHarvestDate": b.EstimatedHarvestDate,
		fieldStatistics:        bedStatsRecord(b.Statistics),
	}
	auditRecord(rec, b.Audit)
	return rec
}

func recordToBed(id string, rec repositories.Record) models.Bed {
	return models.Bed{
		ID:                   id,
		NurseryID:            rec.String(fieldNurseryID),
		DisplayName:          rec.String(fieldDisplayName),
		Species:              rec.String(fieldSpecies),
		PlantCount:           rec.Int(fieldPlantCount),
		Substrate:            rec.String("substrate"),
		ContainerSize:        rec.Float("containerSize"),
		ContainerUnit:        rec.String("containerUnit"),
		State:                models.BedState(rec.String(fieldState)),
		PlantingDate:         rec.TimePtr("plantingDate"),
		EstimatedHarvestDate: rec.TimePtr("estimatedHarvestDate"),
		Statistics:           recordBedStats(rec.Map(fieldStatistics)),
		Audit:                recordAudit(rec),
	}
}

func batchToRecord(b models.CuttingBatch) repositories.Record {
	rec := repositories.Record{
		fieldID:        b.ID,
		fieldNurseryID: b.NurseryID,
		fieldBedID:     b.BedID,
		fieldDate:      b.Date,
		fieldQuantity:  b.Quantity,
		"quality":      string(b.Quality),
		"notes":        b.Notes,
		"responsible":  b.Responsible,
	}
	auditRecord(rec, b.Audit)
	return rec
}

func recordToBatch(id string, rec repositories.Record) models.CuttingBatch {
	return models.CuttingBatch{
		ID:          id,
		NurseryID:   rec.String(fieldNurseryID),
		BedID:       rec.String(fieldBedID),
		Date:        rec.Time(fieldDate),
		Quantity:    rec.Int(fieldQuantity),
		Quality:     models.Quality(rec.String("quality")),
		Notes:       rec.String("notes"),
		Responsible: rec.String("responsible"),
		Audit:       recordAudit(rec),
	}
}

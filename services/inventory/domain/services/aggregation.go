// Package services contains stateless domain services for the inventory
// bounded context. They operate purely on domain types and have no
// dependencies beyond stdlib and the domain layer.
package services

import (
	"time"

	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
)

// FoldBedStatistics derives a bed's statistics from its cutting batches:
// the number of batches, the sum of their quantities and the latest batch
// date. LastCutAt is nil for an empty slice.
func FoldBedStatistics(batches []models.CuttingBatch) models.BedStatistics {
	var stats models.BedStatistics
	var last time.Time
	for _, b := range batches {
		stats.TotalCuts++
		stats.HistoricalTotal += b.Quantity
		if b.Date.After(last) {
			last = b.Date
		}
	}
	if stats.TotalCuts > 0 {
		last = last.UTC()
		stats.LastCutAt = &last
	}
	return stats
}

// FoldNurseryStatistics derives a nursery's statistics from its beds. A bed
// is occupied when it holds at least one plant; every other bed is free.
func FoldNurseryStatistics(beds []models.Bed) models.NurseryStatistics {
	var stats models.NurseryStatistics
	for _, b := range beds {
		stats.TotalBeds++
		if b.PlantCount > 0 {
			stats.OccupiedBeds++
		}
		stats.TotalPlants += b.PlantCount
		stats.HistoricalTotal += b.Statistics.HistoricalTotal
	}
	stats.FreeBeds = stats.TotalBeds - stats.OccupiedBeds
	return stats
}

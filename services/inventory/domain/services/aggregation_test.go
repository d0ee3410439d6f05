package services

import (
	"math/rand"
	"testing"
	"time"

	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFoldBedStatistics(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := FoldBedStatistics(nil)
		if got.TotalCuts != 0 || got.HistoricalTotal != 0 || got.LastCutAt != nil {
			t.Fatalf("expected zero statistics, got %+v", got)
		}
	})

	t.Run("sums and latest date", func(t *testing.T) {
		got := FoldBedStatistics([]models.CuttingBatch{
			{Quantity: 30, Date: day(2024, 1, 20)},
			{Quantity: 50, Date: day(2024, 1, 10)},
		})
		if got.TotalCuts != 2 {
			t.Errorf("TotalCuts = %d, want 2", got.TotalCuts)
		}
		if got.HistoricalTotal != 80 {
			t.Errorf("HistoricalTotal = %d, want 80", got.HistoricalTotal)
		}
		if got.LastCutAt == nil || !got.LastCutAt.Equal(day(2024, 1, 20)) {
			t.Errorf("LastCutAt = %v, want 2024-01-20", got.LastCutAt)
		}
	})

	t.Run("order independent", func(t *testing.T) {
		batches := make([]models.CuttingBatch, 20)
		for i := range batches {
			batches[i] = models.CuttingBatch{Quantity: i + 1, Date: day(2024, 2, i+1)}
		}
		want := FoldBedStatistics(batches)

		r := rand.New(rand.NewSource(7))
		r.Shuffle(len(batches), func(i, j int) { batches[i], batches[j] = batches[j], batches[i] })
		got := FoldBedStatistics(batches)

		if got.TotalCuts != want.TotalCuts || got.HistoricalTotal != want.HistoricalTotal || !got.LastCutAt.Equal(*want.LastCutAt) {
			t.Fatalf("fold depends on order: %+v vs %+v", got, want)
		}
	})
}

func TestFoldNurseryStatistics(t *testing.T) {
	tests := []struct {
		name string
		beds []models.Bed
		want models.NurseryStatistics
	}{
		{"no beds", nil, models.NurseryStatistics{}},
		{
			"single occupied bed",
			[]models.Bed{{PlantCount: 24, Statistics: models.BedStatistics{HistoricalTotal: 80}}},
			models.NurseryStatistics{TotalBeds: 1, OccupiedBeds: 1, FreeBeds: 0, TotalPlants: 24, HistoricalTotal: 80},
		},
		{
			"mixed occupancy",
			[]models.Bed{
				{PlantCount: 10, Statistics: models.BedStatistics{HistoricalTotal: 5}},
				{PlantCount: 0, Statistics: models.BedStatistics{HistoricalTotal: 40}},
				{PlantCount: 3},
			},
			models.NurseryStatistics{TotalBeds: 3, OccupiedBeds: 2, FreeBeds: 1, TotalPlants: 13, HistoricalTotal: 45},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FoldNurseryStatistics(tt.beds)
			if got != tt.want {
				t.Fatalf("FoldNurseryStatistics() = %+v, want %+v", got, tt.want)
			}
			if got.OccupiedBeds+got.FreeBeds != got.TotalBeds {
				t.Fatalf("occupied + free != total: %+v", got)
			}
		})
	}
}

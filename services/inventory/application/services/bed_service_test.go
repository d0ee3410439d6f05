package services

import (
	"context"
	"slices"
	"testing"

	"github.com/ghuser/nurseryinventory/services/inventory/domain"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
)

func TestBedCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")

	planted := day(2024, 1, 2)
	b, err := f.svcs.Beds.Create(ctx, "north", models.NewBedInput{
		ID:            "bed01",
		Species:       "Rosa canina",
		PlantCount:    24,
		Substrate:     "peat",
		ContainerSize: 1.5,
		ContainerUnit: "L",
		PlantingDate:  &planted,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.DisplayName != "North · Rosa canina" {
		t.Errorf("display name = %q", b.DisplayName)
	}
	if b.State != models.BedStateActive {
		t.Errorf("state = %q, want active by default", b.State)
	}
	if b.NurseryID != "north" || b.ContainerSize != 1.5 || b.Substrate != "peat" {
		t.Errorf("unexpected bed: %+v", b)
	}
	if b.PlantingDate == nil || !b.PlantingDate.Equal(planted) || b.EstimatedHarvestDate != nil {
		t.Errorf("dates = %v / %v", b.PlantingDate, b.EstimatedHarvestDate)
	}
	if b.Statistics.TotalCuts != 0 || b.Statistics.LastCutAt != nil {
		t.Errorf("statistics must start zeroed: %+v", b.Statistics)
	}

	n, _ := f.svcs.Nurseries.Get(ctx, "north")
	if n.Statistics.TotalBeds != 1 || n.Statistics.TotalPlants != 24 {
		t.Errorf("nursery not recomputed: %+v", n.Statistics)
	}
}

func TestBedCreate_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	original := f.bed(t, "north", "bed01", "Rosa", 1)

	tests := []struct {
		name      string
		nurseryID string
		in        models.NewBedInput
		want      error
	}{
		{"duplicate id", "north", models.NewBedInput{ID: "bed01", Species: "Salvia", PlantCount: 99}, domain.ErrAlreadyExists},
		{"malformed nursery id", "North!", models.NewBedInput{ID: "bed02"}, domain.ErrInvalidArgument},
		{"missing nursery", "south", models.NewBedInput{ID: "bed02"}, domain.ErrNotFound},
		{"negative plants", "north", models.NewBedInput{ID: "bed02", PlantCount: -1}, domain.ErrInvalidArgument},
		{"unknown state", "north", models.NewBedInput{ID: "bed02", State: "dormant"}, domain.ErrInvalidArgument},
		{"bad slug", "north", models.NewBedInput{ID: "Bed 2"}, domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svcs.Beds.Create(ctx, tt.nurseryID, tt.in)
			wantErr(t, err, tt.want)
		})
	}
	if got := f.store.Len(repositories.BedsCollection("north")); got != 1 {
		t.Errorf("beds = %d, want 1", got)
	}
	if got := f.store.Len(repositories.BedsCollection("south")); got != 0 {
		t.Errorf("orphan beds = %d", got)
	}

	kept, err := f.svcs.Beds.Get(ctx, "north", "bed01")
	if err != nil {
		t.Fatal(err)
	}
	if kept.Species != original.Species || kept.PlantCount != original.PlantCount || kept.DisplayName != original.DisplayName {
		t.Errorf("existing bed modified: got %+v, want %+v", kept, original)
	}
	if kept.Audit.CreatedBy != original.Audit.CreatedBy || kept.Audit.UpdatedBy != original.Audit.UpdatedBy ||
		!kept.Audit.CreatedAt.Equal(original.Audit.CreatedAt) || !kept.Audit.UpdatedAt.Equal(original.Audit.UpdatedAt) {
		t.Errorf("existing bed audit modified: got %+v, want %+v", kept.Audit, original.Audit)
	}
}

func TestBedUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 0)

	b, err := f.svcs.Beds.Update(ctx, "north", "bed01", models.BedPatch{Species: ptr("Salix")})
	if err != nil {
		t.Fatalf("Update species: %v", err)
	}
	if b.Species != "Salix" || b.DisplayName != "North · Salix" {
		t.Errorf("species/display = %q/%q", b.Species, b.DisplayName)
	}

	n, _ := f.svcs.Nurseries.Get(ctx, "north")
	if n.Statistics.OccupiedBeds != 0 {
		t.Fatalf("precondition: bed should be free, stats %+v", n.Statistics)
	}

	if _, err := f.svcs.Beds.Update(ctx, "north", "bed01", models.BedPatch{PlantCount: ptr(40)}); err != nil {
		t.Fatalf("Update plant count: %v", err)
	}
	n, _ = f.svcs.Nurseries.Get(ctx, "north")
	if n.Statistics.OccupiedBeds != 1 || n.Statistics.FreeBeds != 0 || n.Statistics.TotalPlants != 40 {
		t.Errorf("nursery not recomputed after plant count change: %+v", n.Statistics)
	}

	state := models.BedStateInactive
	b, err = f.svcs.Beds.Update(ctx, "north", "bed01", models.BedPatch{State: &state})
	if err != nil {
		t.Fatal(err)
	}
	if b.State != models.BedStateInactive || b.PlantCount != 40 {
		t.Errorf("partial update lost fields: %+v", b)
	}

	_, err = f.svcs.Beds.Update(ctx, "north", "missing", models.BedPatch{PlantCount: ptr(1)})
	wantErr(t, err, domain.ErrNotFound)
	_, err = f.svcs.Beds.Update(ctx, "north", "bed01", models.BedPatch{})
	wantErr(t, err, domain.ErrInvalidArgument)
	_, err = f.svcs.Beds.Update(ctx, "north", "bed01", models.BedPatch{PlantCount: ptr(-3)})
	wantErr(t, err, domain.ErrInvalidArgument)
}

func TestBedList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "b", "Salix", 5)
	f.bed(t, "north", "a", "Rosa", 20)
	f.bed(t, "north", "c", "Acer", 0)
	inactive := models.BedStateInactive
	if _, err := f.svcs.Beds.Update(ctx, "north", "c", models.BedPatch{State: &inactive}); err != nil {
		t.Fatal(err)
	}
	planted := day(2024, 1, 1)
	if _, err := f.svcs.Beds.Update(ctx, "north", "b", models.BedPatch{PlantingDate: &planted}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts BedListOptions
		want []string
	}{
		{"default", BedListOptions{}, []string{"a", "b", "c"}},
		{"plant count desc", BedListOptions{OrderBy: "plantCount", Descending: true}, []string{"a", "b", "c"}},
		{"plant count asc", BedListOptions{OrderBy: "plantCount"}, []string{"c", "b", "a"}},
		{"species", BedListOptions{OrderBy: "species"}, []string{"c", "a", "b"}},
		{"state filter", BedListOptions{State: models.BedStateActive}, []string{"a", "b"}},
		{"missing planting date sorts last", BedListOptions{OrderBy: "plantingDate"}, []string{"b", "a", "c"}},
		{"missing planting date sorts last desc", BedListOptions{OrderBy: "plantingDate", Descending: true}, []string{"b", "a", "c"}},
		{"limit", BedListOptions{Limit: 1}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			beds, err := f.svcs.Beds.List(ctx, "north", tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, b := range beds {
				got = append(got, b.ID)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}

	empty, err := f.svcs.Beds.List(ctx, "missing", BedListOptions{})
	if err != nil || len(empty) != 0 {
		t.Errorf("list of unknown nursery = %v, %v", empty, err)
	}
	_, err = f.svcs.Beds.List(ctx, "north", BedListOptions{State: "dormant"})
	wantErr(t, err, domain.ErrInvalidArgument)
	_, err = f.svcs.Beds.List(ctx, "north", BedListOptions{OrderBy: "displayName"})
	wantErr(t, err, domain.ErrInvalidArgument)
}

func TestRefreshDisplayNames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 2)
	f.bed(t, "north", "bed02", "Salix", 0)
	f.batch(t, "north", "bed01", 4, day(2024, 2, 2))

	// Rename behind the service's back so both names are stale.
	if err := f.store.Update(ctx, repositories.CollectionNurseries, "north", repositories.Record{"name": "Norte"}); err != nil {
		t.Fatal(err)
	}
	changed, err := f.svcs.Beds.RefreshDisplayNames(ctx, "north")
	if err != nil {
		t.Fatal(err)
	}
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}
	b, _ := f.svcs.Beds.Get(ctx, "north", "bed01")
	if b.DisplayName != "Norte · Rosa" {
		t.Errorf("display name = %q", b.DisplayName)
	}
	if b.Statistics.HistoricalTotal != 4 {
		t.Errorf("refresh must not touch statistics: %+v", b.Statistics)
	}

	changed, err = f.svcs.Beds.RefreshDisplayNames(ctx, "north")
	if err != nil || changed != 0 {
		t.Errorf("second refresh = %d, %v; want 0, nil", changed, err)
	}
	_, err = f.svcs.Beds.RefreshDisplayNames(ctx, "missing")
	wantErr(t, err, domain.ErrNotFound)
}

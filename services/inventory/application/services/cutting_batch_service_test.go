package services

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/ghuser/nurseryinventory/services/inventory/domain"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
)

func TestCuttingBatchCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 10)

	b, err := f.svcs.Batches.Create(ctx, "north", "bed01", models.NewCuttingBatchInput{
		Date:        day(2024, 3, 1),
		Quantity:    12,
		Quality:     models.QualityGood,
		Notes:       "first pass",
		Responsible: "ana",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !models.ValidCuttingBatchID(b.ID) {
		t.Errorf("id %q is not a ULID", b.ID)
	}
	if b.NurseryID != "north" || b.BedID != "bed01" || b.Quantity != 12 || b.Quality != models.QualityGood {
		t.Errorf("unexpected batch: %+v", b)
	}
	if !b.Date.Equal(day(2024, 3, 1)) {
		t.Errorf("date = %v", b.Date)
	}
	if b.CreatedBy != "user-1" || b.UpdatedBy != "user-1" {
		t.Errorf("audit = %q/%q", b.CreatedBy, b.UpdatedBy)
	}
	if !b.CreatedAt.Equal(testNow) {
		t.Errorf("createdAt = %v, want store clock %v", b.CreatedAt, testNow)
	}

	bed, _ := f.svcs.Beds.Get(ctx, "north", "bed01")
	if bed.Statistics.HistoricalTotal != 12 || bed.Statistics.TotalCuts != 1 {
		t.Errorf("bed stats = %+v", bed.Statistics)
	}
	n, _ := f.svcs.Nurseries.Get(ctx, "north")
	if n.Statistics.HistoricalTotal != 12 {
		t.Errorf("nursery stats = %+v", n.Statistics)
	}
}

func TestCuttingBatchCreate_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 10)

	tests := []struct {
		name  string
		bedID string
		in    models.NewCuttingBatchInput
		want  error
	}{
		{"missing bed", "bed99", models.NewCuttingBatchInput{Date: day(2024, 3, 1), Quantity: 1}, domain.ErrNotFound},
		{"zero quantity", "bed01", models.NewCuttingBatchInput{Date: day(2024, 3, 1)}, domain.ErrInvalidArgument},
		{"negative quantity", "bed01", models.NewCuttingBatchInput{Date: day(2024, 3, 1), Quantity: -4}, domain.ErrInvalidArgument},
		{"no date", "bed01", models.NewCuttingBatchInput{Quantity: 1}, domain.ErrInvalidArgument},
		{"unknown quality", "bed01", models.NewCuttingBatchInput{Date: day(2024, 3, 1), Quantity: 1, Quality: "superb"}, domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svcs.Batches.Create(ctx, "north", tt.bedID, tt.in)
			wantErr(t, err, tt.want)
		})
	}

	for _, bedID := range []string{"bed01", "bed99"} {
		if got := f.store.Len(repositories.CuttingBatchesCollection("north", bedID)); got != 0 {
			t.Errorf("batches under %s = %d, want none", bedID, got)
		}
	}
	bed, _ := f.svcs.Beds.Get(ctx, "north", "bed01")
	if bed.Statistics.TotalCuts != 0 {
		t.Errorf("rejected creates changed stats: %+v", bed.Statistics)
	}
}

func TestCuttingBatchCreate_AnonymousCaller(t *testing.T) {
	f := newFixture(t, nil, func(d *Deps) { d.Identity = fixedIdentity("") })
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 1)

	b := f.batch(t, "north", "bed01", 3, day(2024, 3, 1))
	if b.CreatedBy != "" {
		t.Errorf("createdBy = %q, want empty for anonymous caller", b.CreatedBy)
	}
}

func TestCuttingBatchList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 1)

	march := f.batch(t, "north", "bed01", 1, day(2024, 3, 1))
	jan := f.batch(t, "north", "bed01", 2, day(2024, 1, 1))
	may := f.batch(t, "north", "bed01", 3, day(2024, 5, 1))

	tests := []struct {
		name string
		opts BatchListOptions
		want []string
	}{
		{"newest first", BatchListOptions{}, []string{may.ID, march.ID, jan.ID}},
		{"ascending", BatchListOptions{Ascending: true}, []string{jan.ID, march.ID, may.ID}},
		{"limit", BatchListOptions{Limit: 2}, []string{may.ID, march.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svcs.Batches.List(ctx, "north", "bed01", tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			var ids []string
			for _, b := range got {
				ids = append(ids, b.ID)
			}
			if !slices.Equal(ids, tt.want) {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}

	empty, err := f.svcs.Batches.List(ctx, "north", "bed99", BatchListOptions{})
	if err != nil || len(empty) != 0 {
		t.Errorf("list of unknown bed = %v, %v", empty, err)
	}
	_, err = f.svcs.Batches.List(ctx, "north", "bed01", BatchListOptions{Limit: -1})
	wantErr(t, err, domain.ErrInvalidArgument)
}

func TestCuttingBatchUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 1)
	b := f.batch(t, "north", "bed01", 5, day(2024, 3, 1))

	notes := "recounted"
	got, err := f.svcs.Batches.Update(ctx, "north", "bed01", b.ID, models.CuttingBatchPatch{Notes: &notes})
	if err != nil {
		t.Fatal(err)
	}
	if got.Notes != notes || got.Quantity != 5 || got.CreatedBy != "user-1" {
		t.Errorf("partial update = %+v", got)
	}

	later := day(2024, 4, 2)
	if _, err := f.svcs.Batches.Update(ctx, "north", "bed01", b.ID, models.CuttingBatchPatch{Quantity: ptr(9), Date: &later}); err != nil {
		t.Fatal(err)
	}
	bed, _ := f.svcs.Beds.Get(ctx, "north", "bed01")
	if bed.Statistics.HistoricalTotal != 9 {
		t.Errorf("historical total = %d, want 9", bed.Statistics.HistoricalTotal)
	}
	if bed.Statistics.LastCutAt == nil || !bed.Statistics.LastCutAt.Equal(later) {
		t.Errorf("last cut = %v, want %v", bed.Statistics.LastCutAt, later)
	}

	tests := []struct {
		name    string
		batchID string
		patch   models.CuttingBatchPatch
		want    error
	}{
		{"missing batch", "01HQ0000000000000000000000", models.CuttingBatchPatch{Quantity: ptr(1)}, domain.ErrNotFound},
		{"empty patch", b.ID, models.CuttingBatchPatch{}, domain.ErrInvalidArgument},
		{"zero quantity", b.ID, models.CuttingBatchPatch{Quantity: ptr(0)}, domain.ErrInvalidArgument},
		{"zero date", b.ID, models.CuttingBatchPatch{Date: &time.Time{}}, domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svcs.Batches.Update(ctx, "north", "bed01", tt.batchID, tt.patch)
			wantErr(t, err, tt.want)
		})
	}
}

func TestCuttingBatchDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 1)
	keep := f.batch(t, "north", "bed01", 4, day(2024, 1, 1))
	drop := f.batch(t, "north", "bed01", 6, day(2024, 2, 1))

	if err := f.svcs.Batches.Delete(ctx, "north", "bed01", drop.ID); err != nil {
		t.Fatal(err)
	}
	_, err := f.svcs.Batches.Get(ctx, "north", "bed01", drop.ID)
	wantErr(t, err, domain.ErrNotFound)

	bed, _ := f.svcs.Beds.Get(ctx, "north", "bed01")
	if bed.Statistics.HistoricalTotal != 4 || bed.Statistics.TotalCuts != 1 {
		t.Errorf("bed stats after delete = %+v", bed.Statistics)
	}
	if bed.Statistics.LastCutAt == nil || !bed.Statistics.LastCutAt.Equal(keep.Date) {
		t.Errorf("last cut = %v, want %v", bed.Statistics.LastCutAt, keep.Date)
	}
	n, _ := f.svcs.Nurseries.Get(ctx, "north")
	if n.Statistics.HistoricalTotal != 4 {
		t.Errorf("nursery stats after delete = %+v", n.Statistics)
	}

	err = f.svcs.Batches.Delete(ctx, "north", "bed01", drop.ID)
	wantErr(t, err, domain.ErrNotFound)
}

func TestServices_RejectMalformedIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 1)
	valid := f.batch(t, "north", "bed01", 3, day(2024, 1, 5)).ID

	qty := ptr(2)
	tests := []struct {
		name string
		call func() error
	}{
		{"batch get non-ulid", func() error {
			_, err := f.svcs.Batches.Get(ctx, "north", "bed01", "not a ulid!")
			return err
		}},
		{"batch update non-ulid", func() error {
			_, err := f.svcs.Batches.Update(ctx, "north", "bed01", "xyz", models.CuttingBatchPatch{Quantity: qty})
			return err
		}},
		{"batch delete non-ulid", func() error {
			return f.svcs.Batches.Delete(ctx, "north", "bed01", "../bed01")
		}},
		{"batch get malformed bed", func() error {
			_, err := f.svcs.Batches.Get(ctx, "north", "Bed 01", valid)
			return err
		}},
		{"batch create malformed nursery", func() error {
			_, err := f.svcs.Batches.Create(ctx, "north/x", "bed01", models.NewCuttingBatchInput{Date: day(2024, 1, 6), Quantity: 1})
			return err
		}},
		{"batch list malformed bed", func() error {
			_, err := f.svcs.Batches.List(ctx, "north", "", BatchListOptions{})
			return err
		}},
		{"bed get", func() error {
			_, err := f.svcs.Beds.Get(ctx, "north", "BED01")
			return err
		}},
		{"bed update", func() error {
			_, err := f.svcs.Beds.Update(ctx, "north", "bed 01", models.BedPatch{PlantCount: qty})
			return err
		}},
		{"bed list", func() error {
			_, err := f.svcs.Beds.List(ctx, "North", BedListOptions{})
			return err
		}},
		{"bed delete", func() error {
			return f.svcs.Deleter.DeleteBed(ctx, "north", "bed_01")
		}},
		{"nursery get", func() error {
			_, err := f.svcs.Nurseries.Get(ctx, "")
			return err
		}},
		{"nursery update", func() error {
			_, err := f.svcs.Nurseries.Update(ctx, "no/rth", models.NurseryPatch{Name: ptr("X")})
			return err
		}},
		{"nursery statistics", func() error {
			_, err := f.svcs.Nurseries.Statistics(ctx, "-north")
			return err
		}},
		{"nursery delete", func() error {
			return f.svcs.Deleter.DeleteNursery(ctx, "north--x")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantErr(t, tt.call(), domain.ErrInvalidArgument)
		})
	}

	if _, err := f.svcs.Batches.Get(ctx, "north", "bed01", valid); err != nil {
		t.Fatalf("valid batch must be untouched: %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ghuser/nurseryinventory/services/inventory/domain"
	inventoryevents "github.com/ghuser/nurseryinventory/services/inventory/domain/events"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
)

func TestScenario_CuttingsRollUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa canina", 24)
	f.batch(t, "north", "bed01", 50, day(2024, 1, 10))
	f.batch(t, "north", "bed01", 30, day(2024, 1, 20))

	bedStats, err := f.svcs.Engine.RecomputeBedStats(ctx, "north", "bed01")
	if err != nil {
		t.Fatalf("RecomputeBedStats: %v", err)
	}
	if bedStats.HistoricalTotal != 80 || bedStats.TotalCuts != 2 {
		t.Errorf("bed stats = %+v, want historical 80, cuts 2", bedStats)
	}
	if bedStats.LastCutAt == nil || !bedStats.LastCutAt.Equal(day(2024, 1, 20)) {
		t.Errorf("lastCutAt = %v, want 2024-01-20", bedStats.LastCutAt)
	}

	nurseryStats, err := f.svcs.Engine.RecomputeNurseryStats(ctx, "north")
	if err != nil {
		t.Fatalf("RecomputeNurseryStats: %v", err)
	}
	want := models.NurseryStatistics{TotalBeds: 1, OccupiedBeds: 1, FreeBeds: 0, TotalPlants: 24, HistoricalTotal: 80}
	if nurseryStats != want {
		t.Errorf("nursery stats = %+v, want %+v", nurseryStats, want)
	}

	// The persisted records carry the same values.
	bed, _ := f.svcs.Beds.Get(ctx, "north", "bed01")
	if bed.Statistics.HistoricalTotal != 80 || bed.Statistics.TotalCuts != 2 {
		t.Errorf("stored bed stats = %+v", bed.Statistics)
	}
	n, _ := f.svcs.Nurseries.Get(ctx, "north")
	if n.Statistics != want {
		t.Errorf("stored nursery stats = %+v, want %+v", n.Statistics, want)
	}
}

func TestScenario_DeleteBedClearsCuttings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa canina", 24)
	f.batch(t, "north", "bed01", 50, day(2024, 1, 10))
	f.batch(t, "north", "bed01", 30, day(2024, 1, 20))

	if err := f.svcs.Deleter.DeleteBed(ctx, "north", "bed01"); err != nil {
		t.Fatalf("DeleteBed: %v", err)
	}

	batches, err := f.svcs.Batches.List(ctx, "north", "bed01", BatchListOptions{})
	if err != nil {
		t.Fatalf("List batches: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("expected no batches after bed delete, got %d", len(batches))
	}

	stats, err := f.svcs.Engine.RecomputeNurseryStats(ctx, "north")
	if err != nil {
		t.Fatalf("RecomputeNurseryStats: %v", err)
	}
	if stats.TotalBeds != 0 || stats.OccupiedBeds != 0 || stats.TotalPlants != 0 {
		t.Errorf("stats after delete = %+v, want zeros", stats)
	}
}

func TestLeafMutationsReconcile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 10)

	first := f.batch(t, "north", "bed01", 5, day(2024, 3, 1))
	second := f.batch(t, "north", "bed01", 7, day(2024, 3, 5))

	assertBed := func(label string, total, cuts int, last time.Time) {
		t.Helper()
		b, err := f.svcs.Beds.Get(ctx, "north", "bed01")
		if err != nil {
			t.Fatalf("%s: get bed: %v", label, err)
		}
		s := b.Statistics
		if s.HistoricalTotal != total || s.TotalCuts != cuts {
			t.Errorf("%s: bed stats = %+v, want total %d cuts %d", label, s, total, cuts)
		}
		if last.IsZero() {
			if s.LastCutAt != nil {
				t.Errorf("%s: lastCutAt = %v, want nil", label, s.LastCutAt)
			}
		} else if s.LastCutAt == nil || !s.LastCutAt.Equal(last) {
			t.Errorf("%s: lastCutAt = %v, want %v", label, s.LastCutAt, last)
		}
		n, _ := f.svcs.Nurseries.Get(ctx, "north")
		if n.Statistics.HistoricalTotal != total {
			t.Errorf("%s: nursery historical = %d, want %d", label, n.Statistics.HistoricalTotal, total)
		}
	}

	assertBed("after creates", 12, 2, day(2024, 3, 5))

	if _, err := f.svcs.Batches.Update(ctx, "north", "bed01", first.ID, models.CuttingBatchPatch{Quantity: ptr(15)}); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	assertBed("after quantity change", 22, 2, day(2024, 3, 5))

	if _, err := f.svcs.Batches.Update(ctx, "north", "bed01", first.ID, models.CuttingBatchPatch{Date: ptr(day(2024, 4, 1))}); err != nil {
		t.Fatalf("update date: %v", err)
	}
	assertBed("after date change", 22, 2, day(2024, 4, 1))

	if err := f.svcs.Batches.Delete(ctx, "north", "bed01", second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertBed("after delete", 15, 1, day(2024, 4, 1))

	if err := f.svcs.Batches.Delete(ctx, "north", "bed01", first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertBed("after last delete", 0, 0, time.Time{})
}

func TestRecomputeBedStats_MatchesBatches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 1)

	rng := rand.New(rand.NewSource(7))
	live := map[string]int{}
	for step := 0; step < 60; step++ {
		var ids []string
		for id := range live {
			ids = append(ids, id)
		}
		switch op := rng.Intn(3); {
		case op == 0 || len(ids) == 0:
			qty := 1 + rng.Intn(100)
			b := f.batch(t, "north", "bed01", qty, day(2024, 1, 1+rng.Intn(28)))
			live[b.ID] = qty
		case op == 1:
			id := ids[rng.Intn(len(ids))]
			qty := 1 + rng.Intn(100)
			if _, err := f.svcs.Batches.Update(ctx, "north", "bed01", id, models.CuttingBatchPatch{Quantity: &qty}); err != nil {
				t.Fatalf("step %d: update: %v", step, err)
			}
			live[id] = qty
		default:
			id := ids[rng.Intn(len(ids))]
			if err := f.svcs.Batches.Delete(ctx, "north", "bed01", id); err != nil {
				t.Fatalf("step %d: delete: %v", step, err)
			}
			delete(live, id)
		}

		stats, err := f.svcs.Engine.RecomputeBedStats(ctx, "north", "bed01")
		if err != nil {
			t.Fatalf("step %d: recompute: %v", step, err)
		}
		sum := 0
		for _, q := range live {
			sum += q
		}
		if stats.TotalCuts != len(live) || stats.HistoricalTotal != sum {
			t.Fatalf("step %d: stats = %+v, want cuts %d total %d", step, stats, len(live), sum)
		}
	}
}

func TestRecomputeNurseryStats_OccupancyPartition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")

	for i, plants := range []int{0, 3, 0, 12, 1} {
		f.bed(t, "north", []string{"a", "b", "c", "d", "e"}[i], "Salix", plants)
	}
	stats, err := f.svcs.Engine.RecomputeNurseryStats(ctx, "north")
	if err != nil {
		t.Fatalf("RecomputeNurseryStats: %v", err)
	}
	if stats.TotalBeds != 5 || stats.OccupiedBeds != 3 || stats.FreeBeds != 2 || stats.TotalPlants != 16 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.OccupiedBeds+stats.FreeBeds != stats.TotalBeds {
		t.Errorf("occupied + free != total: %+v", stats)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 4)
	f.batch(t, "north", "bed01", 9, day(2024, 5, 1))

	snapshot := func() (repositories.Record, repositories.Record) {
		bed, err := f.store.Get(ctx, repositories.BedsCollection("north"), "bed01")
		if err != nil {
			t.Fatal(err)
		}
		n, err := f.store.Get(ctx, repositories.CollectionNurseries, "north")
		if err != nil {
			t.Fatal(err)
		}
		return bed, n
	}

	if _, err := f.svcs.Engine.RecomputeAll(ctx, "north"); err != nil {
		t.Fatalf("first RecomputeAll: %v", err)
	}
	bed1, n1 := snapshot()
	if _, err := f.svcs.Engine.RecomputeAll(ctx, "north"); err != nil {
		t.Fatalf("second RecomputeAll: %v", err)
	}
	bed2, n2 := snapshot()

	if !reflect.DeepEqual(bed1, bed2) {
		t.Errorf("bed record changed between recomputes:\n%v\n%v", bed1, bed2)
	}
	if !reflect.DeepEqual(n1, n2) {
		t.Errorf("nursery record changed between recomputes:\n%v\n%v", n1, n2)
	}
}

func TestRecomputeAll_RepairsDrift(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 4)
	f.bed(t, "north", "bed02", "Salix", 0)
	f.batch(t, "north", "bed01", 9, day(2024, 5, 1))

	// Simulate drift from an out-of-band write.
	drift := repositories.Record{fieldStatistics: repositories.Record{"historicalTotal": 999, "totalCuts": 42}}
	if err := f.store.Update(ctx, repositories.BedsCollection("north"), "bed01", drift); err != nil {
		t.Fatal(err)
	}

	stats, err := f.svcs.Engine.RecomputeAll(ctx, "north")
	if err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	want := models.NurseryStatistics{TotalBeds: 2, OccupiedBeds: 1, FreeBeds: 1, TotalPlants: 4, HistoricalTotal: 9}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	bed, _ := f.svcs.Beds.Get(ctx, "north", "bed01")
	if bed.Statistics.TotalCuts != 1 || bed.Statistics.HistoricalTotal != 9 {
		t.Errorf("bed stats not repaired: %+v", bed.Statistics)
	}
}

func TestRecompute_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")

	_, err := f.svcs.Engine.RecomputeBedStats(ctx, "north", "missing")
	wantErr(t, err, domain.ErrNotFound)
	_, err = f.svcs.Engine.RecomputeNurseryStats(ctx, "missing")
	wantErr(t, err, domain.ErrNotFound)
}

func TestRecompute_RetriesConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 4)
	f.batch(t, "north", "bed01", 9, day(2024, 5, 1))

	f.store.FailNextCommit(domain.ErrConflict)
	stats, err := f.svcs.Engine.RecomputeBedStats(ctx, "north", "bed01")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if stats.HistoricalTotal != 9 {
		t.Errorf("stats = %+v", stats)
	}

	for i := 0; i < recomputeAttempts; i++ {
		f.store.FailNextCommit(domain.ErrConflict)
	}
	_, err = f.svcs.Engine.RecomputeBedStats(ctx, "north", "bed01")
	wantErr(t, err, domain.ErrConflict)
	if !domain.IsRetryable(err) {
		t.Error("exhausted conflict must stay retryable")
	}
}

func TestRecompute_ExpiredDeadline(t *testing.T) {
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := f.svcs.Engine.RecomputeNurseryStats(ctx, "north")
	wantErr(t, err, domain.ErrTimeout)
}

func TestReconcileFailure_KeepsMutationAndRequestsRepair(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, func(d *Deps) {
		d.Store = &statsWriteFailure{Store: d.Store, err: domain.ErrUnavailable}
	})
	f.nursery(t, "north", "North")

	bed, err := f.svcs.Beds.Create(ctx, "north", models.NewBedInput{ID: "bed01", Species: "Rosa", PlantCount: 3})
	if err != nil {
		t.Fatalf("bed create must succeed despite reconcile failure: %v", err)
	}
	batch, err := f.svcs.Batches.Create(ctx, "north", bed.ID, models.NewCuttingBatchInput{Date: day(2024, 1, 10), Quantity: 50})
	if err != nil {
		t.Fatalf("batch create must succeed despite reconcile failure: %v", err)
	}
	if _, err := f.svcs.Batches.Get(ctx, "north", "bed01", batch.ID); err != nil {
		t.Fatalf("batch must be persisted: %v", err)
	}

	if got := f.publisher.count(inventoryevents.TopicStatsRepairRequested); got != 2 {
		t.Fatalf("repair requests = %d, want 2", got)
	}
	var evt inventoryevents.StatsRepairRequestedEvent
	f.publisher.decode(t, inventoryevents.TopicStatsRepairRequested, 1, &evt)
	if evt.NurseryID != "north" || evt.BedID != "bed01" || evt.Reason == "" || evt.Version != 1 {
		t.Errorf("unexpected repair event: %+v", evt)
	}

	// Statistics are stale until the repair runs.
	stored, _ := f.svcs.Beds.Get(ctx, "north", "bed01")
	if stored.Statistics.TotalCuts != 0 {
		t.Errorf("stats unexpectedly written: %+v", stored.Statistics)
	}
}

func TestRecomputeNurseryStats_RefreshesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 6)

	if _, err := f.svcs.Engine.RecomputeNurseryStats(ctx, "north"); err != nil {
		t.Fatal(err)
	}
	cached, err := f.cache.Get(ctx, "north")
	if err != nil {
		t.Fatalf("expected cached stats: %v", err)
	}
	if cached.TotalPlants != 6 || cached.TotalBeds != 1 {
		t.Errorf("cached = %+v", cached)
	}
}

func TestStatsCache_NewerRecomputeWinsInterleaving(t *testing.T) {
	tests := []struct {
		name  string
		stale func(ctx context.Context, f *fixture) error
	}{
		{"recompute", func(ctx context.Context, f *fixture) error {
			_, err := f.svcs.Engine.RecomputeNurseryStats(ctx, "north")
			return err
		}},
		{"read through", func(ctx context.Context, f *fixture) error {
			_, err := f.svcs.Nurseries.Statistics(ctx, "north")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, nil)
			f.nursery(t, "north", "North")
			f.bed(t, "north", "bed01", "Rosa", 24)
			_ = f.cache.Delete(ctx, "north")

			// The first cache write stalls until a newer recompute has
			// committed and cached its own result.
			var calls atomic.Int32
			entered := make(chan struct{})
			release := make(chan struct{})
			f.cache.onSet(func() {
				if calls.Add(1) == 1 {
					close(entered)
					<-release
				}
			})

			var wg sync.WaitGroup
			var staleErr error
			wg.Add(1)
			go func() {
				defer wg.Done()
				staleErr = tt.stale(ctx, f)
			}()
			<-entered

			f.bed(t, "north", "bed02", "Salvia", 3)
			close(release)
			wg.Wait()
			if staleErr != nil {
				t.Fatal(staleErr)
			}

			n, err := f.svcs.Nurseries.Get(ctx, "north")
			if err != nil {
				t.Fatal(err)
			}
			cached, err := f.cache.Get(ctx, "north")
			if err != nil {
				t.Fatalf("expected cached stats: %v", err)
			}
			if *cached != n.Statistics {
				t.Fatalf("cached %+v, stored %+v", *cached, n.Statistics)
			}
			if cached.TotalBeds != 2 || cached.TotalPlants != 27 {
				t.Errorf("cached = %+v, want the two-bed statistics", *cached)
			}
		})
	}
}

func TestConcurrentLeafWrites_StatisticsMatchFold(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.nursery(t, "north", "North")
	f.bed(t, "north", "bed01", "Rosa", 24)

	const writers = 40
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			_, err := f.svcs.Batches.Create(ctx, "north", "bed01",
				models.NewCuttingBatchInput{Date: day(2024, 1, 1+qty%28), Quantity: qty})
			errs <- err
		}(i + 1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("create batch: %v", err)
		}
	}

	// Reconciles may lose a race and request a repair; a single repair pass
	// must then converge on the fold.
	if _, err := f.svcs.Engine.RecomputeAll(ctx, "north"); err != nil {
		t.Fatal(err)
	}
	bed, err := f.svcs.Beds.Get(ctx, "north", "bed01")
	if err != nil {
		t.Fatal(err)
	}
	batches, err := f.svcs.Batches.List(ctx, "north", "bed01", BatchListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	wantTotal := writers * (writers + 1) / 2
	if len(batches) != writers || bed.Statistics.TotalCuts != writers || bed.Statistics.HistoricalTotal != wantTotal {
		t.Fatalf("bed stats %+v over %d batches, want %d cuts totalling %d",
			bed.Statistics, len(batches), writers, wantTotal)
	}
	n, err := f.svcs.Nurseries.Get(ctx, "north")
	if err != nil {
		t.Fatal(err)
	}
	if n.Statistics.HistoricalTotal != wantTotal || n.Statistics.TotalBeds != 1 || n.Statistics.TotalPlants != 24 {
		t.Errorf("nursery stats = %+v", n.Statistics)
	}
}

func TestRecompute_RejectsMalformedIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.svcs.Engine.RecomputeBedStats(ctx, "north", "Bed 01")
	wantErr(t, err, domain.ErrInvalidArgument)
	_, err = f.svcs.Engine.RecomputeNurseryStats(ctx, "../north")
	wantErr(t, err, domain.ErrInvalidArgument)
	_, err = f.svcs.Engine.RecomputeAll(ctx, "")
	wantErr(t, err, domain.ErrInvalidArgument)
}

func TestRetry_ContextEndDuringBackoff(t *testing.T) {
	tests := []struct {
		name      string
		ctx       func() (context.Context, context.CancelFunc)
		want      error
		isTimeout bool
	}{
		{"canceled", func() (context.Context, context.CancelFunc) {
			return context.WithCancel(context.Background())
		}, context.Canceled, false},
		{"deadline", func() (context.Context, context.CancelFunc) {
			return context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		}, context.DeadlineExceeded, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			ctx, cancel := tt.ctx()
			defer cancel()

			calls := 0
			err := f.svcs.Engine.retry(ctx, func() error {
				calls++
				cancel()
				return domain.ErrConflict
			})
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if errors.Is(err, domain.ErrTimeout) != tt.isTimeout {
				t.Fatalf("timeout classification wrong for %v", err)
			}
		})
	}
}

func TestNurseryIDs(t *testing.T) {
	f := newFixture(t, nil)
	for _, id := range []string{"south", "east", "north"} {
		f.nursery(t, id, id)
	}
	ids, err := f.svcs.Engine.NurseryIDs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"east", "north", "south"}) {
		t.Errorf("ids = %v", ids)
	}
}

// Package storetest holds the behavioural contract every repositories.Store
// adapter must satisfy. Adapter packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghuser/nurseryinventory/services/inventory/domain"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
)

// Factory returns an empty store. Each subtest gets a fresh one.
type Factory func(t *testing.T) repositories.Store

// Run executes the contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("create get", func(t *testing.T) { testCreateGet(t, newStore(t)) })
	t.Run("create rejects duplicate", func(t *testing.T) { testCreateDuplicate(t, newStore(t)) })
	t.Run("update merges top level", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("list filter order limit", func(t *testing.T) { testList(t, newStore(t)) })
	t.Run("transaction commits", func(t *testing.T) { testTransactionCommit(t, newStore(t)) })
	t.Run("transaction rolls back", func(t *testing.T) { testTransactionRollback(t, newStore(t)) })
	t.Run("batch", func(t *testing.T) { testBatch(t, newStore(t)) })
	t.Run("server timestamp", func(t *testing.T) { testServerTimestamp(t, newStore(t)) })
	t.Run("expired deadline", func(t *testing.T) { testDeadline(t, newStore(t)) })
}

// LimitedFactory returns an empty store that allows at most maxWrites writes
// per transaction.
type LimitedFactory func(t *testing.T, maxWrites int) repositories.Store

// RunWriteLimit checks how writes are charged against the per-transaction
// limit: every Put, Create, Update and Delete issued counts, including deletes
// of absent records, and an oversize transaction applies nothing.
func RunWriteLimit(t *testing.T, newStore LimitedFactory) {
	type op func(ctx context.Context, tx repositories.Tx) error
	put := func(id string) op {
		return func(ctx context.Context, tx repositories.Tx) error {
			return tx.Put(ctx, coll, id, repositories.Record{"name": id})
		}
	}
	del := func(id string) op {
		return func(ctx context.Context, tx repositories.Tx) error {
			return tx.Delete(ctx, coll, id)
		}
	}
	update := func(id string) op {
		return func(ctx context.Context, tx repositories.Tx) error {
			return tx.Update(ctx, coll, id, repositories.Record{"name": id + "!"})
		}
	}

	tests := []struct {
		name      string
		maxWrites int
		ops       []op
		wantErr   bool
		wantDocs  int
	}{
		{"within limit", 3, []op{put("a"), update("a"), del("absent")}, false, 1},
		{"absent deletes count", 2, []op{del("absent1"), del("absent2"), put("a")}, true, 0},
		{"puts beyond limit", 2, []op{put("a"), put("b"), put("c")}, true, 0},
		{"exactly at limit", 2, []op{put("a"), put("b")}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, tt.maxWrites)
			ctx := context.Background()
			err := s.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
				for _, o := range tt.ops {
					if err := o(ctx, tx); err != nil {
						return err
					}
				}
				return nil
			})
			if tt.wantErr && !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("RunInTransaction: %v", err)
			}
			docs, err := s.List(ctx, coll, repositories.Query{})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(docs) != tt.wantDocs {
				t.Fatalf("got %d documents, want %d", len(docs), tt.wantDocs)
			}
		})
	}
}

const coll = "nurseries"

func testCreateGet(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	if err := s.Create(ctx, coll, "north", repositories.Record{
		"name":          "North",
		"configuration": repositories.Record{"publicVisible": true},
		"statistics":    repositories.Record{"totalBeds": 0},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, coll, "north")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.String("name") != "North" {
		t.Errorf("name = %q, want North", got.String("name"))
	}
	if !got.Map("configuration").Bool("publicVisible") {
		t.Errorf("nested bool lost: %v", got)
	}
	if got.Map("statistics").Int("totalBeds") != 0 {
		t.Errorf("nested int lost: %v", got)
	}

	if _, err := s.Get(ctx, coll, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testCreateDuplicate(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	if err := s.Create(ctx, coll, "north", repositories.Record{"name": "first"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := s.Create(ctx, coll, "north", repositories.Record{"name": "second"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	got, _ := s.Get(ctx, coll, "north")
	if got.String("name") != "first" {
		t.Fatalf("duplicate create overwrote record: %v", got)
	}
}

func testUpdate(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	if err := s.Put(ctx, coll, "north", repositories.Record{
		"name":        "North",
		"owner":       "ana",
		"description": "old",
		"statistics":  repositories.Record{"totalBeds": 2, "freeBeds": 2},
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := s.Update(ctx, coll, "north", repositories.Record{
		"statistics":  repositories.Record{"totalBeds": 3},
		"description": nil,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := s.Get(ctx, coll, "north")
	if got.String("name") != "North" || got.String("owner") != "ana" {
		t.Errorf("untouched fields changed: %v", got)
	}
	if _, ok := got["description"]; ok {
		t.Errorf("nil field not removed: %v", got)
	}
	stats := got.Map("statistics")
	if stats.Int("totalBeds") != 3 {
		t.Errorf("statistics not replaced: %v", stats)
	}
	if _, ok := stats["freeBeds"]; ok {
		t.Errorf("top-level merge must replace nested records whole: %v", stats)
	}

	if err := s.Update(ctx, coll, "missing", repositories.Record{"name": "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testDelete(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	_ = s.Put(ctx, coll, "north", repositories.Record{"name": "North"})
	if err := s.Delete(ctx, coll, "north"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, coll, "north"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, coll, "north"); err != nil {
		t.Fatalf("deleting an absent record must succeed, got %v", err)
	}
}

func testList(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	beds := "nurseries/north/beds"
	seed := map[string]repositories.Record{
		"bed01": {"state": "active", "plantCount": 24, "species": "Eucalyptus"},
		"bed02": {"state": "inactive", "plantCount": 0, "species": "Pinus"},
		"bed03": {"state": "active", "plantCount": 5},
		"bed04": {"state": "active", "plantCount": 24, "species": "Acacia"},
	}
	for id, rec := range seed {
		if err := s.Put(ctx, beds, id, rec); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}
	_ = s.Put(ctx, "nurseries/south/beds", "bed01", repositories.Record{"state": "active"})

	ids := func(docs []repositories.Document) []string {
		out := make([]string, len(docs))
		for i, d := range docs {
			out[i] = d.ID
		}
		return out
	}

	tests := []struct {
		name string
		q    repositories.Query
		want []string
	}{
		{"all by id", repositories.Query{}, []string{"bed01", "bed02", "bed03", "bed04"}},
		{"filter", repositories.Query{Filters: []repositories.Filter{{Field: "state", Value: "active"}}}, []string{"bed01", "bed03", "bed04"}},
		{"int filter", repositories.Query{Filters: []repositories.Filter{{Field: "plantCount", Value: 24}}}, []string{"bed01", "bed04"}},
		{"order desc ties by id", repositories.Query{OrderBy: "plantCount", Descending: true}, []string{"bed01", "bed04", "bed03", "bed02"}},
		{"missing sorts last", repositories.Query{OrderBy: "species"}, []string{"bed04", "bed01", "bed02", "bed03"}},
		{"missing sorts last desc", repositories.Query{OrderBy: "species", Descending: true}, []string{"bed02", "bed01", "bed04", "bed03"}},
		{"limit", repositories.Query{OrderBy: "plantCount", Limit: 2}, []string{"bed02", "bed03"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := s.List(ctx, beds, tt.q)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			got := ids(docs)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}

	docs, err := s.List(ctx, "nurseries/empty/beds", repositories.Query{})
	if err != nil || len(docs) != 0 {
		t.Fatalf("expected empty list, got %v %v", docs, err)
	}
}

func testTransactionCommit(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	_ = s.Put(ctx, coll, "north", repositories.Record{"name": "North"})

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := tx.Get(ctx, coll, "north"); err != nil {
			return err
		}
		if err := tx.Create(ctx, "nurseries/north/beds", "bed01", repositories.Record{"plantCount": 1}); err != nil {
			return err
		}
		got, err := tx.Get(ctx, "nurseries/north/beds", "bed01")
		if err != nil {
			t.Errorf("transaction must read its own writes: %v", err)
		}
		if got.Int("plantCount") != 1 {
			t.Errorf("unexpected staged record %v", got)
		}
		return tx.Delete(ctx, coll, "north")
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	if _, err := s.Get(ctx, "nurseries/north/beds", "bed01"); err != nil {
		t.Errorf("committed write missing: %v", err)
	}
	if _, err := s.Get(ctx, coll, "north"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("committed delete missing: %v", err)
	}
}

func testTransactionRollback(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	_ = s.Put(ctx, coll, "north", repositories.Record{"name": "North"})
	boom := errors.New("boom")

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if err := tx.Delete(ctx, coll, "north"); err != nil {
			return err
		}
		if err := tx.Put(ctx, coll, "south", repositories.Record{"name": "South"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if _, err := s.Get(ctx, coll, "north"); err != nil {
		t.Errorf("rolled back delete was applied: %v", err)
	}
	if _, err := s.Get(ctx, coll, "south"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("rolled back put was applied: %v", err)
	}
}

func testBatch(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	_ = s.Put(ctx, coll, "north", repositories.Record{"name": "North"})

	b := s.NewBatch()
	b.Put(coll, "south", repositories.Record{"name": "South"})
	b.Delete(coll, "north")
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
	if err := b.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := s.Get(ctx, coll, "south"); err != nil {
		t.Errorf("batched put missing: %v", err)
	}
	if _, err := s.Get(ctx, coll, "north"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("batched delete missing: %v", err)
	}
}

func testServerTimestamp(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	before := time.Now().Add(-time.Minute)
	if err := s.Put(ctx, coll, "north", repositories.Record{"createdAt": repositories.ServerTimestamp}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ := s.Get(ctx, coll, "north")
	ts := got.TimePtr("createdAt")
	if ts == nil || ts.Before(before) {
		t.Fatalf("server timestamp not resolved: %v", got["createdAt"])
	}
}

func testDeadline(t *testing.T, s repositories.Store) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := s.Get(ctx, coll, "north")
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !domain.IsRetryable(err) {
		t.Fatalf("timeout must be retryable")
	}
}

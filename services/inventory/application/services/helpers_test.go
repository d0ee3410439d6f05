package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/nurseryinventory/pkg/logger"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
	"github.com/ghuser/nurseryinventory/services/inventory/infrastructure/persistence/memory"
)

var testNow = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

// recordingPublisher captures published messages by topic.
type recordingPublisher struct {
	mu   sync.Mutex
	msgs map[string][]*message.Message
	err  error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{msgs: map[string][]*message.Message{}}
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs[topic] = append(p.msgs[topic], msgs...)
	return nil
}

func (p *recordingPublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs[topic])
}

// decode unmarshals the i-th message published on topic into v.
func (p *recordingPublisher) decode(t *testing.T, topic string, i int, v any) {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.msgs[topic]) <= i {
		t.Fatalf("no message %d on %s", i, topic)
	}
	if err := json.Unmarshal(p.msgs[topic][i].Payload, v); err != nil {
		t.Fatalf("decode %s payload: %v", topic, err)
	}
}

// mapCache is an in-process StatsCache; a miss reports redis.Nil like the
// Redis implementation, and Set keeps an entry holding the same or a newer
// revision.
type mapCache struct {
	mu        sync.Mutex
	entries   map[string]cachedStats
	gets      int
	beforeSet func()
}

type cachedStats struct {
	stats    models.NurseryStatistics
	revision int64
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]cachedStats{}}
}

func (c *mapCache) Get(_ context.Context, id string) (*models.NurseryStatistics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	e, ok := c.entries[id]
	if !ok {
		return nil, redis.Nil
	}
	return &e.stats, nil
}

func (c *mapCache) Set(_ context.Context, id string, s models.NurseryStatistics, revision int64) (bool, error) {
	c.mu.Lock()
	hook := c.beforeSet
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[id]; ok && cur.revision >= revision {
		return false, nil
	}
	c.entries[id] = cachedStats{stats: s, revision: revision}
	return true, nil
}

// onSet installs fn to run at the start of every Set, outside the lock.
func (c *mapCache) onSet(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.beforeSet = fn
}

func (c *mapCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

func (c *mapCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

type fixedIdentity string

func (f fixedIdentity) CurrentUserID(context.Context) (string, bool) {
	return string(f), f != ""
}

type stubGeocoder struct {
	address string
	err     error
	calls   int
}

func (g *stubGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	g.calls++
	return g.address, g.err
}

// statsWriteFailure wraps a store so that every statistics write fails,
// leaving all other writes intact.
type statsWriteFailure struct {
	repositories.Store
	err error
}

func (s *statsWriteFailure) RunInTransaction(ctx context.Context, fn func(context.Context, repositories.Tx) error) error {
	return s.Store.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return fn(ctx, &statsFailingTx{Tx: tx, err: s.err})
	})
}

type statsFailingTx struct {
	repositories.Tx
	err error
}

func (t *statsFailingTx) Update(ctx context.Context, collection, id string, fields repositories.Record) error {
	if _, ok := fields[fieldStatistics]; ok {
		return t.err
	}
	return t.Tx.Update(ctx, collection, id, fields)
}

type fixture struct {
	store     *memory.Store
	svcs      *Services
	publisher *recordingPublisher
	cache     *mapCache
	geocoder  *stubGeocoder
}

type fixtureOption func(*Deps)

func newFixture(t *testing.T, storeOpts []memory.Option, opts ...fixtureOption) *fixture {
	t.Helper()
	storeOpts = append([]memory.Option{memory.WithClock(func() time.Time { return testNow })}, storeOpts...)
	f := &fixture{
		store:     memory.NewStore(storeOpts...),
		publisher: newRecordingPublisher(),
		cache:     newMapCache(),
		geocoder:  &stubGeocoder{address: "Camino Real 123, Talca"},
	}
	d := Deps{
		Store:        f.store,
		Publisher:    f.publisher,
		Cache:        f.cache,
		Geocoder:     f.geocoder,
		Identity:     fixedIdentity("user-1"),
		Logger:       logger.Discard(),
		StoreTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(&d)
	}
	f.svcs = NewServices(d)
	f.svcs.Batches.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) nursery(t *testing.T, id, name string) *models.Nursery {
	t.Helper()
	n, err := f.svcs.Nurseries.Create(context.Background(), models.NewNurseryInput{ID: id, Name: name})
	if err != nil {
		t.Fatalf("create nursery %s: %v", id, err)
	}
	return n
}

func (f *fixture) bed(t *testing.T, nurseryID, id, species string, plants int) *models.Bed {
	t.Helper()
	b, err := f.svcs.Beds.Create(context.Background(), nurseryID, models.NewBedInput{ID: id, Species: species, PlantCount: plants})
	if err != nil {
		t.Fatalf("create bed %s/%s: %v", nurseryID, id, err)
	}
	return b
}

func (f *fixture) batch(t *testing.T, nurseryID, bedID string, qty int, date time.Time) *models.CuttingBatch {
	t.Helper()
	b, err := f.svcs.Batches.Create(context.Background(), nurseryID, bedID, models.NewCuttingBatchInput{Date: date, Quantity: qty})
	if err != nil {
		t.Fatalf("create batch on %s/%s: %v", nurseryID, bedID, err)
	}
	return b
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

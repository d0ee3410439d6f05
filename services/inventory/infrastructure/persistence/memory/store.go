// Package memory provides an in-memory implementation of the document store
// used for tests and ephemeral environments.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ghuser/nurseryinventory/services/inventory/domain"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
)

var _ repositories.Store = (*Store)(nil)

// DefaultMaxWrites bounds the number of writes in one transaction or batch.
const DefaultMaxWrites = 500

type collections map[string]map[string]repositories.Record

// Store keeps documents in process memory. Transactions are serialized by a
// single mutex and their staged writes are applied in one step on commit.
type Store struct {
	mu         sync.Mutex
	state      collections
	now        func() time.Time
	maxWrites  int
	commitErrs []error
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for ServerTimestamp values.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMaxWrites overrides DefaultMaxWrites.
func WithMaxWrites(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxWrites = n
		}
	}
}

// NewStore returns an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		state:     collections{},
		now:       time.Now,
		maxWrites: DefaultMaxWrites,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailNextCommit makes the next transaction or batch commit fail with err
// after its writes were staged. Nothing is applied. Calls queue up.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErrs = append(s.commitErrs, err)
}

// Len returns the number of documents in collection.
func (s *Store) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state[collection])
}

func checkContext(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	default:
		return err
	}
}

func (s *Store) popCommitErr() error {
	if len(s.commitErrs) == 0 {
		return nil
	}
	err := s.commitErrs[0]
	s.commitErrs = s.commitErrs[1:]
	return err
}

// Ping always succeeds unless ctx is done.
func (s *Store) Ping(ctx context.Context) error {
	return checkContext(ctx)
}

// Get implements repositories.Reader.
func (s *Store) Get(ctx context.Context, collection, id string) (repositories.Record, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().get(collection, id)
}

// List implements repositories.Reader.
func (s *Store) List(ctx context.Context, collection string, q repositories.Query) ([]repositories.Document, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().list(collection, q)
}

// Create implements repositories.Writer.
func (s *Store) Create(ctx context.Context, collection, id string, rec repositories.Record) error {
	return s.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Create(ctx, collection, id, rec)
	})
}

// Put implements repositories.Writer.
func (s *Store) Put(ctx context.Context, collection, id string, rec repositories.Record) error {
	return s.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Put(ctx, collection, id, rec)
	})
}

// Update implements repositories.Writer.
func (s *Store) Update(ctx context.Context, collection, id string, fields repositories.Record) error {
	return s.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Update(ctx, collection, id, fields)
	})
}

// Delete implements repositories.Writer.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return s.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Delete(ctx, collection, id)
	})
}

// RunInTransaction holds the store lock for the duration of fn, so fn must
// only use tx, never the Store itself.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Tx) error) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{base: s.state, staged: collections{}, now: s.now(), maxWrites: s.maxWrites}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := s.popCommitErr(); err != nil {
		return err
	}
	s.apply(tx.staged)
	return nil
}

func (s *Store) apply(staged collections) {
	for collection, docs := range staged {
		for id, rec := range docs {
			if rec == nil {
				delete(s.state[collection], id)
				if len(s.state[collection]) == 0 {
					delete(s.state, collection)
				}
				continue
			}
			if s.state[collection] == nil {
				s.state[collection] = map[string]repositories.Record{}
			}
			s.state[collection][id] = rec
		}
	}
}

func (s *Store) view() *transaction {
	return &transaction{base: s.state, staged: collections{}}
}

// transaction overlays staged writes on the committed state. A nil staged
// record marks a delete.
type transaction struct {
	base      collections
	staged    collections
	now       time.Time
	writes    int
	maxWrites int
}

func (tx *transaction) lookup(collection, id string) (repositories.Record, bool) {
	if docs, ok := tx.staged[collection]; ok {
		if rec, ok := docs[id]; ok {
			return rec, rec != nil
		}
	}
	rec, ok := tx.base[collection][id]
	return rec, ok
}

// countWrite charges one write against maxWrites. Every Put, Create, Update
// and Delete issued counts, including deletes of absent records.
func (tx *transaction) countWrite() error {
	tx.writes++
	if tx.maxWrites > 0 && tx.writes > tx.maxWrites {
		return fmt.Errorf("%w: transaction exceeds %d writes", domain.ErrInvalidArgument, tx.maxWrites)
	}
	return nil
}

func (tx *transaction) stage(collection, id string, rec repositories.Record) error {
	if tx.staged[collection] == nil {
		tx.staged[collection] = map[string]repositories.Record{}
	}
	tx.staged[collection][id] = rec
	return nil
}

func (tx *transaction) get(collection, id string) (repositories.Record, error) {
	rec, ok := tx.lookup(collection, id)
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	}
	return rec.Clone(), nil
}

func (tx *transaction) list(collection string, q repositories.Query) ([]repositories.Document, error) {
	filters := make([]repositories.Filter, len(q.Filters))
	for i, f := range q.Filters {
		v, err := repositories.NormalizeValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", f.Field, err)
		}
		filters[i] = repositories.Filter{Field: f.Field, Value: v}
	}

	ids := make(map[string]struct{})
	for id := range tx.base[collection] {
		ids[id] = struct{}{}
	}
	for id := range tx.staged[collection] {
		ids[id] = struct{}{}
	}

	var docs []repositories.Document
	for id := range ids {
		rec, ok := tx.lookup(collection, id)
		if !ok || !matches(rec, filters) {
			continue
		}
		docs = append(docs, repositories.Document{ID: id, Data: rec.Clone()})
	}

	sortDocuments(docs, q.OrderBy, q.Descending)
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func matches(rec repositories.Record, filters []repositories.Filter) bool {
	for _, f := range filters {
		v, ok := rec.Lookup(f.Field)
		if !ok || !repositories.EqualValues(v, f.Value) {
			return false
		}
	}
	return true
}

// sortDocuments orders by field with absent values last in either direction,
// breaking ties by id ascending.
func sortDocuments(docs []repositories.Document, field string, desc bool) {
	sort.Slice(docs, func(i, j int) bool {
		if field != "" {
			a, aok := docs[i].Data.Lookup(field)
			b, bok := docs[j].Data.Lookup(field)
			switch {
			case aok && !bok:
				return true
			case !aok && bok:
				return false
			case aok && bok:
				if c := repositories.CompareValues(a, b); c != 0 {
					if desc {
						return c > 0
					}
					return c < 0
				}
			}
		}
		return docs[i].ID < docs[j].ID
	})
}

func (tx *transaction) Get(ctx context.Context, collection, id string) (repositories.Record, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return tx.get(collection, id)
}

func (tx *transaction) List(ctx context.Context, collection string, q repositories.Query) ([]repositories.Document, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return tx.list(collection, q)
}

func (tx *transaction) Create(ctx context.Context, collection, id string, rec repositories.Record) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if _, ok := tx.lookup(collection, id); ok {
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrAlreadyExists)
	}
	return tx.Put(ctx, collection, id, rec)
}

func (tx *transaction) Put(ctx context.Context, collection, id string, rec repositories.Record) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: empty document id", domain.ErrInvalidArgument)
	}
	norm, err := repositories.Normalize(rec, tx.now)
	if err != nil {
		return err
	}
	if err := tx.countWrite(); err != nil {
		return err
	}
	return tx.stage(collection, id, norm)
}

func (tx *transaction) Update(ctx context.Context, collection, id string, fields repositories.Record) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := tx.countWrite(); err != nil {
		return err
	}
	cur, ok := tx.lookup(collection, id)
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	}
	set, removed := splitRemovals(fields)
	norm, err := repositories.Normalize(set, tx.now)
	if err != nil {
		return err
	}
	merged := cur.Clone()
	for _, k := range removed {
		delete(merged, k)
	}
	for k, v := range norm {
		merged[k] = v
	}
	return tx.stage(collection, id, merged)
}

func (tx *transaction) Delete(ctx context.Context, collection, id string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := tx.countWrite(); err != nil {
		return err
	}
	if _, ok := tx.lookup(collection, id); !ok {
		return nil
	}
	return tx.stage(collection, id, nil)
}

func splitRemovals(fields repositories.Record) (repositories.Record, []string) {
	set := make(repositories.Record, len(fields))
	var removed []string
	for k, v := range fields {
		if v == nil {
			removed = append(removed, k)
			continue
		}
		set[k] = v
	}
	return set, removed
}

// NewBatch implements repositories.Store.
func (s *Store) NewBatch() repositories.Batch {
	return &batch{store: s}
}

type batchOp struct {
	collection string
	id         string
	rec        repositories.Record // nil for delete
}

type batch struct {
	store *Store
	ops   []batchOp
}

func (b *batch) Put(collection, id string, rec repositories.Record) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id, rec: rec})
}

func (b *batch) Delete(collection, id string) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id})
}

func (b *batch) Len() int {
	return len(b.ops)
}

func (b *batch) Commit(ctx context.Context) error {
	return b.store.RunInTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		for _, op := range b.ops {
			var err error
			if op.rec == nil {
				err = tx.Delete(ctx, op.collection, op.id)
			} else {
				err = tx.Put(ctx, op.collection, op.id, op.rec)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Package postgres implements the inventory document store on a single
// PostgreSQL table holding JSONB documents keyed by (collection, id).
package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ghuser/nurseryinventory/pkg/database"
	"github.com/ghuser/nurseryinventory/services/inventory/domain"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/repositories"
)

var _ repositories.Store = (*DocumentStore)(nil)

// DefaultMaxWrites bounds the number of writes in one transaction or batch.
const DefaultMaxWrites = 500

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DocumentStore implements repositories.Store. Transactions run at
// SERIALIZABLE; a commit that loses to a concurrent writer surfaces as
// domain.ErrConflict.
type DocumentStore struct {
	db        *database.Database
	now       func() time.Time
	maxWrites int
}

// Option configures a DocumentStore.
type Option func(*DocumentStore)

// WithClock overrides the clock used for ServerTimestamp values.
func WithClock(now func() time.Time) Option {
	return func(s *DocumentStore) { s.now = now }
}

// WithMaxWrites overrides DefaultMaxWrites.
func WithMaxWrites(n int) Option {
	return func(s *DocumentStore) {
		if n > 0 {
			s.maxWrites = n
		}
	}
}

// NewDocumentStore returns a DocumentStore over db.
func NewDocumentStore(db *database.Database, opts ...Option) *DocumentStore {
	s := &DocumentStore{db: db, now: time.Now, maxWrites: DefaultMaxWrites}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping implements repositories.Store.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return classify("ping", s.db.Ping(ctx))
}

func (s *DocumentStore) direct() *docTx {
	return &docTx{q: s.db.DB(), now: s.now()}
}

// Get implements repositories.Reader.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (repositories.Record, error) {
	return s.direct().Get(ctx, collection, id)
}

// List implements repositories.Reader.
func (s *DocumentStore) List(ctx context.Context, collection string, q repositories.Query) ([]repositories.Document, error) {
	return s.direct().List(ctx, collection, q)
}

// Create implements repositories.Writer.
func (s *DocumentStore) Create(ctx context.Context, collection, id string, rec repositories.Record) error {
	return s.direct().Create(ctx, collection, id, rec)
}

// Put implements repositories.Writer.
func (s *DocumentStore) Put(ctx context.Context, collection, id string, rec repositories.Record) error {
	return s.direct().Put(ctx, collection, id, rec)
}

// Update implements repositories.Writer.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields repositories.Record) error {
	return s.direct().Update(ctx, collection, id, fields)
}

// Delete implements repositories.Writer.
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	return s.direct().Delete(ctx, collection, id)
}

// RunInTransaction implements repositories.Store.
func (s *DocumentStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Tx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	err := s.db.WithTxOptions(ctx, opts, func(sqlTx *sql.Tx) error {
		return fn(ctx, &docTx{q: sqlTx, now: s.now(), maxWrites: s.maxWrites})
	})
	return classify("transaction", err)
}

// NewBatch implements repositories.Store.
func (s *DocumentStore) NewBatch() repositories.Batch {
	return &batch{store: s}
}

// docTx runs document operations against a querier. With maxWrites set it
// counts every Put, Create, Update and Delete issued, including deletes of
// absent records, and refuses to exceed the limit.
type docTx struct {
	q         querier
	now       time.Time
	writes    int
	maxWrites int
}

func (t *docTx) countWrite() error {
	t.writes++
	if t.maxWrites > 0 && t.writes > t.maxWrites {
		return fmt.Errorf("%w: transaction exceeds %d writes", domain.ErrInvalidArgument, t.maxWrites)
	}
	return nil
}

const getSQL = `SELECT data FROM documents WHERE collection = $1 AND id = $2`

func (t *docTx) Get(ctx context.Context, collection, id string) (repositories.Record, error) {
	var raw []byte
	err := t.q.QueryRowContext(ctx, getSQL, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, classify("get document", err)
	}
	return decode(raw)
}

func (t *docTx) List(ctx context.Context, collection string, q repositories.Query) ([]repositories.Document, error) {
	query, args, err := buildListQuery(collection, q)
	if err != nil {
		return nil, err
	}
	rows, err := t.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list documents", err)
	}
	defer rows.Close() //nolint:errcheck

	var docs []repositories.Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, classify("scan document", err)
		}
		rec, err := decode(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, repositories.Document{ID: id, Data: rec})
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list documents", err)
	}
	return docs, nil
}

const insertSQL = `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`

func (t *docTx) Create(ctx context.Context, collection, id string, rec repositories.Record) error {
	payload, err := t.encode(id, rec)
	if err != nil {
		return err
	}
	if err := t.countWrite(); err != nil {
		return err
	}
	if _, err := t.q.ExecContext(ctx, insertSQL, collection, id, payload); err != nil {
		err = classify("insert document", err)
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

const upsertSQL = `
INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`

func (t *docTx) Put(ctx context.Context, collection, id string, rec repositories.Record) error {
	payload, err := t.encode(id, rec)
	if err != nil {
		return err
	}
	if err := t.countWrite(); err != nil {
		return err
	}
	_, err = t.q.ExecContext(ctx, upsertSQL, collection, id, payload)
	return classify("upsert document", err)
}

// Removed keys are dropped first, then the set fields are merged over the top
// level with jsonb concatenation.
const updateSQL = `
UPDATE documents SET data = (data - $3::text[]) || $4::jsonb, updated_at = now()
WHERE collection = $1 AND id = $2`

func (t *docTx) Update(ctx context.Context, collection, id string, fields repositories.Record) error {
	set := make(repositories.Record, len(fields))
	removed := []string{}
	for k, v := range fields {
		if v == nil {
			removed = append(removed, k)
			continue
		}
		set[k] = v
	}
	payload, err := t.encode(id, set)
	if err != nil {
		return err
	}
	if err := t.countWrite(); err != nil {
		return err
	}
	res, err := t.q.ExecContext(ctx, updateSQL, collection, id, removed, payload)
	if err != nil {
		return classify("update document", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("update document", err)
	}
	if n == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	}
	return nil
}

const deleteSQL = `DELETE FROM documents WHERE collection = $1 AND id = $2`

func (t *docTx) Delete(ctx context.Context, collection, id string) error {
	if err := t.countWrite(); err != nil {
		return err
	}
	_, err := t.q.ExecContext(ctx, deleteSQL, collection, id)
	return classify("delete document", err)
}

func (t *docTx) encode(id string, rec repositories.Record) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty document id", domain.ErrInvalidArgument)
	}
	norm, err := repositories.Normalize(rec, t.now)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(norm)
	if err != nil {
		return nil, fmt.Errorf("%w: encode document: %v", domain.ErrInvalidArgument, err)
	}
	return payload, nil
}

func decode(raw []byte) (repositories.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return repositories.Normalize(repositories.Record(m), time.Time{})
}

// buildListQuery renders a List as SQL. Ordering mirrors the memory adapter:
// documents lacking the field come last, values rank boolean < number <
// string, strings compare bytewise, ties break on id.
func buildListQuery(collection string, q repositories.Query) (string, []any, error) {
	var sb strings.Builder
	args := []any{collection}
	sb.WriteString("SELECT id, data FROM documents WHERE collection = $1")

	for _, f := range q.Filters {
		path, err := fieldPath(f.Field)
		if err != nil {
			return "", nil, err
		}
		v, err := repositories.NormalizeValue(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("filter %q: %w", f.Field, err)
		}
		payload, err := json.Marshal(v)
		if err != nil {
			return "", nil, fmt.Errorf("%w: filter %q: %v", domain.ErrInvalidArgument, f.Field, err)
		}
		args = append(args, path, string(payload))
		fmt.Fprintf(&sb, " AND data #> $%d::text[] = $%d::jsonb", len(args)-1, len(args))
	}

	sb.WriteString(" ORDER BY ")
	if q.OrderBy != "" {
		path, err := fieldPath(q.OrderBy)
		if err != nil {
			return "", nil, err
		}
		args = append(args, path)
		p := fmt.Sprintf("$%d::text[]", len(args))
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, "(data #> %[1]s) IS NULL ASC, "+
			"CASE jsonb_typeof(data #> %[1]s) WHEN 'boolean' THEN 0 WHEN 'number' THEN 1 WHEN 'string' THEN 2 ELSE 3 END %[2]s, "+
			"CASE WHEN jsonb_typeof(data #> %[1]s) = 'number' THEN (data #>> %[1]s)::numeric END %[2]s, "+
			"CASE WHEN jsonb_typeof(data #> %[1]s) IN ('string', 'boolean') THEN data #>> %[1]s END COLLATE \"C\" %[2]s, ",
			p, dir)
	}
	sb.WriteString(`id COLLATE "C" ASC`)

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	return sb.String(), args, nil
}

func fieldPath(field string) ([]string, error) {
	parts := strings.Split(field, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: invalid field path %q", domain.ErrInvalidArgument, field)
		}
	}
	return parts, nil
}

type batchOp struct {
	collection string
	id         string
	rec        repositories.Record // nil for delete
}

type batch struct {
	store *DocumentStore
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
	if b.store.maxWrites > 0 && len(b.ops) > b.store.maxWrites {
		return fmt.Errorf("%w: batch exceeds %d writes", domain.ErrInvalidArgument, b.store.maxWrites)
	}
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

package repositories

import "context"

// Filter is an equality predicate on a dotted field path, e.g.
// {Field: "configuration.publicVisible", Value: true}.
type Filter struct {
	Field string
	Value any
}

// Query narrows and orders a List call. Records lacking the OrderBy field sort
// last in both directions; ties are broken by document id ascending.
// Limit <= 0 means no limit.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Document is a stored record together with its id.
type Document struct {
	ID   string
	Data Record
}

// Reader is the read half of the store, shared by Store and Tx.
type Reader interface {
	// Get returns the record at collection/id or an error wrapping domain.ErrNotFound.
	Get(ctx context.Context, collection, id string) (Record, error)

	// List returns the documents of a collection matching q.
	List(ctx context.Context, collection string, q Query) ([]Document, error)
}

// Writer is the write half of the store, shared by Store and Tx.
type Writer interface {
	// Create writes rec only if no record exists at collection/id; otherwise it
	// returns an error wrapping domain.ErrAlreadyExists.
	Create(ctx context.Context, collection, id string, rec Record) error

	// Put writes rec at collection/id, replacing any existing record.
	Put(ctx context.Context, collection, id string, rec Record) error

	// Update merges fields into the top level of an existing record. A nil
	// value removes the field. Returns domain.ErrNotFound if absent.
	Update(ctx context.Context, collection, id string, fields Record) error

	// Delete removes collection/id. Deleting an absent record is not an error.
	Delete(ctx context.Context, collection, id string) error
}

// Tx is a transactional view of the store. Reads observe a consistent
// snapshot plus the transaction's own writes; writes become visible to others
// only when the enclosing RunInTransaction returns nil.
type Tx interface {
	Reader
	Writer
}

// Batch accumulates writes that are committed all-or-nothing.
type Batch interface {
	Put(collection, id string, rec Record)
	Delete(collection, id string)
	// Len returns the number of queued writes.
	Len() int
	// Commit applies every queued write atomically.
	Commit(ctx context.Context) error
}

// Store is the document store port consumed by the inventory services.
// Adapters translate their native failures into the domain sentinels:
// NotFound, AlreadyExists, InvalidArgument, Conflict, Timeout, Unavailable.
type Store interface {
	Reader
	Writer

	// RunInTransaction runs fn in a transaction and commits if fn returns nil.
	// A commit that loses to a concurrent writer fails with domain.ErrConflict
	// and applies nothing.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// NewBatch starts an empty write batch.
	NewBatch() Batch

	// Ping checks store reachability.
	Ping(ctx context.Context) error
}

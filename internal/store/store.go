package store

import "context"

// Provider is the minimal key-value seam every backend implements.
// Object storage, the local filesystem, bbolt, SQLite and memory all
// satisfy it; duplicate checks and batch policy live in the ops package
// so a new backend only needs point lookup, prefix listing and point
// write/delete.
type Provider interface {
	// GetByKey returns the record stored at key. Fails with ErrKeyNotFound
	// when nothing is stored there.
	GetByKey(ctx context.Context, key string) (Record, error)

	// Exists reports whether collection/id is stored. A missing record is
	// false, not an error.
	Exists(ctx context.Context, collection, id string) (bool, error)

	// Keys lists every key in the collection, following pagination until
	// the backend reports no more pages.
	Keys(ctx context.Context, collection string) ([]string, error)

	// Upsert writes or replaces the record and returns it unchanged.
	Upsert(ctx context.Context, collection string, data Record) (Record, error)

	// DeleteObject removes collection/id. Deleting a missing record is a no-op.
	DeleteObject(ctx context.Context, collection, id string) error
}

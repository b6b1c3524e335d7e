// Package ops implements collection operations on top of any
// store.Provider: reads, listing, counting, and writes guarded by
// duplicate/missing-key checks.
//
// The existence checks and the writes they guard are separate provider
// calls. Two concurrent Create calls for the same id can both pass the
// check and both write; the last write wins.
package ops

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"docstore/internal/logging"
	"docstore/internal/store"
)

var logger = logging.For("ops")

// EditFunc returns the replacement for a record. Errors are returned to
// the Edit caller unchanged.
type EditFunc func(ctx context.Context, current store.Record) (store.Record, error)

// Option configures Operations.
type Option func(*Operations)

// WithConcurrency bounds the number of in-flight provider calls a single
// fan-out operation issues. n <= 0 means unlimited.
func WithConcurrency(n int) Option {
	return func(o *Operations) { o.limit = n }
}

type Operations struct {
	provider store.Provider
	limit    int
}

func New(p store.Provider, opts ...Option) *Operations {
	o := &Operations{provider: p}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Provider returns the provider the operations run against.
func (o *Operations) Provider() store.Provider {
	return o.provider
}

func (o *Operations) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if o.limit > 0 {
		g.SetLimit(o.limit)
	}
	return g, gctx
}

// Get reads collection/id.
func (o *Operations) Get(ctx context.Context, collection, id string) (store.Record, error) {
	return o.provider.GetByKey(ctx, store.ToKey(collection, id))
}

// GetByID is an alias for Get.
func (o *Operations) GetByID(ctx context.Context, collection, id string) (store.Record, error) {
	return o.Get(ctx, collection, id)
}

// All fetches every record of the collection concurrently. Results follow
// the provider's key order.
func (o *Operations) All(ctx context.Context, collection string) ([]store.Record, error) {
	keys, err := o.provider.Keys(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]store.Record, len(keys))
	g, gctx := o.group(ctx)
	for i, key := range keys {
		g.Go(func() error {
			rec, err := o.provider.GetByKey(gctx, key)
			if err != nil {
				return err
			}
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// IDs returns the ids of every record in the collection.
func (o *Operations) IDs(ctx context.Context, collection string) ([]string, error) {
	keys, err := o.provider.Keys(ctx, collection)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		_, id, err := store.ParseKey(key)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (o *Operations) Count(ctx context.Context, collection string) (int, error) {
	keys, err := o.provider.Keys(ctx, collection)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (o *Operations) Exists(ctx context.Context, collection, id string) (bool, error) {
	return o.provider.Exists(ctx, collection, id)
}

// Create writes data unless a record with the same id already exists.
func (o *Operations) Create(ctx context.Context, collection string, data store.Record) (store.Record, error) {
	if err := store.ValidateID(collection, data); err != nil {
		return nil, err
	}
	exists, err := o.provider.Exists(ctx, collection, data.ID())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", store.ErrDuplicateKey, store.ToKey(collection, data.ID()))
	}
	return o.provider.Upsert(ctx, collection, data)
}

// CreateMany writes all records, or none of them if any id already exists.
func (o *Operations) CreateMany(ctx context.Context, collection string, data []store.Record) ([]store.Record, error) {
	ids := make([]string, len(data))
	for i, rec := range data {
		if err := store.ValidateID(collection, rec); err != nil {
			return nil, err
		}
		ids[i] = rec.ID()
	}
	existing, err := o.existing(ctx, collection, ids)
	if err != nil {
		return nil, err
	}
	for i, ok := range existing {
		if ok {
			return nil, fmt.Errorf("%w: cannot create items, %s already exists",
				store.ErrDuplicateKey, store.ToKey(collection, ids[i]))
		}
	}

	out := make([]store.Record, len(data))
	g, gctx := o.group(ctx)
	for i, rec := range data {
		g.Go(func() error {
			written, err := o.provider.Upsert(gctx, collection, rec)
			if err != nil {
				return err
			}
			out[i] = written
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("created records", "collection", collection, "count", len(out))
	return out, nil
}

// Update replaces an existing record. Fails with store.ErrKeyNotFound if
// there is nothing to replace.
func (o *Operations) Update(ctx context.Context, collection string, data store.Record) (store.Record, error) {
	if err := store.ValidateID(collection, data); err != nil {
		return nil, err
	}
	exists, err := o.provider.Exists(ctx, collection, data.ID())
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", store.ErrKeyNotFound, store.ToKey(collection, data.ID()))
	}
	return o.provider.Upsert(ctx, collection, data)
}

// Upsert writes data unconditionally.
func (o *Operations) Upsert(ctx context.Context, collection string, data store.Record) (store.Record, error) {
	if err := store.ValidateID(collection, data); err != nil {
		return nil, err
	}
	return o.provider.Upsert(ctx, collection, data)
}

func (o *Operations) DeleteObject(ctx context.Context, collection, id string) error {
	return o.provider.DeleteObject(ctx, collection, id)
}

// DeleteMany deletes all ids, or none of them if any id is missing.
func (o *Operations) DeleteMany(ctx context.Context, collection string, ids []string) error {
	existing, err := o.existing(ctx, collection, ids)
	if err != nil {
		return err
	}
	for i, ok := range existing {
		if !ok {
			return fmt.Errorf("%w: cannot delete items, %s does not exist",
				store.ErrKeyNotFound, store.ToKey(collection, ids[i]))
		}
	}
	return o.deleteIDs(ctx, collection, ids)
}

// DeleteAll deletes every record currently listed in the collection.
func (o *Operations) DeleteAll(ctx context.Context, collection string) error {
	ids, err := o.IDs(ctx, collection)
	if err != nil {
		return err
	}
	if err := o.deleteIDs(ctx, collection, ids); err != nil {
		return err
	}
	logger.Debug("deleted collection", "collection", collection, "count", len(ids))
	return nil
}

// Edit reads collection/id, applies fn, and updates the record with the
// result.
func (o *Operations) Edit(ctx context.Context, collection, id string, fn EditFunc) (store.Record, error) {
	current, err := o.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	modified, err := fn(ctx, current)
	if err != nil {
		return nil, err
	}
	return o.Update(ctx, collection, modified)
}

// existing checks every id concurrently; result[i] answers ids[i].
func (o *Operations) existing(ctx context.Context, collection string, ids []string) ([]bool, error) {
	out := make([]bool, len(ids))
	g, gctx := o.group(ctx)
	for i, id := range ids {
		g.Go(func() error {
			ok, err := o.provider.Exists(gctx, collection, id)
			if err != nil {
				return err
			}
			out[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Operations) deleteIDs(ctx context.Context, collection string, ids []string) error {
	g, gctx := o.group(ctx)
	for _, id := range ids {
		g.Go(func() error {
			return o.provider.DeleteObject(gctx, collection, id)
		})
	}
	return g.Wait()
}

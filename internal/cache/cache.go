// Package cache provides a read-through caching store.Provider.
//
// The cache wraps another Provider and memoizes GetByKey and Keys. Entries
// are addressed by paths rather than flat strings:
//
//	[collection, "retrieve", id]  a single record
//	[collection, "keys"]          the key listing of a collection
//
// Upsert writes through (the record entry is replaced with the written data
// and the listing is dropped); DeleteObject drops both. Exists is never
// cached. Invalidation is coarse: a write to one record never touches other
// records' entries.
package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"docstore/internal/logging"
	"docstore/internal/store"
)

var logger = logging.For("cache")

const (
	segRetrieve = "retrieve"
	segKeys     = "keys"
)

// Entry is one cached value. Value is a store.Record for retrieve paths and
// a []string for keys paths.
type Entry struct {
	Path  []string
	Value any
}

// Stats counts cache activity since construction.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Invalidations uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithMetrics registers hit, miss and invalidation counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Cache) { c.metricsReg = reg }
}

// Cache is a store.Provider wrapping another Provider. Safe for concurrent use.
type Cache struct {
	inner store.Provider

	mu      sync.Mutex
	entries []Entry
	// gen is bumped by every write so an in-flight miss can tell whether
	// its result went stale before it is stored.
	gen   uint64
	stats Stats

	metricsReg prometheus.Registerer
	metrics    *cacheMetrics
}

// New wraps inner. The cache lives as long as the returned value.
func New(inner store.Provider, opts ...Option) (*Cache, error) {
	c := &Cache{inner: inner}
	for _, o := range opts {
		o(c)
	}
	if c.metricsReg != nil {
		m, err := newCacheMetrics(c.metricsReg)
		if err != nil {
			return nil, err
		}
		c.metrics = m
	}
	return c, nil
}

func retrievePath(collection, id string) []string {
	return []string{collection, segRetrieve, id}
}

func keysPath(collection string) []string {
	return []string{collection, segKeys}
}

// Entries returns a deep copy of the whole cache store, for tests and
// debugging.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = Entry{Path: slices.Clone(e.Path), Value: cloneValue(e.Value)}
	}
	return out
}

// cloneValue copies a cached record or key listing. Cached records were
// produced by Clone, so cloning them again cannot fail.
func cloneValue(v any) any {
	switch v := v.(type) {
	case store.Record:
		r, err := v.Clone()
		if err != nil {
			return nil
		}
		return r
	case []string:
		return slices.Clone(v)
	default:
		return v
	}
}

// Stats returns a snapshot of the activity counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Invalidate drops entries equal to path (exact) or starting with path
// (prefix). It counts as a write for in-flight misses.
func (c *Cache) Invalidate(path []string, exact bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidateLocked(path, exact)
}

func (c *Cache) invalidateLocked(path []string, exact bool) {
	before := len(c.entries)
	c.entries = slices.DeleteFunc(c.entries, func(e Entry) bool {
		if exact {
			return slices.Equal(e.Path, path)
		}
		return len(e.Path) >= len(path) && slices.Equal(e.Path[:len(path)], path)
	})
	if n := before - len(c.entries); n > 0 {
		c.stats.Invalidations += uint64(n)
		c.metrics.invalidated(n)
	}
}

func (c *Cache) lookup(path []string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if slices.Equal(e.Path, path) {
			c.stats.Hits++
			c.metrics.hit()
			return e.Value, true
		}
	}
	c.stats.Misses++
	c.metrics.miss()
	return nil, false
}

func (c *Cache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// setLocked replaces any entry at path, keeping one entry per path.
func (c *Cache) setLocked(path []string, value any) {
	c.invalidateLocked(path, true)
	c.entries = append(c.entries, Entry{Path: path, Value: value})
}

// fill stores a value read from the inner provider unless a write happened
// since the read started.
func (c *Cache) fill(path []string, value any, startGen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != startGen {
		logger.Debug("discarding stale read", "path", path)
		return
	}
	c.setLocked(path, value)
}

func (c *Cache) GetByKey(ctx context.Context, key string) (store.Record, error) {
	collection, id, err := store.ParseKey(key)
	if err != nil {
		return nil, err
	}
	path := retrievePath(collection, id)
	if v, ok := c.lookup(path); ok {
		logger.Debug("cache hit", "path", path)
		return v.(store.Record).Clone()
	}
	logger.Debug("cache miss", "path", path)

	gen := c.generation()
	rec, err := c.inner.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	cached, err := rec.Clone()
	if err != nil {
		return nil, err
	}
	c.fill(path, cached, gen)
	return rec, nil
}

func (c *Cache) Exists(ctx context.Context, collection, id string) (bool, error) {
	return c.inner.Exists(ctx, collection, id)
}

func (c *Cache) Keys(ctx context.Context, collection string) ([]string, error) {
	path := keysPath(collection)
	if v, ok := c.lookup(path); ok {
		logger.Debug("cache hit", "path", path)
		return slices.Clone(v.([]string)), nil
	}
	logger.Debug("cache miss", "path", path)

	gen := c.generation()
	keys, err := c.inner.Keys(ctx, collection)
	if err != nil {
		return nil, err
	}
	c.fill(path, slices.Clone(keys), gen)
	return keys, nil
}

func (c *Cache) Upsert(ctx context.Context, collection string, data store.Record) (store.Record, error) {
	result, err := c.inner.Upsert(ctx, collection, data)
	if err != nil {
		return nil, err
	}
	path := retrievePath(collection, data.ID())
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidateLocked(keysPath(collection), true)
	cached, err := data.Clone()
	if err != nil {
		c.invalidateLocked(path, true)
		return nil, err
	}
	c.setLocked(path, cached)
	return result, nil
}

func (c *Cache) DeleteObject(ctx context.Context, collection, id string) error {
	if err := c.inner.DeleteObject(ctx, collection, id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidateLocked(retrievePath(collection, id), true)
	c.invalidateLocked(keysPath(collection), true)
	return nil
}

// Package backend builds the configured store.Provider.
package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"docstore/internal/cache"
	"docstore/internal/config"
	"docstore/internal/logging"
	"docstore/internal/store"
	"docstore/internal/store/bolt"
	"docstore/internal/store/fs"
	"docstore/internal/store/memory"
	"docstore/internal/store/s3"
	"docstore/internal/store/sqlite"
)

var logger = logging.For("backend")

// File names inside store.data_dir for the embedded databases.
const (
	BoltFile   = "docstore.db"
	SQLiteFile = "docstore.sqlite"
)

// Backend is an open provider plus whatever must be released with it.
type Backend struct {
	store.Provider

	// Cache is the decorator wrapping the backend, nil when disabled.
	Cache *cache.Cache

	closer func() error
}

// Close releases the underlying database handle, if any.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

// Open builds the provider selected by cfg.Store.Backend:
//
//	"fs"     - JSON files under data_dir (default)
//	"bolt"   - bbolt database at data_dir/docstore.db
//	"sqlite" - SQLite database at data_dir/docstore.sqlite
//	"s3"     - objects in s3.bucket
//	"memory" - in-memory, lost on exit
//
// With cache.enabled the provider is wrapped in a cache; cache counters are
// registered with reg when cache.metrics is set and reg is non-nil.
func Open(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b, err := openProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled {
		var opts []cache.Option
		if cfg.Cache.Metrics && reg != nil {
			opts = append(opts, cache.WithMetrics(reg))
		}
		c, err := cache.New(b.Provider, opts...)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("creating cache: %w", err)
		}
		b.Provider = c
		b.Cache = c
	}

	logger.Debug("backend opened", "backend", cfg.Store.Backend, "cache", cfg.Cache.Enabled)
	return b, nil
}

func openProvider(ctx context.Context, cfg *config.Config) (*Backend, error) {
	dataDir := config.ExpandHome(cfg.Store.DataDir)

	switch cfg.Store.Backend {
	case config.BackendFS, "":
		s, err := fs.Open(dataDir)
		if err != nil {
			return nil, err
		}
		return &Backend{Provider: s}, nil

	case config.BackendBolt:
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		s, err := bolt.Open(filepath.Join(dataDir, BoltFile))
		if err != nil {
			return nil, err
		}
		return &Backend{Provider: s, closer: s.Close}, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		s, err := sqlite.Open(filepath.Join(dataDir, SQLiteFile))
		if err != nil {
			return nil, err
		}
		return &Backend{Provider: s, closer: s.Close}, nil

	case config.BackendS3:
		client, err := s3.NewClient(ctx, s3.Options{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return &Backend{Provider: s3.New(client, cfg.S3.Bucket, cfg.S3.PageSize)}, nil

	case config.BackendMemory:
		return &Backend{Provider: memory.New()}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

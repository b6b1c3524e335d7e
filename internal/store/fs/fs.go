// Package fs stores each record as <base>/<collection>/<id>.json.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"docstore/internal/logging"
	"docstore/internal/store"
)

var logger = logging.For("store.fs")

// Store implements store.Provider on the local filesystem.
type Store struct {
	base string
}

// Open returns a Store rooted at base, creating the directory if needed.
func Open(base string) (*Store, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Store{base: base}, nil
}

func (s *Store) filePath(key string) string {
	return filepath.Join(s.base, filepath.FromSlash(key))
}

func (s *Store) GetByKey(_ context.Context, key string) (store.Record, error) {
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", store.ErrKeyNotFound, key, err)
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return store.Decode(data)
}

func (s *Store) Exists(_ context.Context, collection, id string) (bool, error) {
	_, err := os.Stat(s.filePath(store.ToKey(collection, id)))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s/%s: %w", collection, id, err)
}

// Keys lists the regular entries directly under the collection directory.
func (s *Store) Keys(_ context.Context, collection string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.base, collection))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		keys = append(keys, path.Join(collection, e.Name()))
	}
	return keys, nil
}

func (s *Store) Upsert(_ context.Context, collection string, data store.Record) (store.Record, error) {
	b, err := store.Encode(data)
	if err != nil {
		return nil, err
	}
	p := s.filePath(store.ToKey(collection, data.ID()))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("creating collection dir: %w", err)
	}
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s/%s: %w", collection, data.ID(), err)
	}
	return data, nil
}

func (s *Store) DeleteObject(_ context.Context, collection, id string) error {
	err := os.Remove(s.filePath(store.ToKey(collection, id)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	if err != nil {
		logger.Debug("delete of missing record ignored", "collection", collection, "id", id)
	}
	return nil
}

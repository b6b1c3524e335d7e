package bolt

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"docstore/internal/store"
)

// Store implements store.Provider on bbolt (embedded B+ tree).
// Each collection is a bucket; records are keyed by id.
type Store struct {
	db *bolt.DB
}

// Open creates or opens a bbolt database at the given path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) GetByKey(_ context.Context, key string) (store.Record, error) {
	collection, id, err := store.ParseKey(key)
	if err != nil {
		return nil, err
	}
	var val []byte
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(id)); v != nil {
			val = make([]byte, len(v))
			copy(val, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	if val == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrKeyNotFound, key)
	}
	return store.Decode(val)
}

func (s *Store) Exists(_ context.Context, collection, id string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		found = b != nil && b.Get([]byte(id)) != nil
		return nil
	})
	return found, err
}

// Keys walks the collection bucket in byte order.
func (s *Store) Keys(_ context.Context, collection string) ([]string, error) {
	keys := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, store.ToKey(collection, string(k)))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	return keys, nil
}

func (s *Store) Upsert(_ context.Context, collection string, data store.Record) (store.Record, error) {
	val, err := store.Encode(data)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		return b.Put([]byte(data.ID()), val)
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) DeleteObject(_ context.Context, collection, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(id))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Package client binds collection names to the operations layer.
//
// A Schema lists the collections a client may address. Once a Client is
// built from it the schema is sealed and further Define calls fail with
// store.ErrReadOnly.
package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"docstore/internal/ops"
	"docstore/internal/store"
)

var ErrUnknownCollection = errors.New("collection not defined in schema")

type Schema struct {
	mu     sync.Mutex
	names  []string
	sealed bool
}

func NewSchema(names ...string) (*Schema, error) {
	s := &Schema{}
	for _, n := range names {
		if err := s.Define(n); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Define adds a collection. Defining the same name twice is a no-op.
func (s *Schema) Define(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty collection", store.ErrInvalidKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return fmt.Errorf("%w: cannot define %q", store.ErrReadOnly, name)
	}
	if !slices.Contains(s.names, name) {
		s.names = append(s.names, name)
	}
	return nil
}

func (s *Schema) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.names, name)
}

// Names returns the defined collections in definition order.
func (s *Schema) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.names)
}

func (s *Schema) seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

// Client hands out per-collection handles. A nil schema allows any
// collection name.
type Client struct {
	ops    *ops.Operations
	schema *Schema
}

func New(o *ops.Operations, schema *Schema) *Client {
	if schema != nil {
		schema.seal()
	}
	return &Client{ops: o, schema: schema}
}

// Collection returns the handle for name.
func (c *Client) Collection(name string) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty collection", store.ErrInvalidKey)
	}
	if c.schema != nil && !c.schema.Has(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return &Collection{name: name, ops: c.ops}, nil
}

// Collection is a set of operations bound to one collection name.
type Collection struct {
	name string
	ops  *ops.Operations
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Get(ctx context.Context, id string) (store.Record, error) {
	return c.ops.GetByID(ctx, c.name, id)
}

func (c *Collection) All(ctx context.Context) ([]store.Record, error) {
	return c.ops.All(ctx, c.name)
}

func (c *Collection) IDs(ctx context.Context) ([]string, error) {
	return c.ops.IDs(ctx, c.name)
}

func (c *Collection) Count(ctx context.Context) (int, error) {
	return c.ops.Count(ctx, c.name)
}

func (c *Collection) Exists(ctx context.Context, id string) (bool, error) {
	return c.ops.Exists(ctx, c.name, id)
}

func (c *Collection) Create(ctx context.Context, data store.Record) (store.Record, error) {
	return c.ops.Create(ctx, c.name, data)
}

func (c *Collection) CreateMany(ctx context.Context, data []store.Record) ([]store.Record, error) {
	return c.ops.CreateMany(ctx, c.name, data)
}

func (c *Collection) Update(ctx context.Context, data store.Record) (store.Record, error) {
	return c.ops.Update(ctx, c.name, data)
}

func (c *Collection) Upsert(ctx context.Context, data store.Record) (store.Record, error) {
	return c.ops.Upsert(ctx, c.name, data)
}

func (c *Collection) Delete(ctx context.Context, id string) error {
	return c.ops.DeleteObject(ctx, c.name, id)
}

func (c *Collection) DeleteMany(ctx context.Context, ids []string) error {
	return c.ops.DeleteMany(ctx, c.name, ids)
}

func (c *Collection) DeleteAll(ctx context.Context) error {
	return c.ops.DeleteAll(ctx, c.name)
}

func (c *Collection) Edit(ctx context.Context, id string, fn ops.EditFunc) (store.Record, error) {
	return c.ops.Edit(ctx, c.name, id, fn)
}

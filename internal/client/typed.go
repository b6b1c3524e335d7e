package client

import (
	"context"
	"encoding/json"
	"fmt"

	"docstore/internal/store"
)

// Typed converts between records and T using T's JSON encoding. T must
// marshal to a JSON object with a string "id" field.
type Typed[T any] struct {
	c *Collection
}

func NewTyped[T any](c *Collection) *Typed[T] {
	return &Typed[T]{c: c}
}

func toRecord[T any](v T) (store.Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", v, err)
	}
	return store.Decode(b)
}

func fromRecord[T any](r store.Record) (T, error) {
	var v T
	b, err := store.Encode(r)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("decoding %T: %w", v, err)
	}
	return v, nil
}

func fromRecords[T any](rs []store.Record) ([]T, error) {
	out := make([]T, len(rs))
	for i, r := range rs {
		v, err := fromRecord[T](r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (t *Typed[T]) write(ctx context.Context, v T, fn func(context.Context, store.Record) (store.Record, error)) (T, error) {
	var zero T
	r, err := toRecord(v)
	if err != nil {
		return zero, err
	}
	out, err := fn(ctx, r)
	if err != nil {
		return zero, err
	}
	return fromRecord[T](out)
}

func (t *Typed[T]) Get(ctx context.Context, id string) (T, error) {
	r, err := t.c.Get(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return fromRecord[T](r)
}

func (t *Typed[T]) All(ctx context.Context) ([]T, error) {
	rs, err := t.c.All(ctx)
	if err != nil {
		return nil, err
	}
	return fromRecords[T](rs)
}

func (t *Typed[T]) Create(ctx context.Context, v T) (T, error) {
	return t.write(ctx, v, t.c.Create)
}

func (t *Typed[T]) Update(ctx context.Context, v T) (T, error) {
	return t.write(ctx, v, t.c.Update)
}

func (t *Typed[T]) Upsert(ctx context.Context, v T) (T, error) {
	return t.write(ctx, v, t.c.Upsert)
}

func (t *Typed[T]) CreateMany(ctx context.Context, vs []T) ([]T, error) {
	rs := make([]store.Record, len(vs))
	for i, v := range vs {
		r, err := toRecord(v)
		if err != nil {
			return nil, err
		}
		rs[i] = r
	}
	out, err := t.c.CreateMany(ctx, rs)
	if err != nil {
		return nil, err
	}
	return fromRecords[T](out)
}

// Edit decodes the stored record into T, applies fn and writes the result.
func (t *Typed[T]) Edit(ctx context.Context, id string, fn func(context.Context, T) (T, error)) (T, error) {
	out, err := t.c.Edit(ctx, id, func(ctx context.Context, current store.Record) (store.Record, error) {
		v, err := fromRecord[T](current)
		if err != nil {
			return nil, err
		}
		v, err = fn(ctx, v)
		if err != nil {
			return nil, err
		}
		return toRecord(v)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return fromRecord[T](out)
}

// Collection returns the untyped handle for operations that do not
// involve T.
func (t *Typed[T]) Collection() *Collection {
	return t.c
}

// Package storetest is the shared contract suite every store.Provider
// implementation runs from its own tests.
package storetest

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"docstore/internal/store"
)

// Run exercises p against the Provider contract. p must start empty.
func Run(t *testing.T, p store.Provider) {
	t.Helper()
	ctx := context.Background()

	t.Run("Keys empty collection", func(t *testing.T) {
		keys, err := p.Keys(ctx, "empty")
		if err != nil {
			t.Fatal(err)
		}
		if len(keys) != 0 {
			t.Fatalf("expected 0 keys, got %v", keys)
		}
	})

	t.Run("GetByKey missing", func(t *testing.T) {
		_, err := p.GetByKey(ctx, store.ToKey("users", "missing"))
		if !errors.Is(err, store.ErrKeyNotFound) {
			t.Fatalf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Exists missing", func(t *testing.T) {
		ok, err := p.Exists(ctx, "users", "missing")
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("expected exists=false")
		}
	})

	t.Run("Upsert and GetByKey", func(t *testing.T) {
		rec := store.Record{"id": "1", "name": "Ada", "age": float64(36), "tags": []any{"math"}}
		got, err := p.Upsert(ctx, "users", rec)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(rec, got); diff != "" {
			t.Fatalf("Upsert should return the record unchanged (-want +got):\n%s", diff)
		}

		read, err := p.GetByKey(ctx, store.ToKey("users", "1"))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(rec, read); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Exists after upsert", func(t *testing.T) {
		ok, err := p.Exists(ctx, "users", "1")
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("expected exists=true")
		}
	})

	t.Run("Upsert overwrites", func(t *testing.T) {
		if _, err := p.Upsert(ctx, "users", store.Record{"id": "1", "name": "Grace"}); err != nil {
			t.Fatal(err)
		}
		read, err := p.GetByKey(ctx, store.ToKey("users", "1"))
		if err != nil {
			t.Fatal(err)
		}
		if read["name"] != "Grace" {
			t.Fatalf("expected name=Grace, got %v", read["name"])
		}
		if _, ok := read["age"]; ok {
			t.Fatal("upsert should replace, not merge")
		}
	})

	t.Run("Keys lists collection", func(t *testing.T) {
		if _, err := p.Upsert(ctx, "users", store.Record{"id": "2", "name": "Linus"}); err != nil {
			t.Fatal(err)
		}
		keys, err := p.Keys(ctx, "users")
		if err != nil {
			t.Fatal(err)
		}
		sort.Strings(keys)
		want := []string{"users/1.json", "users/2.json"}
		if diff := cmp.Diff(want, keys); diff != "" {
			t.Fatalf("keys mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Collections are isolated", func(t *testing.T) {
		if _, err := p.Upsert(ctx, "products", store.Record{"id": "1", "price": float64(499)}); err != nil {
			t.Fatal(err)
		}
		u, err := p.GetByKey(ctx, store.ToKey("users", "1"))
		if err != nil {
			t.Fatal(err)
		}
		pr, err := p.GetByKey(ctx, store.ToKey("products", "1"))
		if err != nil {
			t.Fatal(err)
		}
		if u["name"] != "Grace" || pr["price"] != float64(499) {
			t.Fatalf("collections leaked: users=%v products=%v", u, pr)
		}
		keys, err := p.Keys(ctx, "products")
		if err != nil {
			t.Fatal(err)
		}
		if len(keys) != 1 {
			t.Fatalf("expected 1 product key, got %v", keys)
		}
	})

	t.Run("Returned records are copies", func(t *testing.T) {
		rec := store.Record{"id": "3", "name": "Ken"}
		if _, err := p.Upsert(ctx, "users", rec); err != nil {
			t.Fatal(err)
		}
		rec["name"] = "mutated"
		read, err := p.GetByKey(ctx, store.ToKey("users", "3"))
		if err != nil {
			t.Fatal(err)
		}
		if read["name"] != "Ken" {
			t.Fatalf("stored record aliased caller map: %v", read)
		}
	})

	t.Run("DeleteObject existing", func(t *testing.T) {
		if err := p.DeleteObject(ctx, "users", "1"); err != nil {
			t.Fatal(err)
		}
		ok, err := p.Exists(ctx, "users", "1")
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("expected exists=false after delete")
		}
		if _, err := p.GetByKey(ctx, store.ToKey("users", "1")); !errors.Is(err, store.ErrKeyNotFound) {
			t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
		}
	})

	t.Run("DeleteObject missing is a no-op", func(t *testing.T) {
		if err := p.DeleteObject(ctx, "users", "nope"); err != nil {
			t.Fatalf("expected idempotent delete, got %v", err)
		}
		if err := p.DeleteObject(ctx, "never-created", "nope"); err != nil {
			t.Fatalf("expected idempotent delete on missing collection, got %v", err)
		}
	})
}

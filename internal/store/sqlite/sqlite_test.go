package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"docstore/internal/store"
	"docstore/internal/store/storetest"
)

func TestContract(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	storetest.Run(t, s)
}

func TestInMemoryContract(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	storetest.Run(t, s)
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docs.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.Upsert(ctx, "users", store.Record{"id": "1"}); err != nil {
		t.Fatal(err)
	}
	n, err := s.Keys(ctx, "users")
	if err != nil {
		t.Fatal(err)
	}
	if len(n) != 1 {
		t.Fatalf("expected 1 key, got %v", n)
	}
}

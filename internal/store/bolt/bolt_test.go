package bolt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"docstore/internal/store"
	"docstore/internal/store/storetest"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestContract(t *testing.T) {
	storetest.Run(t, tempStore(t))
}

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file should exist: %v", err)
	}
}

func TestOpenInvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Fatal("opening db in nonexistent dir should fail")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert(ctx, "users", store.Record{"id": "1", "name": "Ada"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	rec, err := s2.GetByKey(ctx, "users/1.json")
	if err != nil {
		t.Fatal(err)
	}
	if rec["name"] != "Ada" {
		t.Fatalf("expected Ada after reopen, got %v", rec)
	}
}

func TestKeysInByteOrder(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		if _, err := s.Upsert(ctx, "letters", store.Record{"id": id}); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := s.Keys(ctx, "letters")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"letters/a.json", "letters/b.json", "letters/c.json"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}

func TestGetByKeyInvalid(t *testing.T) {
	s := tempStore(t)
	_, err := s.GetByKey(context.Background(), "no-slash")
	if !errors.Is(err, store.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

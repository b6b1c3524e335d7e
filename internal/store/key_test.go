package store

import (
	"errors"
	"testing"
)

func TestToKey(t *testing.T) {
	if got := ToKey("users", "1"); got != "users/1.json" {
		t.Fatalf("ToKey: got %q, want users/1.json", got)
	}
}

func TestParseKeyInvertsToKey(t *testing.T) {
	pairs := []struct{ collection, id string }{
		{"users", "1"},
		{"products", "ps5"},
		{"a", "b"},
		{"order_items", "2024-01-01_abc"},
		{"CamelCase", "X-Y_z09"},
	}
	for _, p := range pairs {
		c, id, err := ParseKey(ToKey(p.collection, p.id))
		if err != nil {
			t.Fatalf("ParseKey(ToKey(%q, %q)): %v", p.collection, p.id, err)
		}
		if c != p.collection || id != p.id {
			t.Errorf("round trip: got (%q, %q), want (%q, %q)", c, id, p.collection, p.id)
		}
	}
}

func TestParseKeyInvalid(t *testing.T) {
	for _, key := range []string{"", "users", "users/", "/1.json", "users/.json", "noslash.json"} {
		_, _, err := ParseKey(key)
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ParseKey(%q): got %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestParseKeyStopsAtFirstDot(t *testing.T) {
	c, id, err := ParseKey("users/1.backup.json")
	if err != nil {
		t.Fatal(err)
	}
	if c != "users" || id != "1" {
		t.Fatalf("got (%q, %q), want (users, 1)", c, id)
	}
}

package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrKeyNotFound, ErrDuplicateKey, ErrEmptyBody, ErrInvalidKey, ErrReadOnly}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	cause := errors.New("backend said no")
	err := fmt.Errorf("%w: users/1.json: %w", ErrKeyNotFound, cause)
	if !errors.Is(err, ErrKeyNotFound) || !errors.Is(err, cause) {
		t.Fatalf("expected both sentinel and cause in %v", err)
	}
	if errors.Is(err, ErrEmptyBody) {
		t.Fatal("wrapped not-found must not read as empty body")
	}
}

package store

import (
	"fmt"
	"strings"
)

// KeySuffix is appended to every record id to form its storage key.
const KeySuffix = ".json"

// ToKey formats the storage key for collection/id.
func ToKey(collection, id string) string {
	return collection + "/" + id + KeySuffix
}

// ParseKey splits a key produced by ToKey back into collection and id.
// It is only an inverse of ToKey when neither collection nor id contain
// "/" or "."; callers are expected to keep names within that alphabet.
func ParseKey(key string) (collection, id string, err error) {
	collection, file, _ := strings.Cut(key, "/")
	id, _, _ = strings.Cut(file, ".")
	if collection == "" || id == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return collection, id, nil
}

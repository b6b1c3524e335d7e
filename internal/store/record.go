package store

import (
	"encoding/json"
	"fmt"
)

// Record is a single JSON document. Every record carries a string "id"
// field that is unique within its collection.
type Record map[string]any

// ID returns the record's id, or "" when it is missing or not a string.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Clone returns a deep copy by round-tripping through JSON, so numbers
// come back as float64 exactly as they would from any backend.
func (r Record) Clone() (Record, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return Decode(b)
}

// Encode marshals the record for storage.
func Encode(r Record) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding record %q: %w", r.ID(), err)
	}
	return b, nil
}

// Decode unmarshals a stored record.
func Decode(b []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return r, nil
}

// ValidateID rejects records that cannot be addressed by a key.
func ValidateID(collection string, r Record) error {
	if collection == "" {
		return fmt.Errorf("%w: empty collection", ErrInvalidKey)
	}
	if r.ID() == "" {
		return fmt.Errorf("%w: record in %q has no string id", ErrInvalidKey, collection)
	}
	return nil
}

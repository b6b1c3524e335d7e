package store

import "errors"

var (
	// ErrKeyNotFound is returned when no record is stored at a key, and by
	// Update, Edit and DeleteMany when a target record is missing.
	ErrKeyNotFound = errors.New("key does not exist")

	// ErrDuplicateKey is returned by Create and CreateMany when a record
	// with the same id already exists.
	ErrDuplicateKey = errors.New("key already exists")

	// ErrEmptyBody is returned when object storage answers a read
	// successfully but without a payload.
	ErrEmptyBody = errors.New("backend response has no body")

	// ErrInvalidKey is returned for keys that do not parse and for records
	// without a string id or collection name.
	ErrInvalidKey = errors.New("invalid key")

	// ErrReadOnly is returned by Schema.Define once the schema has been
	// sealed by building a client from it.
	ErrReadOnly = errors.New("collection namespace is read-only")
)

package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("blob not found")

// Store defines the contract for keyed binary storage of session artifacts.
// Keys are slash-separated relative paths; a trailing-slash prefix names a
// namespace.
type Store interface {
	// Put writes the reader contents under key, replacing any existing
	// object atomically at object granularity.
	Put(ctx context.Context, key string, contentType string, r io.Reader) (int64, error)
	// Get opens the object at key for reading. Returns ErrNotFound when
	// the key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// List returns all keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

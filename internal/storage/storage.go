// Package storage defines the durable ordered key-value store used to hold
// all contract state.
//
// Keys are globally ordered byte strings. Contracts carve out namespaces by
// key prefix (for example "col/character/token/"). A single writable
// transaction spans one inbound call, so every mutation attempted since
// entry either commits or is discarded together.
package storage

import "errors"

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// KV is a transactional view over an ordered key space.
type KV interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(key []byte) ([]byte, error)
	// Put stores value at key, overwriting any previous value.
	Put(key, value []byte) error
	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key []byte) error
	// Scan visits keys with the given prefix in lexicographic order,
	// starting strictly after startAfter when it is non-nil. It stops
	// after limit entries (no limit when limit <= 0) or when fn returns
	// ErrStopScan.
	Scan(prefix, startAfter []byte, limit int, fn func(key, value []byte) error) error
}

// ErrStopScan stops a Scan early without reporting an error.
var ErrStopScan = errors.New("stop scan")

// DB provides transactional access to the store.
type DB interface {
	// View runs fn in a read-only transaction.
	View(fn func(KV) error) error
	// Update runs fn in a writable transaction. If fn returns an error
	// the transaction is rolled back and no write is visible.
	Update(fn func(KV) error) error
	// Close releases the underlying database.
	Close() error
}

// Join concatenates key segments with the "/" separator.
func Join(segments ...string) []byte {
	size := 0
	for _, s := range segments {
		size += len(s) + 1
	}
	key := make([]byte, 0, size)
	for i, s := range segments {
		if i > 0 {
			key = append(key, '/')
		}
		key = append(key, s...)
	}
	return key
}

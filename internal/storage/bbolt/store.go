// Package bbolt provides the BoltDB-backed contract state store.
package bbolt

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/louisbranch/menagerie/internal/storage"
)

const stateBucket = "state"

// Store provides a BoltDB-backed implementation of storage.DB.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// View runs fn in a read-only transaction.
func (s *Store) View(fn func(storage.KV) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		return fn(&kv{bucket: bucket})
	})
}

// Update runs fn in a writable transaction.
func (s *Store) Update(fn func(storage.KV) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		return fn(&kv{bucket: bucket})
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(stateBucket))
		if err != nil {
			return fmt.Errorf("create state bucket: %w", err)
		}
		return nil
	})
}

// kv adapts a bbolt bucket to storage.KV. Values returned by bbolt are only
// valid for the life of the transaction, so Get copies them out.
type kv struct {
	bucket *bbolt.Bucket
}

func (k *kv) Get(key []byte) ([]byte, error) {
	value := k.bucket.Get(key)
	if value == nil {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (k *kv) Put(key, value []byte) error {
	return k.bucket.Put(key, value)
}

func (k *kv) Delete(key []byte) error {
	return k.bucket.Delete(key)
}

func (k *kv) Scan(prefix, startAfter []byte, limit int, fn func(key, value []byte) error) error {
	cursor := k.bucket.Cursor()

	seek := prefix
	if len(startAfter) > 0 {
		// Seek to the first key strictly after startAfter.
		seek = append(append([]byte{}, startAfter...), 0x00)
	}

	seen := 0
	for key, value := cursor.Seek(seek); key != nil && bytes.HasPrefix(key, prefix); key, value = cursor.Next() {
		if limit > 0 && seen >= limit {
			return nil
		}
		if err := fn(key, value); err != nil {
			if err == storage.ErrStopScan {
				return nil
			}
			return err
		}
		seen++
	}
	return nil
}

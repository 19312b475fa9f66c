// Package memory provides an in-memory storage.DB used by tests and
// throwaway environments. Writes are buffered per transaction and applied
// atomically on success, matching the rollback semantics of the durable
// store.
package memory

import (
	"bytes"
	"errors"
	"sort"
	"sync"

	"github.com/louisbranch/menagerie/internal/storage"
)

var errReadOnly = errors.New("write in read-only transaction")

// Store is an in-memory implementation of storage.DB.
type Store struct {
	mu   sync.Mutex
	data map[string][]byte
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// View runs fn against a snapshot of the current data.
func (s *Store) View(fn func(storage.KV) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&kv{base: s.data, writes: nil})
}

// Update runs fn against a write buffer and applies it only when fn
// succeeds.
func (s *Store) Update(fn func(storage.KV) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := &kv{base: s.data, writes: make(map[string][]byte)}
	if err := fn(view); err != nil {
		return err
	}
	for key, value := range view.writes {
		if value == nil {
			delete(s.data, key)
			continue
		}
		s.data[key] = value
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// KV returns an auto-committing view over the store, for callers that do
// not need transaction boundaries (mostly tests driving contract logic
// directly).
func (s *Store) KV() storage.KV {
	return &autoKV{store: s}
}

type autoKV struct {
	store *Store
}

func (a *autoKV) Get(key []byte) ([]byte, error) {
	var out []byte
	err := a.store.View(func(kv storage.KV) error {
		value, err := kv.Get(key)
		if err != nil {
			return err
		}
		out = value
		return nil
	})
	return out, err
}

func (a *autoKV) Put(key, value []byte) error {
	return a.store.Update(func(kv storage.KV) error {
		return kv.Put(key, value)
	})
}

func (a *autoKV) Delete(key []byte) error {
	return a.store.Update(func(kv storage.KV) error {
		return kv.Delete(key)
	})
}

func (a *autoKV) Scan(prefix, startAfter []byte, limit int, fn func(key, value []byte) error) error {
	return a.store.View(func(kv storage.KV) error {
		return kv.Scan(prefix, startAfter, limit, fn)
	})
}

// kv layers a write buffer over the committed data. A nil buffered value
// marks a deletion.
type kv struct {
	base   map[string][]byte
	writes map[string][]byte
}

func (k *kv) Get(key []byte) ([]byte, error) {
	if k.writes != nil {
		if value, ok := k.writes[string(key)]; ok {
			if value == nil {
				return nil, storage.ErrNotFound
			}
			return append([]byte(nil), value...), nil
		}
	}
	value, ok := k.base[string(key)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (k *kv) Put(key, value []byte) error {
	if k.writes == nil {
		return errReadOnly
	}
	k.writes[string(key)] = append([]byte(nil), value...)
	return nil
}

func (k *kv) Delete(key []byte) error {
	if k.writes == nil {
		return errReadOnly
	}
	k.writes[string(key)] = nil
	return nil
}

func (k *kv) Scan(prefix, startAfter []byte, limit int, fn func(key, value []byte) error) error {
	merged := make(map[string][]byte, len(k.base))
	for key, value := range k.base {
		merged[key] = value
	}
	for key, value := range k.writes {
		if value == nil {
			delete(merged, key)
			continue
		}
		merged[key] = value
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		if !bytes.HasPrefix([]byte(key), prefix) {
			continue
		}
		if len(startAfter) > 0 && key <= string(startAfter) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := 0
	for _, key := range keys {
		if limit > 0 && seen >= limit {
			return nil
		}
		if err := fn([]byte(key), merged[key]); err != nil {
			if err == storage.ErrStopScan {
				return nil
			}
			return err
		}
		seen++
	}
	return nil
}

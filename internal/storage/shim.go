// Package storage presents a key/value interface over the primary datastore
// with transparent fallback to the local snapshot store. Components that
// need durable state (device identifiers, queued writes) use this instead
// of talking to either store directly.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/craftline/pricedeskgo/internal/store"
	syncx "github.com/craftline/pricedeskgo/internal/sync"
)

// Shim is the storage compatibility layer. The fallback is deliberately
// asymmetric: writes go down to local storage on permission denial so they
// never fail for lack of rights, reads go memory → primary → local and
// migrate local-only values back up once the primary accepts them.
//
// Operations are serialized per key, not globally: a primary write stuck
// in retry backoff must not block reads of unrelated keys.
type Shim struct {
	mu      sync.Mutex // guards mem and locks
	mem     map[string]string
	locks   map[string]*sync.Mutex
	primary store.KVStore
	local   store.KVStore
	retry   *syncx.Executor
}

// New creates a shim over a primary and a local key/value store.
func New(primary, local store.KVStore, retry *syncx.Executor) *Shim {
	if retry == nil {
		retry = syncx.NewExecutor()
	}
	return &Shim{
		mem:     make(map[string]string),
		locks:   make(map[string]*sync.Mutex),
		primary: primary,
		local:   local,
		retry:   retry,
	}
}

// keyLock returns the mutex serializing operations on one key.
func (s *Shim) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *Shim) memGet(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.mem[key]
	return v, ok
}

func (s *Shim) memSet(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem[key] = value
}

func (s *Shim) memDelete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mem, key)
}

// SetItem writes a value. The primary datastore is tried first; a
// permission-denied failure falls back to the local store and the call
// still succeeds. Other failures are surfaced.
func (s *Shim) SetItem(ctx context.Context, key, value string) error {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	err := s.retry.Do(ctx, "kv set "+key, func(ctx context.Context) error {
		return s.primary.Set(ctx, key, value)
	})
	if err != nil {
		if !store.IsPermissionDenied(err) {
			return err
		}
		log.Printf("⚠️ Shim: primary denied set %q, writing to local store", key)
		if localErr := s.local.Set(ctx, key, value); localErr != nil {
			return fmt.Errorf("set %q: primary denied and local failed: %w", key, localErr)
		}
	}

	s.memSet(key, value)
	return nil
}

// GetItem reads a value: memory cache first, then the primary datastore,
// then the local store. A value found only locally is opportunistically
// migrated up to the primary. The bool reports whether the key exists in
// any layer, so a stored empty string and a missing key stay distinct.
func (s *Shim) GetItem(ctx context.Context, key string) (string, bool, error) {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if value, ok := s.memGet(key); ok {
		return value, true, nil
	}

	value, primaryErr := s.primary.Get(ctx, key)
	if primaryErr == nil {
		s.memSet(key, value)
		return value, true, nil
	}
	if !errors.Is(primaryErr, store.ErrNotFound) {
		log.Printf("⚠️ Shim: primary get %q failed (%v), falling back to local", key, primaryErr)
	}

	value, localErr := s.local.Get(ctx, key)
	if localErr != nil {
		if errors.Is(localErr, store.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %q: %w", key, localErr)
	}

	s.memSet(key, value)
	s.migrateUp(ctx, key, value, primaryErr)
	return value, true, nil
}

// migrateUp pushes a local-only value to the primary when the primary is
// answering again. Best effort: failure leaves the value local.
func (s *Shim) migrateUp(ctx context.Context, key, value string, primaryErr error) {
	if !errors.Is(primaryErr, store.ErrNotFound) {
		// Primary is failing, not missing the key; don't pile writes on
		return
	}
	if err := s.primary.Set(ctx, key, value); err == nil {
		log.Printf("🔄 Shim: migrated %q from local store up to primary", key)
	}
}

// RemoveItem deletes a key from every layer.
func (s *Shim) RemoveItem(ctx context.Context, key string) error {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	s.memDelete(key)

	primaryErr := s.primary.Delete(ctx, key)
	localErr := s.local.Delete(ctx, key)

	if primaryErr != nil && !store.IsPermissionDenied(primaryErr) {
		return primaryErr
	}
	return localErr
}

// Clear empties the shim's namespace in every layer.
func (s *Shim) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.mem = make(map[string]string)
	s.mu.Unlock()

	primaryErr := s.primary.Clear(ctx)
	localErr := s.local.Clear(ctx)

	if primaryErr != nil && !store.IsPermissionDenied(primaryErr) {
		return primaryErr
	}
	return localErr
}

// GetAllKeys returns the union of keys across all layers.
func (s *Shim) GetAllKeys(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	s.mu.Lock()
	for k := range s.mem {
		seen[k] = true
	}
	s.mu.Unlock()

	if keys, err := s.primary.Keys(ctx); err == nil {
		for _, k := range keys {
			seen[k] = true
		}
	}
	if keys, err := s.local.Keys(ctx); err == nil {
		for _, k := range keys {
			seen[k] = true
		}
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	return out, nil
}

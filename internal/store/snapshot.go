package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SnapshotStore is the local/offline data source: one JSON file per
// collection plus a single key/value file, no network anywhere. Restricted
// contexts read only from here; privileged contexts write snapshots after
// successful primary loads so restricted readers stay fresh.
type SnapshotStore struct {
	mu  sync.Mutex
	dir string
}

// NewSnapshotStore creates the snapshot directory layout if needed.
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, "collections"), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &SnapshotStore{dir: dir}, nil
}

func (s *SnapshotStore) collectionPath(name string) string {
	return filepath.Join(s.dir, "collections", name+".json")
}

func (s *SnapshotStore) kvPath() string {
	return filepath.Join(s.dir, "kv.json")
}

// ReadCollection loads raw documents from the collection's snapshot file.
// A collection that was never snapshotted returns ErrNotFound.
func (s *SnapshotStore) ReadCollection(_ context.Context, name string) ([]map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readCollection(name)
}

// readCollection is ReadCollection without the lock, for composing into
// larger critical sections. Callers must hold s.mu.
func (s *SnapshotStore) readCollection(name string) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(s.collectionPath(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("snapshot for %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", name, err)
	}

	var raws []map[string]interface{}
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return raws, nil
}

// WriteCollection replaces the snapshot file for a collection.
func (s *SnapshotStore) WriteCollection(_ context.Context, name string, raws []map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeCollection(name, raws)
}

// writeCollection is WriteCollection without the lock. Callers must hold
// s.mu.
func (s *SnapshotStore) writeCollection(name string, raws []map[string]interface{}) error {
	data, err := json.Marshal(raws)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", name, err)
	}
	if err := os.WriteFile(s.collectionPath(name), data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", name, err)
	}
	return nil
}

// WriteDocument upserts one document in the collection snapshot. Used as
// the write-down target when the primary rejects a privileged write. The
// read-modify-write is one critical section: concurrent write-downs must
// not erase each other's documents.
func (s *SnapshotStore) WriteDocument(_ context.Context, collection, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raws, err := s.readCollection(collection)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if _, ok := fields["ID"]; !ok {
		clone := make(map[string]interface{}, len(fields)+1)
		for k, v := range fields {
			clone[k] = v
		}
		clone["ID"] = id
		fields = clone
	}

	replaced := false
	for i, raw := range raws {
		if fmt.Sprintf("%v", raw["ID"]) == id {
			raws[i] = fields
			replaced = true
			break
		}
	}
	if !replaced {
		raws = append(raws, fields)
	}
	return s.writeCollection(collection, raws)
}

// DeleteDocument removes one document from the collection snapshot.
func (s *SnapshotStore) DeleteDocument(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raws, err := s.readCollection(collection)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	kept := raws[:0]
	for _, raw := range raws {
		if fmt.Sprintf("%v", raw["ID"]) != id {
			kept = append(kept, raw)
		}
	}
	return s.writeCollection(collection, kept)
}

// readKV loads the key/value file; missing file means empty map.
func (s *SnapshotStore) readKV() (map[string]string, error) {
	data, err := os.ReadFile(s.kvPath())
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read kv snapshot: %w", err)
	}
	kv := make(map[string]string)
	if err := json.Unmarshal(data, &kv); err != nil {
		return nil, fmt.Errorf("decode kv snapshot: %w", err)
	}
	return kv, nil
}

func (s *SnapshotStore) writeKV(kv map[string]string) error {
	data, err := json.Marshal(kv)
	if err != nil {
		return fmt.Errorf("encode kv snapshot: %w", err)
	}
	if err := os.WriteFile(s.kvPath(), data, 0o600); err != nil {
		return fmt.Errorf("write kv snapshot: %w", err)
	}
	return nil
}

// Get implements KVStore.
func (s *SnapshotStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.readKV()
	if err != nil {
		return "", err
	}
	value, ok := kv[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set implements KVStore.
func (s *SnapshotStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.readKV()
	if err != nil {
		return err
	}
	kv[key] = value
	return s.writeKV(kv)
}

// Delete implements KVStore.
func (s *SnapshotStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.readKV()
	if err != nil {
		return err
	}
	delete(kv, key)
	return s.writeKV(kv)
}

// Clear implements KVStore.
func (s *SnapshotStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeKV(map[string]string{})
}

// Keys implements KVStore.
func (s *SnapshotStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kv, err := s.readKV()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	return keys, nil
}

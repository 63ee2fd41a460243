package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/craftline/pricedeskgo/internal/store"
	syncx "github.com/craftline/pricedeskgo/internal/sync"
)

// fakeKV is a scriptable KVStore double.
type fakeKV struct {
	data    map[string]string
	setErr  error
	getErr  error
	setCnt  int
	getCnt  int
	deleted []string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	f.getCnt++
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.setCnt++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.data, key)
	return nil
}

func (f *fakeKV) Clear(_ context.Context) error {
	f.data = make(map[string]string)
	return nil
}

func (f *fakeKV) Keys(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// gatedKV stalls writes to one key until released, passing everything
// else through to the wrapped store.
type gatedKV struct {
	*fakeKV
	gateKey string
	gate    chan struct{}
}

func (g *gatedKV) Set(ctx context.Context, key, value string) error {
	if key == g.gateKey {
		<-g.gate
	}
	return g.fakeKV.Set(ctx, key, value)
}

func fastRetry() *syncx.Executor {
	return &syncx.Executor{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestShim_FallbackWritePreservation(t *testing.T) {
	primary := newFakeKV()
	primary.setErr = fmt.Errorf("write: %w", store.ErrPermissionDenied)
	primary.getErr = fmt.Errorf("read: %w", store.ErrPermissionDenied)
	local := newFakeKV()
	s := New(primary, local, fastRetry())
	ctx := context.Background()

	if err := s.SetItem(ctx, "device_id", "dev-42"); err != nil {
		t.Fatalf("SetItem must succeed despite primary denial: %v", err)
	}
	if local.data["device_id"] != "dev-42" {
		t.Error("Value should have been written down to the local store")
	}

	// Read back, even through a fresh shim with a cold memory cache
	s2 := New(primary, local, fastRetry())
	v, ok, err := s2.GetItem(ctx, "device_id")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if !ok || v != "dev-42" {
		t.Errorf("Expected dev-42 from local fallback, got %q (found %v)", v, ok)
	}
}

func TestShim_PermissionDenialNotRetried(t *testing.T) {
	primary := newFakeKV()
	primary.setErr = fmt.Errorf("write: %w", store.ErrPermissionDenied)
	s := New(primary, newFakeKV(), fastRetry())

	if err := s.SetItem(context.Background(), "k", "v"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	if primary.setCnt != 1 {
		t.Errorf("Permission denial must short-circuit retries, got %d attempts", primary.setCnt)
	}
}

func TestShim_TransientWriteFailureSurfaces(t *testing.T) {
	primary := newFakeKV()
	primary.setErr = fmt.Errorf("write: %w", store.ErrUnavailable)
	local := newFakeKV()
	s := New(primary, local, fastRetry())

	err := s.SetItem(context.Background(), "k", "v")
	if err == nil {
		t.Fatal("Transient failure after retries should surface, not silently fall back")
	}
	if primary.setCnt != 3 {
		t.Errorf("Expected full retry budget, got %d attempts", primary.setCnt)
	}
	if _, ok := local.data["k"]; ok {
		t.Error("Write-down is reserved for permission denials")
	}
}

func TestShim_MemoryCacheShortCircuits(t *testing.T) {
	primary := newFakeKV()
	primary.data["k"] = "v"
	s := New(primary, newFakeKV(), fastRetry())
	ctx := context.Background()

	if _, _, err := s.GetItem(ctx, "k"); err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if _, _, err := s.GetItem(ctx, "k"); err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if primary.getCnt != 1 {
		t.Errorf("Second read should hit the memory cache, got %d primary reads", primary.getCnt)
	}
}

func TestShim_ReadUpMigration(t *testing.T) {
	primary := newFakeKV()
	local := newFakeKV()
	local.data["orphan"] = "value"
	s := New(primary, local, fastRetry())

	v, ok, err := s.GetItem(context.Background(), "orphan")
	if err != nil || !ok || v != "value" {
		t.Fatalf("Expected local value, got %q (found %v, err %v)", v, ok, err)
	}
	if primary.data["orphan"] != "value" {
		t.Error("Local-only value should migrate up to the primary on read")
	}
}

func TestShim_MissingKeyIsNotFoundNotError(t *testing.T) {
	s := New(newFakeKV(), newFakeKV(), fastRetry())

	v, ok, err := s.GetItem(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Missing key should not be an error: %v", err)
	}
	if ok {
		t.Error("Missing key should report not found")
	}
	if v != "" {
		t.Errorf("Expected empty value, got %q", v)
	}
}

func TestShim_EmptyValueIsFound(t *testing.T) {
	s := New(newFakeKV(), newFakeKV(), fastRetry())
	ctx := context.Background()

	if err := s.SetItem(ctx, "flag", ""); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	// Cold cache, so the lookup goes through the primary
	s2 := New(s.primary, s.local, fastRetry())
	v, ok, err := s2.GetItem(ctx, "flag")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if !ok {
		t.Error("A stored empty string must read back as found")
	}
	if v != "" {
		t.Errorf("Expected empty value, got %q", v)
	}
}

func TestShim_SlowWriteDoesNotBlockOtherKeys(t *testing.T) {
	gate := make(chan struct{})
	primary := &gatedKV{fakeKV: newFakeKV(), gateKey: "stuck", gate: gate}
	primary.data["other"] = "v"
	s := New(primary, newFakeKV(), fastRetry())
	ctx := context.Background()

	writeDone := make(chan error, 1)
	go func() {
		writeDone <- s.SetItem(ctx, "stuck", "pending")
	}()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		if _, ok, err := s.GetItem(ctx, "other"); err != nil || !ok {
			t.Errorf("GetItem(other) = found %v, err %v", ok, err)
		}
	}()

	select {
	case <-readDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Read of an unrelated key blocked behind a stalled write")
	}

	close(gate)
	if err := <-writeDone; err != nil {
		t.Fatalf("SetItem failed after gate release: %v", err)
	}
}

func TestShim_RemoveAndKeys(t *testing.T) {
	primary := newFakeKV()
	local := newFakeKV()
	s := New(primary, local, fastRetry())
	ctx := context.Background()

	s.SetItem(ctx, "a", "1")
	s.SetItem(ctx, "b", "2")
	local.data["c"] = "3" // local-only straggler

	keys, err := s.GetAllKeys(ctx)
	if err != nil {
		t.Fatalf("GetAllKeys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Errorf("Expected union of 3 keys, got %v", keys)
	}

	if err := s.RemoveItem(ctx, "a"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, ok, _ := s.GetItem(ctx, "a"); ok {
		t.Error("Removed key should be gone")
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	keys, _ = s.GetAllKeys(ctx)
	if len(keys) != 0 {
		t.Errorf("Expected no keys after Clear, got %v", keys)
	}
}

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/craftline/pricedeskgo/internal/cache"
	"github.com/craftline/pricedeskgo/internal/config"
	"github.com/craftline/pricedeskgo/internal/store"
)

// fakeDatastore is a scriptable Datastore double with call counting.
type fakeDatastore struct {
	reads   atomic.Int64
	writes  atomic.Int64
	readErr error
	docs    map[string][]map[string]interface{}
	delay   time.Duration
}

func (f *fakeDatastore) ReadCollection(ctx context.Context, name string) ([]map[string]interface{}, error) {
	f.reads.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.docs[name], nil
}

func (f *fakeDatastore) WriteDocument(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	f.writes.Add(1)
	if f.readErr != nil {
		return f.readErr
	}
	if f.docs == nil {
		f.docs = make(map[string][]map[string]interface{})
	}
	f.docs[collection] = append(f.docs[collection], fields)
	return nil
}

func (f *fakeDatastore) DeleteDocument(ctx context.Context, collection, id string) error {
	if f.readErr != nil {
		return f.readErr
	}
	return nil
}

// fakeSnapshotWriter records write-through and write-down calls.
type fakeSnapshotWriter struct {
	collections map[string][]map[string]interface{}
	docs        []string
}

func (f *fakeSnapshotWriter) WriteCollection(_ context.Context, name string, raws []map[string]interface{}) error {
	if f.collections == nil {
		f.collections = make(map[string][]map[string]interface{})
	}
	f.collections[name] = raws
	return nil
}

func (f *fakeSnapshotWriter) WriteDocument(_ context.Context, collection, id string, _ map[string]interface{}) error {
	f.docs = append(f.docs, collection+"/"+id)
	return nil
}

func (f *fakeSnapshotWriter) DeleteDocument(_ context.Context, collection, id string) error {
	return nil
}

func productDocs() []map[string]interface{} {
	return []map[string]interface{}{
		{"ID": "p1", "Category": "DIY", "PriceListName": "INDIA25", "Rate": "300"},
		{"ID": "p2", "Category": "Weaves", "PriceList": "USA25", "Price": "450"},
	}
}

func newTestResolver(mode config.ContextMode, primary, fallback, snapshot store.Datastore, snapWr SnapshotWriter) *Resolver {
	return NewResolver(ResolverDeps{
		Mode:           mode,
		Cache:          cache.New(),
		Primary:        primary,
		Fallback:       fallback,
		Snapshot:       snapshot,
		SnapshotWriter: snapWr,
		Retry:          fastExecutor(),
	})
}

func TestResolver_PrivilegedHappyPath(t *testing.T) {
	primary := &fakeDatastore{docs: map[string][]map[string]interface{}{"products": productDocs()}}
	snapWr := &fakeSnapshotWriter{}
	r := newTestResolver(config.ContextPrivileged, primary, nil, nil, snapWr)

	records := r.LoadCollection(context.Background(), "products")

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[1].Get("PriceListName") != "USA25" {
		t.Errorf("Alias normalization should have run, got %q", records[1].Get("PriceListName"))
	}
	if _, ok := snapWr.collections["products"]; !ok {
		t.Error("Successful primary read should write through to the snapshot")
	}

	// Second read must come from cache, no network
	r.LoadCollection(context.Background(), "products")
	if primary.reads.Load() != 1 {
		t.Errorf("Cache hit should not touch the primary, got %d reads", primary.reads.Load())
	}
}

func TestResolver_PermissionDeniedFallsBackToREST(t *testing.T) {
	primary := &fakeDatastore{readErr: fmt.Errorf("read: %w", store.ErrPermissionDenied)}
	fallback := &fakeDatastore{docs: map[string][]map[string]interface{}{"products": productDocs()}}
	r := newTestResolver(config.ContextPrivileged, primary, fallback, nil, nil)

	records := r.LoadCollection(context.Background(), "products")

	if primary.reads.Load() != 1 {
		t.Errorf("Permission denial must not be retried, got %d primary reads", primary.reads.Load())
	}
	if fallback.reads.Load() != 1 {
		t.Errorf("Expected exactly one REST fallback read, got %d", fallback.reads.Load())
	}
	if len(records) != 2 {
		t.Errorf("Expected records from fallback, got %d", len(records))
	}
}

func TestResolver_RetryableFailureExhaustsThenEmpty(t *testing.T) {
	primary := &fakeDatastore{readErr: fmt.Errorf("read: %w", store.ErrUnavailable)}
	fallback := &fakeDatastore{docs: map[string][]map[string]interface{}{"products": productDocs()}}
	r := newTestResolver(config.ContextPrivileged, primary, fallback, nil, nil)

	records := r.LoadCollection(context.Background(), "products")

	if primary.reads.Load() != 3 {
		t.Errorf("Retryable failure should use the full attempt budget, got %d", primary.reads.Load())
	}
	if fallback.reads.Load() != 0 {
		t.Error("REST fallback is reserved for permission denials, not outages")
	}
	if len(records) != 0 {
		t.Errorf("Expected empty set after all paths failed, got %d", len(records))
	}

	if _, ok := r.ErrorLog().LastFor("products"); !ok {
		t.Error("Failure should be recorded in the error log")
	}
}

func TestResolver_RestrictedUsesSnapshotOnly(t *testing.T) {
	primary := &fakeDatastore{docs: map[string][]map[string]interface{}{"products": productDocs()}}
	snapshot := &fakeDatastore{docs: map[string][]map[string]interface{}{
		"products": {{"ID": "p9", "Category": "Archive"}},
	}}
	r := newTestResolver(config.ContextRestricted, primary, nil, snapshot, nil)

	records := r.LoadCollection(context.Background(), "products")

	if primary.reads.Load() != 0 {
		t.Error("Restricted context must never touch the primary datastore")
	}
	if len(records) != 1 || records[0].ID() != "p9" {
		t.Errorf("Expected snapshot data, got %v", records)
	}
}

func TestResolver_RestrictedUnreachableSnapshotReturnsEmpty(t *testing.T) {
	snapshot := &fakeDatastore{readErr: fmt.Errorf("read: %w", store.ErrNotFound)}
	r := newTestResolver(config.ContextRestricted, nil, nil, snapshot, nil)

	records := r.LoadCollection(context.Background(), "products")

	if records == nil || len(records) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", records)
	}
}

func TestResolver_SaveDocumentWriteDownOnDenial(t *testing.T) {
	primary := &fakeDatastore{readErr: fmt.Errorf("write: %w", store.ErrPermissionDenied)}
	snapWr := &fakeSnapshotWriter{}
	r := newTestResolver(config.ContextPrivileged, primary, nil, nil, snapWr)

	err := r.SaveDocument(context.Background(), "quotes", "q1", map[string]interface{}{"Total": "900"})
	if err != nil {
		t.Fatalf("Write-down on denial should still report success, got %v", err)
	}
	if len(snapWr.docs) != 1 || snapWr.docs[0] != "quotes/q1" {
		t.Errorf("Expected document written down to snapshot, got %v", snapWr.docs)
	}
}

func TestResolver_SaveDocumentRestrictedRefused(t *testing.T) {
	r := newTestResolver(config.ContextRestricted, nil, nil, nil, nil)

	err := r.SaveDocument(context.Background(), "quotes", "q1", map[string]interface{}{})
	if !errors.Is(err, store.ErrPermissionDenied) {
		t.Errorf("Restricted context writes must be refused, got %v", err)
	}
}

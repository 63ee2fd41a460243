package cache

import (
	"testing"
	"time"

	"github.com/craftline/pricedeskgo/internal/models"
)

// fakeClock steps time manually so timeout behavior is deterministic.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestCache_TimeoutInvariant(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New(WithTimeout(15*time.Minute), WithClock(clock.Now))

	records := []models.Record{{"ID": "p1", "Category": "DIY"}}
	c.Put("products", records)

	if !c.IsValid("products") {
		t.Fatal("Entry should be valid immediately after Put")
	}

	// Just inside the window
	clock.Advance(15*time.Minute - time.Second)
	if !c.IsValid("products") {
		t.Error("Entry should still be valid one second before timeout")
	}

	// At the boundary
	clock.Advance(time.Second)
	if c.IsValid("products") {
		t.Error("Entry should be invalid at exactly the timeout")
	}

	// Expired entries are not evicted, only invalid
	if c.Get("products") == nil {
		t.Error("Expired entry should still exist until invalidated")
	}
	if _, ok := c.Records("products"); ok {
		t.Error("Records should refuse to serve an expired entry")
	}
}

func TestCache_PutReplacesWholeEntry(t *testing.T) {
	c := New()

	c.Put("products", []models.Record{{"ID": "p1"}, {"ID": "p2"}})
	c.Put("products", []models.Record{{"ID": "p3"}})

	records, ok := c.Records("products")
	if !ok {
		t.Fatal("Expected a valid entry")
	}
	if len(records) != 1 || records[0].ID() != "p3" {
		t.Errorf("Put must fully replace the entry, got %v", records)
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New()
	c.Put("products", []models.Record{{"ID": "p1"}})
	c.Put("clients", []models.Record{{"ID": "c1"}})

	c.Invalidate("products")
	if c.IsValid("products") {
		t.Error("Invalidated entry should not be valid")
	}
	if c.Get("products") != nil {
		t.Error("Invalidated entry should be gone")
	}
	if !c.IsValid("clients") {
		t.Error("Invalidate must not touch other collections")
	}

	c.InvalidateAll()
	if len(c.Names()) != 0 {
		t.Errorf("InvalidateAll should empty the cache, still holds %v", c.Names())
	}
}

func TestCache_MissingEntry(t *testing.T) {
	c := New()
	if c.IsValid("never-loaded") {
		t.Error("Unknown collection should never be valid")
	}
	if c.Get("never-loaded") != nil {
		t.Error("Unknown collection should return nil entry")
	}
}

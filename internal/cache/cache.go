// Package cache holds the per-collection, time-boxed record store sitting
// between the resolver and its data sources.
package cache

import (
	"sync"
	"time"

	"github.com/craftline/pricedeskgo/internal/models"
)

// DefaultTimeout is the read-through cache validity window.
const DefaultTimeout = 15 * time.Minute

// Entry is one cached collection: the records plus the fetch timestamp.
// Records inside an entry are immutable; a Put replaces the whole entry.
type Entry struct {
	Name      string
	Records   []models.Record
	FetchedAt time.Time
}

// CollectionCache is a TTL map keyed by collection name. The key space is
// the fixed collection registry, so memory stays bounded without any LRU
// eviction; expired entries are only invalidated lazily on access.
type CollectionCache struct {
	mu      sync.RWMutex
	timeout time.Duration
	now     func() time.Time
	entries map[string]*Entry
}

// Option configures a CollectionCache.
type Option func(*CollectionCache)

// WithTimeout overrides the default validity window.
func WithTimeout(d time.Duration) Option {
	return func(c *CollectionCache) { c.timeout = d }
}

// WithClock injects a clock, used by tests to step time.
func WithClock(now func() time.Time) Option {
	return func(c *CollectionCache) { c.now = now }
}

// New creates a cache with the default 15 minute timeout.
func New(opts ...Option) *CollectionCache {
	c := &CollectionCache{
		timeout: DefaultTimeout,
		now:     time.Now,
		entries: make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the entry for name, valid or not, or nil if never loaded.
func (c *CollectionCache) Get(name string) *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[name]
}

// Records returns the cached records for name if the entry is still valid.
func (c *CollectionCache) Records(name string) ([]models.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[name]
	if !ok || !c.valid(entry) {
		return nil, false
	}
	return entry.Records, true
}

// Put replaces the entry for name and stamps the current time.
func (c *CollectionCache) Put(name string, records []models.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[name] = &Entry{
		Name:      name,
		Records:   records,
		FetchedAt: c.now(),
	}
}

// IsValid reports whether an entry exists and is within its timeout.
func (c *CollectionCache) IsValid(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[name]
	return ok && c.valid(entry)
}

// Invalidate drops the entry for name, forcing a re-fetch on next access.
func (c *CollectionCache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// InvalidateAll drops every entry.
func (c *CollectionCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
}

// Names returns the collection names currently held, valid or expired.
func (c *CollectionCache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	return names
}

func (c *CollectionCache) valid(entry *Entry) bool {
	return c.now().Sub(entry.FetchedAt) < c.timeout
}

package sync

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/craftline/pricedeskgo/internal/cache"
	"github.com/craftline/pricedeskgo/internal/config"
	"github.com/craftline/pricedeskgo/internal/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ChangeListener receives the new record set when a collection's cache
// entry is replaced.
type ChangeListener func(name string, records []models.Record)

// Orchestrator coordinates loading of all named collections, derives the
// secondary views, and exposes the single readiness gate the UI waits on.
// It is the exclusive owner of the collection cache and the derived views.
type Orchestrator struct {
	mu sync.RWMutex

	resolver *Resolver
	cache    *cache.CollectionCache
	syncCfg  *config.SyncConfig

	state    State
	lastLoad time.Time

	// Request coalescing keyed by collection name: concurrent loads for
	// the same collection share one underlying fetch.
	flight singleflight.Group

	ready chan struct{}

	listeners  map[string]map[int]ChangeListener
	listenerID int

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewOrchestrator creates an orchestrator in the uninitialized state.
func NewOrchestrator(resolver *Resolver, c *cache.CollectionCache, syncCfg *config.SyncConfig) *Orchestrator {
	if syncCfg == nil {
		syncCfg = config.DefaultSyncConfig()
	}
	return &Orchestrator{
		resolver:  resolver,
		cache:     c,
		syncCfg:   syncCfg,
		state:     StateUninitialized,
		ready:     make(chan struct{}),
		listeners: make(map[string]map[int]ChangeListener),
		stopChan:  make(chan struct{}),
	}
}

// LoadAll performs the initial load: products first (critical path), the
// derived views immediately after so the UI is minimally usable, then the
// remaining collections concurrently in the background. The call returns
// once the critical path is done; background failures never fail LoadAll.
func (o *Orchestrator) LoadAll(ctx context.Context) error {
	o.mu.Lock()
	switch o.state {
	case StateInitializing:
		o.mu.Unlock()
		return fmt.Errorf("load already in progress")
	case StateReady:
		o.mu.Unlock()
		return nil
	case StateFailed:
		o.mu.Unlock()
		return fmt.Errorf("orchestrator failed previously; create a fresh instance to retry")
	}
	o.state = StateInitializing
	o.mu.Unlock()

	log.Println("🔄 Data manager: loading critical path (products)...")
	products := o.load(ctx, models.CollectionProducts)
	if !o.cache.IsValid(models.CollectionProducts) {
		// Products could not be loaded from any source. The instance is
		// unusable: derived views would all be empty lies.
		o.mu.Lock()
		o.state = StateFailed
		o.mu.Unlock()
		return fmt.Errorf("critical collection %s failed to load", models.CollectionProducts)
	}

	o.deriveViews(products)

	o.mu.Lock()
	o.state = StateReady
	o.lastLoad = time.Now()
	o.mu.Unlock()
	close(o.ready)
	log.Printf("✅ Data manager ready: %d products, derived views computed", len(products))

	// Remaining collections load behind the readiness gate. A failed
	// background collection stays empty until a later refresh.
	go o.loadBackground(context.WithoutCancel(ctx))

	if interval := o.syncCfg.BackgroundRefresh(); interval > 0 {
		go o.refreshLoop(interval)
	}
	return nil
}

// loadBackground fetches every non-critical enabled collection concurrently.
func (o *Orchestrator) loadBackground(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range o.backgroundCollections() {
		name := name
		g.Go(func() error {
			o.load(ctx, name)
			return nil
		})
	}
	_ = g.Wait()
	log.Println("✅ Background collections loaded")
}

// backgroundCollections returns the enabled non-critical collections.
func (o *Orchestrator) backgroundCollections() []string {
	var names []string
	for _, name := range models.PrimaryCollections() {
		if name == models.CollectionProducts {
			continue
		}
		if cfg, ok := o.syncCfg.Collections[name]; ok && !cfg.Enabled {
			continue
		}
		names = append(names, name)
	}
	return names
}

// load fetches one primary collection through the resolver, coalescing
// concurrent requests for the same name into a single underlying read.
// Duplicate in-flight fetches are an invariant violation, not a perf issue:
// the resolver's snapshot write-through must not race itself.
func (o *Orchestrator) load(ctx context.Context, name string) []models.Record {
	v, _, _ := o.flight.Do(name, func() (interface{}, error) {
		// A load that raced a just-finished fetch serves the fresh cache
		// entry without announcing a change: nothing was replaced.
		if records, ok := o.cache.Records(name); ok {
			return records, nil
		}

		records := o.resolver.LoadCollection(ctx, name)
		if name == models.CollectionProducts && o.cache.IsValid(name) {
			o.deriveViews(records)
		}
		o.notify(name, records)
		return records, nil
	})
	return v.([]models.Record)
}

// deriveViews projects the derived collections out of products and replaces
// their cache entries. Derived views are never fetched, only recomputed.
func (o *Orchestrator) deriveViews(products []models.Record) {
	for _, viewName := range models.DerivedCollections() {
		field, _ := models.DerivedField(viewName)

		seen := make(map[string]bool)
		view := make([]models.Record, 0)
		for _, p := range products {
			value := p.Get(field)
			if value == "" || seen[value] {
				continue
			}
			seen[value] = true
			view = append(view, models.Record{"ID": value, "Name": value})
		}

		o.cache.Put(viewName, view)
		o.notify(viewName, view)
	}
}

// GetData waits for readiness (bounded), then returns the named collection
// from cache, loading it if it expired or was never loaded. It never
// returns an error other than ErrNotReady; load failures degrade to an
// empty slice distinguishable through GetStatus.
func (o *Orchestrator) GetData(ctx context.Context, name string) ([]models.Record, error) {
	if !models.KnownCollection(name) {
		return nil, fmt.Errorf("unknown collection %q", name)
	}

	if err := o.waitReady(ctx); err != nil {
		return nil, err
	}

	if records, ok := o.cache.Records(name); ok {
		return records, nil
	}

	if models.IsDerived(name) {
		// Derived views follow products: refresh the source, the view
		// entries are replaced as a side effect.
		o.load(ctx, models.CollectionProducts)
		records, _ := o.cache.Records(name)
		if records == nil {
			records = []models.Record{}
		}
		return records, nil
	}

	return o.load(ctx, name), nil
}

// Refresh forces a re-fetch of one collection, or of everything when name
// is empty. Concurrent refreshes of the same collection share one fetch.
func (o *Orchestrator) Refresh(ctx context.Context, name string) error {
	if err := o.waitReady(ctx); err != nil {
		return err
	}

	if name == "" {
		o.cache.InvalidateAll()
		o.load(ctx, models.CollectionProducts)
		for _, n := range o.backgroundCollections() {
			o.load(ctx, n)
		}
	} else {
		if !models.KnownCollection(name) {
			return fmt.Errorf("unknown collection %q", name)
		}
		if models.IsDerived(name) {
			name = models.CollectionProducts
		}
		o.cache.Invalidate(name)
		o.load(ctx, name)
	}

	o.mu.Lock()
	o.lastLoad = time.Now()
	o.mu.Unlock()
	return nil
}

// refreshLoop is the polling cadence: a timer-driven background refresh
// that competes with foreground refreshes only through coalescing. It is
// deliberately separate from change notification, which stays usable if a
// push mechanism replaces polling later.
func (o *Orchestrator) refreshLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.Println("🔄 Background refresh triggered")
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := o.Refresh(ctx, ""); err != nil {
				log.Printf("⚠️ Background refresh: %v", err)
			}
			cancel()
		case <-o.stopChan:
			return
		}
	}
}

// waitReady blocks until the orchestrator is ready, the context ends, or
// the bounded wait expires. Expiry fails closed with ErrNotReady instead
// of hanging a UI request forever.
func (o *Orchestrator) waitReady(ctx context.Context) error {
	o.mu.RLock()
	state := o.state
	o.mu.RUnlock()
	if state == StateFailed {
		return fmt.Errorf("%w: initial load failed", ErrNotReady)
	}

	select {
	case <-o.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNotReady, ctx.Err())
	case <-time.After(o.syncCfg.ReadyWait()):
		return fmt.Errorf("%w: timed out after %v", ErrNotReady, o.syncCfg.ReadyWait())
	}
}

// OnDataChange registers a callback fired whenever the named collection's
// cache entry is replaced. The returned function unsubscribes.
func (o *Orchestrator) OnDataChange(name string, fn ChangeListener) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.listeners[name] == nil {
		o.listeners[name] = make(map[int]ChangeListener)
	}
	o.listenerID++
	id := o.listenerID
	o.listeners[name][id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.listeners[name], id)
	}
}

// notify fans a replaced cache entry out to the collection's listeners.
func (o *Orchestrator) notify(name string, records []models.Record) {
	o.mu.RLock()
	fns := make([]ChangeListener, 0, len(o.listeners[name]))
	for _, fn := range o.listeners[name] {
		fns = append(fns, fn)
	}
	o.mu.RUnlock()

	for _, fn := range fns {
		fn(name, records)
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// GetStatus reports the orchestrator's view of the world for the status
// endpoint and for UIs that need to distinguish "no data" from "failed".
func (o *Orchestrator) GetStatus() map[string]interface{} {
	o.mu.RLock()
	state := o.state
	lastLoad := o.lastLoad
	o.mu.RUnlock()

	collections := make(map[string]interface{})
	for _, name := range append(models.PrimaryCollections(), models.DerivedCollections()...) {
		info := map[string]interface{}{
			"cached": o.cache.IsValid(name),
		}
		if entry := o.cache.Get(name); entry != nil {
			info["records"] = len(entry.Records)
			info["fetched_at"] = entry.FetchedAt
		}
		if last, ok := o.resolver.ErrorLog().LastFor(name); ok {
			info["last_error"] = last
		}
		collections[name] = info
	}

	return map[string]interface{}{
		"state":       string(state),
		"context":     string(o.resolver.Mode()),
		"last_load":   lastLoad,
		"collections": collections,
	}
}

// Stop halts the background refresh loop.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.stopChan)
	})
	log.Println("🛑 Data manager stopped")
}

package sync

import (
	"context"
	"fmt"
	"log"

	"github.com/craftline/pricedeskgo/internal/cache"
	"github.com/craftline/pricedeskgo/internal/config"
	"github.com/craftline/pricedeskgo/internal/models"
	"github.com/craftline/pricedeskgo/internal/normalize"
	"github.com/craftline/pricedeskgo/internal/store"
)

// SnapshotWriter is the slice of the snapshot store the resolver needs for
// write-through and write-down.
type SnapshotWriter interface {
	WriteCollection(ctx context.Context, name string, raws []map[string]interface{}) error
	WriteDocument(ctx context.Context, collection, id string, fields map[string]interface{}) error
	DeleteDocument(ctx context.Context, collection, id string) error
}

// Resolver decides, per collection, which data source serves a read and
// performs it. Privileged contexts get the full chain (primary datastore,
// then the REST mirror when permission-denied); restricted contexts only
// ever touch the local snapshot, so an untrusted page can never fan out
// datastore access.
type Resolver struct {
	mode     config.ContextMode
	cache    *cache.CollectionCache
	primary  store.Datastore
	fallback store.Datastore
	snapshot store.Datastore
	snapWr   SnapshotWriter
	retry    *Executor
	errlog   *ErrorLog
}

// ResolverDeps carries the resolver's collaborators. Primary and fallback
// may be nil (restricted context, no mirror configured).
type ResolverDeps struct {
	Mode     config.ContextMode
	Cache    *cache.CollectionCache
	Primary  store.Datastore
	Fallback store.Datastore
	Snapshot store.Datastore
	SnapshotWriter
	Retry    *Executor
	ErrorLog *ErrorLog
}

// NewResolver wires a resolver from its dependencies.
func NewResolver(deps ResolverDeps) *Resolver {
	retry := deps.Retry
	if retry == nil {
		retry = NewExecutor()
	}
	errlog := deps.ErrorLog
	if errlog == nil {
		errlog = NewErrorLog()
	}
	return &Resolver{
		mode:     deps.Mode,
		cache:    deps.Cache,
		primary:  deps.Primary,
		fallback: deps.Fallback,
		snapshot: deps.Snapshot,
		snapWr:   deps.SnapshotWriter,
		retry:    retry,
		errlog:   errlog,
	}
}

// LoadCollection resolves a primary collection to its records. It never
// returns an error: failures are recorded in the rolling log and degrade to
// an empty slice, leaving the UI responsible only for "no data yet".
func (r *Resolver) LoadCollection(ctx context.Context, name string) []models.Record {
	if records, ok := r.cache.Records(name); ok {
		return records
	}

	kind, ok := models.KindFor(name)
	if !ok {
		r.errlog.Record(name, StrategyCache, fmt.Errorf("unknown collection %q", name))
		return []models.Record{}
	}

	if r.mode == config.ContextRestricted {
		return r.loadRestricted(ctx, name, kind)
	}
	return r.loadPrivileged(ctx, name, kind)
}

// loadPrivileged walks the privileged chain: primary datastore with retries,
// then one read through the REST mirror if the primary said permission-denied.
func (r *Resolver) loadPrivileged(ctx context.Context, name string, kind models.Kind) []models.Record {
	var raws []map[string]interface{}
	err := r.retry.Do(ctx, "read "+name, func(ctx context.Context) error {
		var readErr error
		raws, readErr = r.primary.ReadCollection(ctx, name)
		return readErr
	})

	if err == nil {
		r.snapshotWriteThrough(ctx, name, raws)
		return r.accept(name, kind, raws)
	}
	r.errlog.Record(name, StrategyPrimary, err)

	if store.IsPermissionDenied(err) && r.fallback != nil {
		log.Printf("⚠️ %s: primary permission-denied, trying REST fallback", name)
		raws, fbErr := r.fallback.ReadCollection(ctx, name)
		if fbErr == nil {
			return r.accept(name, kind, raws)
		}
		r.errlog.Record(name, StrategyRESTFallback, fbErr)
	}

	log.Printf("⚠️ %s: all load paths failed, serving empty set", name)
	return []models.Record{}
}

// loadRestricted reads the local snapshot only. No network, no retries.
func (r *Resolver) loadRestricted(ctx context.Context, name string, kind models.Kind) []models.Record {
	if r.snapshot == nil {
		r.errlog.Record(name, StrategySnapshot, fmt.Errorf("no snapshot store configured"))
		return []models.Record{}
	}

	raws, err := r.snapshot.ReadCollection(ctx, name)
	if err != nil {
		r.errlog.Record(name, StrategySnapshot, err)
		return []models.Record{}
	}
	return r.accept(name, kind, raws)
}

// accept normalizes raw documents and installs them as the new cache entry.
func (r *Resolver) accept(name string, kind models.Kind, raws []map[string]interface{}) []models.Record {
	records, degenerate := normalize.NormalizeAll(kind, raws)
	if degenerate > 0 {
		log.Printf("⚠️ %s: %d of %d records are degenerate after normalization", name, degenerate, len(records))
	}
	r.cache.Put(name, records)
	return records
}

// snapshotWriteThrough refreshes the local snapshot after a successful
// primary read so restricted contexts keep working offline. Best effort.
func (r *Resolver) snapshotWriteThrough(ctx context.Context, name string, raws []map[string]interface{}) {
	if r.snapWr == nil {
		return
	}
	if err := r.snapWr.WriteCollection(ctx, name, raws); err != nil {
		log.Printf("⚠️ %s: snapshot write-through failed: %v", name, err)
	}
}

// SaveDocument writes one document through the privileged chain. When the
// primary rejects the write with a permission error the document is written
// down to the local snapshot instead and the call still succeeds; the
// record migrates up on a later import or privileged write.
func (r *Resolver) SaveDocument(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if r.mode == config.ContextRestricted {
		return fmt.Errorf("save %s/%s: restricted context: %w", collection, id, store.ErrPermissionDenied)
	}

	err := r.retry.Do(ctx, "write "+collection, func(ctx context.Context) error {
		return r.primary.WriteDocument(ctx, collection, id, fields)
	})
	if err == nil {
		r.cache.Invalidate(collection)
		return nil
	}
	r.errlog.Record(collection, StrategyPrimary, err)

	if store.IsPermissionDenied(err) && r.snapWr != nil {
		log.Printf("⚠️ %s/%s: primary write denied, writing down to snapshot", collection, id)
		if wdErr := r.snapWr.WriteDocument(ctx, collection, id, fields); wdErr == nil {
			r.cache.Invalidate(collection)
			return nil
		} else {
			r.errlog.Record(collection, StrategySnapshot, wdErr)
		}
	}
	return err
}

// DeleteDocument removes one document through the privileged chain, with
// the same write-down behavior as SaveDocument.
func (r *Resolver) DeleteDocument(ctx context.Context, collection, id string) error {
	if r.mode == config.ContextRestricted {
		return fmt.Errorf("delete %s/%s: restricted context: %w", collection, id, store.ErrPermissionDenied)
	}

	err := r.retry.Do(ctx, "delete "+collection, func(ctx context.Context) error {
		return r.primary.DeleteDocument(ctx, collection, id)
	})
	if err == nil {
		r.cache.Invalidate(collection)
		return nil
	}
	r.errlog.Record(collection, StrategyPrimary, err)

	if store.IsPermissionDenied(err) && r.snapWr != nil {
		if wdErr := r.snapWr.DeleteDocument(ctx, collection, id); wdErr == nil {
			r.cache.Invalidate(collection)
			return nil
		} else {
			r.errlog.Record(collection, StrategySnapshot, wdErr)
		}
	}
	return err
}

// Mode returns the process sync context the resolver was built with.
func (r *Resolver) Mode() config.ContextMode {
	return r.mode
}

// ErrorLog exposes the rolling failure log for status reporting.
func (r *Resolver) ErrorLog() *ErrorLog {
	return r.errlog
}

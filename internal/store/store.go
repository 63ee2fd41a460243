// Package store defines the data-source boundary of the sync core: the
// primary datastore, the local snapshot store, the secondary REST mirror,
// and the error taxonomy shared by everything that talks to them.
package store

import "context"

// Datastore is the document-shaped read/write surface of a data source.
// Raw documents are string-keyed maps; normalization happens above this
// boundary.
type Datastore interface {
	ReadCollection(ctx context.Context, name string) ([]map[string]interface{}, error)
	WriteDocument(ctx context.Context, collection, id string, fields map[string]interface{}) error
	DeleteDocument(ctx context.Context, collection, id string) error
}

// KVStore is the key/value surface used by the storage compatibility shim.
// Get returns ErrNotFound for missing keys.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/craftline/pricedeskgo/internal/database"
	"github.com/craftline/pricedeskgo/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormStore is the primary datastore: document-style records in PostgreSQL,
// one JSONB field map per document.
type GormStore struct {
	db *database.DB
}

// NewGormStore wraps a database connection as the primary Datastore.
func NewGormStore(db *database.DB) *GormStore {
	return &GormStore{db: db}
}

// ReadCollection returns every document in a collection as a raw field map.
// The document id is merged in under "ID" when the fields don't carry one.
func (s *GormStore) ReadCollection(ctx context.Context, name string) ([]map[string]interface{}, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Where("collection = ?", name).
		Find(&docs).Error
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("read collection %s: %w", name, err))
	}

	raws := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		fields := make(map[string]interface{})
		if len(doc.Fields) > 0 {
			if err := json.Unmarshal(doc.Fields, &fields); err != nil {
				// A corrupt document degrades to id-only rather than
				// failing the whole collection read
				fields = map[string]interface{}{}
			}
		}
		if _, ok := fields["ID"]; !ok {
			fields["ID"] = doc.DocID
		}
		raws = append(raws, fields)
	}
	return raws, nil
}

// WriteDocument upserts one document.
func (s *GormStore) WriteDocument(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal document %s/%s: %w", collection, id, err)
	}

	doc := models.Document{
		Collection: collection,
		DocID:      id,
		Fields:     datatypes.JSON(data),
	}

	err = s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Assign(models.Document{Fields: datatypes.JSON(data)}).
		FirstOrCreate(&doc).Error
	if err != nil {
		return wrapDBError(fmt.Errorf("write document %s/%s: %w", collection, id, err))
	}
	return nil
}

// DeleteDocument removes one document. Deleting a missing document is not
// an error.
func (s *GormStore) DeleteDocument(ctx context.Context, collection, id string) error {
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&models.Document{}).Error
	if err != nil {
		return wrapDBError(fmt.Errorf("delete document %s/%s: %w", collection, id, err))
	}
	return nil
}

// TouchSyncMetadata records the outcome of a load or import for a collection.
func (s *GormStore) TouchSyncMetadata(ctx context.Context, collection, status, instanceID string, records int) {
	now := time.Now()
	meta := models.SyncMetadata{
		Collection:     collection,
		LastSyncAt:     &now,
		LastSyncStatus: status,
		RecordsSynced:  records,
		SourceInstance: instanceID,
	}
	s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Assign(meta).
		FirstOrCreate(&meta)
}

// GormKV is the primary-datastore side of the storage compatibility shim.
type GormKV struct {
	db *database.DB
}

// NewGormKV wraps a database connection as the primary KVStore.
func NewGormKV(db *database.DB) *GormKV {
	return &GormKV{db: db}
}

func (s *GormKV) Get(ctx context.Context, key string) (string, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", wrapDBError(fmt.Errorf("kv get %s: %w", key, err))
	}
	return entry.Value, nil
}

func (s *GormKV) Set(ctx context.Context, key, value string) error {
	entry := models.KVEntry{Key: key, Value: value}
	err := s.db.WithContext(ctx).
		Where("key = ?", key).
		Assign(models.KVEntry{Value: value}).
		FirstOrCreate(&entry).Error
	if err != nil {
		return wrapDBError(fmt.Errorf("kv set %s: %w", key, err))
	}
	return nil
}

func (s *GormKV) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.KVEntry{}).Error
	if err != nil {
		return wrapDBError(fmt.Errorf("kv delete %s: %w", key, err))
	}
	return nil
}

func (s *GormKV) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.KVEntry{}).Error
	if err != nil {
		return wrapDBError(fmt.Errorf("kv clear: %w", err))
	}
	return nil
}

func (s *GormKV) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&models.KVEntry{}).
		Pluck("key", &keys).Error
	if err != nil {
		return nil, wrapDBError(fmt.Errorf("kv keys: %w", err))
	}
	return keys, nil
}

// wrapDBError attaches the matching sentinel so Classify sees driver
// failures the same way it sees HTTP ones.
func wrapDBError(err error) error {
	switch Classify(err) {
	case ClassPermission:
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case ClassRetryable:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}

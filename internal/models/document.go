package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document is one stored record in the primary datastore. Records are kept
// document-style: the full field map lives in a JSONB column so the schema
// survives spreadsheet columns coming and going between imports.
type Document struct {
	ID         uint           `gorm:"primaryKey" json:"-"`
	Collection string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_collection_doc" json:"collection"`
	DocID      string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_collection_doc" json:"id"`
	Fields     datatypes.JSON `gorm:"type:jsonb" json:"fields"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (Document) TableName() string { return "documents" }

// KVEntry backs the storage compatibility shim's primary-datastore namespace.
// Disjoint from documents: the shim owns its own key space.
type KVEntry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Key       string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (KVEntry) TableName() string { return "kv_entries" }

// SyncMetadata tracks the last load/import outcome per collection.
type SyncMetadata struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	Collection     string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"collection"`
	LastSyncAt     *time.Time `json:"lastSyncAt"`
	LastSyncStatus string     `gorm:"type:varchar(50)" json:"lastSyncStatus"`
	RecordsSynced  int        `gorm:"default:0" json:"recordsSynced"`
	SourceInstance string     `gorm:"type:varchar(255)" json:"sourceInstance"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (SyncMetadata) TableName() string { return "sync_metadata" }

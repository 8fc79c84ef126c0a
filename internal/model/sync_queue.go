package model

import (
	"time"

	"gorm.io/datatypes"
)

// SyncOperation is the kind of a queued local mutation.
type SyncOperation string

const (
	SyncOpCreate SyncOperation = "CREATE"
	SyncOpUpdate SyncOperation = "UPDATE"
	SyncOpDelete SyncOperation = "DELETE"
)

// SyncStatus is the lifecycle state of a queue item. PENDING items are
// drained by the push phase; SYNCED items are garbage-collected; CONFLICT
// items wait for manual resolution and are never auto-retried.
type SyncStatus string

const (
	SyncStatusPending  SyncStatus = "PENDING"
	SyncStatusSynced   SyncStatus = "SYNCED"
	SyncStatusConflict SyncStatus = "CONFLICT"
)

// SyncQueueItem is one durable record of a local mutation awaiting push to
// the remote store. Data holds the remote-form payload, so the push phase
// can forward it without re-reading the mirror.
type SyncQueueItem struct {
	ID         string         `gorm:"primaryKey"`
	UserID     string         `gorm:"column:user_id;not null;index"`
	EntityType string         `gorm:"column:entity_type;not null;index:idx_sync_queue_entity"`
	EntityID   string         `gorm:"column:entity_id;not null;index:idx_sync_queue_entity"`
	Operation  SyncOperation  `gorm:"not null"`
	Data       datatypes.JSON
	SyncStatus SyncStatus     `gorm:"column:sync_status;not null;index"`
	Attempts   int            `gorm:"not null;default:0"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime:false"`
	SyncedAt   *time.Time     `gorm:"column:synced_at"`
}

func (SyncQueueItem) TableName() string { return "sync_queue" }

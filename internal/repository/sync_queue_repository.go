package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teamtasks/internal/model"
)

// SyncQueueRepository is the DAO for the pending-mutation queue.
type SyncQueueRepository struct {
	db *gorm.DB
}

func NewSyncQueueRepository(db *gorm.DB) *SyncQueueRepository {
	return &SyncQueueRepository{db: db}
}

// Enqueue records one local mutation for later push. Missing id, status
// and creation time are filled in; the write is local-only and expected to
// always succeed.
func (r *SyncQueueRepository) Enqueue(ctx context.Context, item *model.SyncQueueItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.SyncStatus == "" {
		item.SyncStatus = model.SyncStatusPending
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("enqueue sync item: %w", err)
	}
	return nil
}

// ListPending returns PENDING items oldest first, the FIFO order the push
// phase drains them in.
func (r *SyncQueueRepository) ListPending(ctx context.Context) ([]model.SyncQueueItem, error) {
	var items []model.SyncQueueItem
	if err := r.db.WithContext(ctx).
		Where("sync_status = ?", model.SyncStatusPending).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list pending sync items: %w", err)
	}
	return items, nil
}

func (r *SyncQueueRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]model.SyncQueueItem, error) {
	var items []model.SyncQueueItem
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list sync items by entity: %w", err)
	}
	return items, nil
}

// ListConflicts returns items parked for manual resolution.
func (r *SyncQueueRepository) ListConflicts(ctx context.Context) ([]model.SyncQueueItem, error) {
	var items []model.SyncQueueItem
	if err := r.db.WithContext(ctx).
		Where("sync_status = ?", model.SyncStatusConflict).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list conflicted sync items: %w", err)
	}
	return items, nil
}

// MarkSynced transitions an item PENDING -> SYNCED. Calling it again for an
// already-synced item is a no-op.
func (r *SyncQueueRepository) MarkSynced(ctx context.Context, id string, syncedAt time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.SyncQueueItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"sync_status": model.SyncStatusSynced,
			"synced_at":   syncedAt,
		}).Error; err != nil {
		return fmt.Errorf("mark sync item synced: %w", err)
	}
	return nil
}

// MarkConflict parks an item for manual resolution.
func (r *SyncQueueRepository) MarkConflict(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Model(&model.SyncQueueItem{}).
		Where("id = ?", id).
		Update("sync_status", model.SyncStatusConflict).Error; err != nil {
		return fmt.Errorf("mark sync item conflicted: %w", err)
	}
	return nil
}

// RecordFailure bumps the attempt counter after a failed push and promotes
// the item to CONFLICT once the counter reaches maxAttempts. Returns true
// when the item was promoted.
func (r *SyncQueueRepository) RecordFailure(ctx context.Context, id string, maxAttempts int) (bool, error) {
	if err := r.db.WithContext(ctx).Model(&model.SyncQueueItem{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
		return false, fmt.Errorf("record sync failure: %w", err)
	}
	if maxAttempts <= 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).Model(&model.SyncQueueItem{}).
		Where("id = ? AND sync_status = ? AND attempts >= ?", id, model.SyncStatusPending, maxAttempts).
		Update("sync_status", model.SyncStatusConflict)
	if res.Error != nil {
		return false, fmt.Errorf("promote sync item to conflict: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ClearSynced garbage-collects SYNCED rows. PENDING and CONFLICT rows are
// untouched.
func (r *SyncQueueRepository) ClearSynced(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Where("sync_status = ?", model.SyncStatusSynced).
		Delete(&model.SyncQueueItem{}).Error; err != nil {
		return fmt.Errorf("clear synced items: %w", err)
	}
	return nil
}

func (r *SyncQueueRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.SyncQueueItem{}).
		Where("sync_status = ?", model.SyncStatusPending).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count pending sync items: %w", err)
	}
	return count, nil
}

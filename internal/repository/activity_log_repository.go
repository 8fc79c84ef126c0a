package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teamtasks/internal/model"
)

// ActivityLogRepository is the mirror-store DAO for the audit trail.
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Upsert(ctx context.Context, entry *model.ActivityLog) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(entry).Error; err != nil {
		return fmt.Errorf("upsert activity log: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first, the order the activity feed
// displays them in.
func (r *ActivityLogRepository) ListRecent(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	q := r.db.WithContext(ctx).Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return entries, nil
}

func (r *ActivityLogRepository) ListByTask(ctx context.Context, taskID string) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Order("timestamp DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list activity logs by task: %w", err)
	}
	return entries, nil
}

func (r *ActivityLogRepository) ListByGroup(ctx context.Context, groupID string) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).
		Order("timestamp DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list activity logs by group: %w", err)
	}
	return entries, nil
}

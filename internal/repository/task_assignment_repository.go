package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teamtasks/internal/model"
)

// TaskAssignmentRepository is the mirror-store DAO for the append-only
// assignment history.
type TaskAssignmentRepository struct {
	db *gorm.DB
}

func NewTaskAssignmentRepository(db *gorm.DB) *TaskAssignmentRepository {
	return &TaskAssignmentRepository{db: db}
}

// Upsert inserts or replaces by id. Local writes only ever insert; the
// replace path exists for the pull phase re-mirroring the same row.
func (r *TaskAssignmentRepository) Upsert(ctx context.Context, assignment *model.TaskAssignment) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(assignment).Error; err != nil {
		return fmt.Errorf("upsert task assignment: %w", err)
	}
	return nil
}

func (r *TaskAssignmentRepository) ListByTask(ctx context.Context, taskID string) ([]model.TaskAssignment, error) {
	var assignments []model.TaskAssignment
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Order("assigned_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("list task assignments: %w", err)
	}
	return assignments, nil
}

func (r *TaskAssignmentRepository) ListByAssignee(ctx context.Context, userID string) ([]model.TaskAssignment, error) {
	var assignments []model.TaskAssignment
	if err := r.db.WithContext(ctx).Where("assigned_to_user = ?", userID).
		Order("assigned_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("list assignments by assignee: %w", err)
	}
	return assignments, nil
}

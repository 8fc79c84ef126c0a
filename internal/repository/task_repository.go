package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teamtasks/internal/model"
)

// TaskRepository is the mirror-store DAO for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Upsert inserts or replaces the task by primary key. Last writer wins,
// there is no field merge.
func (r *TaskRepository) Upsert(ctx context.Context, task *model.Task) error {
	task.Progress = model.ClampProgress(task.Progress)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(task).Error; err != nil {
		return fmt.Errorf("upsert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListByStatus returns the Kanban column for one status.
func (r *TaskRepository) ListByStatus(ctx context.Context, status model.TaskStatus) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("status = ?", status).
		Order("priority DESC, due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks by status: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListByPriority(ctx context.Context, priority model.TaskPriority) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("priority = ?", priority).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks by priority: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListAssignedToUser(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("assigned_to_user = ?", userID).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks assigned to user: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListAssignedToGroup(ctx context.Context, groupID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("assigned_to_group = ?", groupID).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks assigned to group: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListSubtasks(ctx context.Context, parentID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("parent_task_id = ?", parentID).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	return tasks, nil
}

// ListByDateRange returns tasks with a due date inside [start, end] for the
// calendar view.
func (r *TaskRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("due_date BETWEEN ? AND ?", start, end).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks by date range: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListOverdue(ctx context.Context, now time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("due_date < ? AND status != ?", now, model.TaskStatusDone).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	return tasks, nil
}

// Search matches a substring against title and description.
func (r *TaskRepository) Search(ctx context.Context, query string) ([]model.Task, error) {
	var tasks []model.Task
	pattern := "%" + query + "%"
	if err := r.db.WithContext(ctx).
		Where("title LIKE ? OR description LIKE ?", pattern, pattern).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status model.TaskStatus, updatedAt time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": updatedAt}).Error; err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}

func (r *TaskRepository) UpdateProgress(ctx context.Context, id string, progress int, updatedAt time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).
		Updates(map[string]any{"progress": model.ClampProgress(progress), "updated_at": updatedAt}).Error; err != nil {
		return fmt.Errorf("update task progress: %w", err)
	}
	return nil
}

// Delete removes a task. Subtasks and assignment history cascade via the
// foreign-key policy.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

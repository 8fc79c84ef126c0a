package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"teamtasks/internal/model"
	"teamtasks/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title           string
	Description     string
	Status          model.TaskStatus
	Priority        model.TaskPriority
	Progress        int
	DueDate         *time.Time
	AssignedToUser  *string
	AssignedToGroup *string
	ParentTaskID    *string
}

// TaskService performs local task mutations: each write lands in the
// mirror, appends to the audit trail and enqueues the remote-form payload
// for the next sync cycle.
type TaskService struct {
	store *repository.Store
}

func NewTaskService(store *repository.Store) *TaskService {
	return &TaskService{store: store}
}

// currentUserID resolves the authenticated identity from the cached
// session; mutations are stamped with it.
func (s *TaskService) currentUserID(ctx context.Context) (string, error) {
	token, err := s.store.AuthTokens.Get(ctx)
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", fmt.Errorf("not signed in")
	}
	return token.UserID, nil
}

func (s *TaskService) Create(ctx context.Context, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:              uuid.NewString(),
		Title:           input.Title,
		Status:          input.Status,
		Priority:        input.Priority,
		Progress:        model.ClampProgress(input.Progress),
		DueDate:         input.DueDate,
		CreatedBy:       userID,
		AssignedToUser:  input.AssignedToUser,
		AssignedToGroup: input.AssignedToGroup,
		ParentTaskID:    input.ParentTaskID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.Description != "" {
		task.Description = &input.Description
	}
	if task.Status == "" {
		task.Status = model.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = model.TaskPriorityMedium
	}

	if err := s.store.Tasks.Upsert(ctx, &task); err != nil {
		return nil, err
	}
	s.logActivity(ctx, model.ActivityLog{
		UserID:    &userID,
		TaskID:    &task.ID,
		Action:    model.ActionTaskCreated,
		NewValue:  mustJSON(taskRemotePayload(&task)),
		Timestamp: now,
	})
	if err := s.enqueue(ctx, userID, TableTasks, task.ID, model.SyncOpCreate, taskRemotePayload(&task)); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) UpdateStatus(ctx context.Context, taskID string, status model.TaskStatus) (*model.Task, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %s not found", taskID)
	}

	now := time.Now().UTC()
	oldStatus := task.Status
	if err := s.store.Tasks.UpdateStatus(ctx, taskID, status, now); err != nil {
		return nil, err
	}
	task.Status = status
	task.UpdatedAt = now

	s.logActivity(ctx, model.ActivityLog{
		UserID:    &userID,
		TaskID:    &task.ID,
		Action:    model.ActionStatusChanged,
		OldValue:  mustJSON(map[string]any{"status": oldStatus.Remote()}),
		NewValue:  mustJSON(map[string]any{"status": status.Remote()}),
		Timestamp: now,
	})
	payload := map[string]any{
		"status":     status.Remote(),
		"updated_at": formatTimestamp(now),
	}
	if err := s.enqueue(ctx, userID, TableTasks, task.ID, model.SyncOpUpdate, payload); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) UpdateProgress(ctx context.Context, taskID string, progress int) (*model.Task, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %s not found", taskID)
	}

	now := time.Now().UTC()
	progress = model.ClampProgress(progress)
	oldProgress := task.Progress
	if err := s.store.Tasks.UpdateProgress(ctx, taskID, progress, now); err != nil {
		return nil, err
	}
	task.Progress = progress
	task.UpdatedAt = now

	s.logActivity(ctx, model.ActivityLog{
		UserID:    &userID,
		TaskID:    &task.ID,
		Action:    model.ActionProgressUpdated,
		OldValue:  mustJSON(map[string]any{"progress": oldProgress}),
		NewValue:  mustJSON(map[string]any{"progress": progress}),
		Timestamp: now,
	})
	payload := map[string]any{
		"progress":   progress,
		"updated_at": formatTimestamp(now),
	}
	if err := s.enqueue(ctx, userID, TableTasks, task.ID, model.SyncOpUpdate, payload); err != nil {
		return nil, err
	}
	return task, nil
}

// Assign points a task at a user or a group and appends to the assignment
// history. Exactly one of toUser/toGroup should be set.
func (s *TaskService) Assign(ctx context.Context, taskID string, toUser, toGroup *string, assignmentType model.AssignmentType) (*model.TaskAssignment, error) {
	if (toUser == nil) == (toGroup == nil) {
		return nil, fmt.Errorf("assign to exactly one of user or group")
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %s not found", taskID)
	}

	now := time.Now().UTC()
	task.AssignedToUser = toUser
	task.AssignedToGroup = toGroup
	task.UpdatedAt = now
	if err := s.store.Tasks.Upsert(ctx, task); err != nil {
		return nil, err
	}

	assignment := model.TaskAssignment{
		ID:              uuid.NewString(),
		TaskID:          taskID,
		AssignedFrom:    &userID,
		AssignedToUser:  toUser,
		AssignedToGroup: toGroup,
		AssignmentType:  assignmentType,
		AssignedAt:      now,
	}
	if err := s.store.Assignments.Upsert(ctx, &assignment); err != nil {
		return nil, err
	}

	s.logActivity(ctx, model.ActivityLog{
		UserID:    &userID,
		TaskID:    &taskID,
		Action:    model.ActionTaskAssigned,
		NewValue:  mustJSON(taskAssignmentRemotePayload(&assignment)),
		Timestamp: now,
	})

	taskPayload := map[string]any{
		"updated_at": formatTimestamp(now),
	}
	if toUser != nil {
		taskPayload["assigned_to_user"] = *toUser
	}
	if toGroup != nil {
		taskPayload["assigned_to_group"] = *toGroup
	}
	if err := s.enqueue(ctx, userID, TableTasks, taskID, model.SyncOpUpdate, taskPayload); err != nil {
		return nil, err
	}
	if err := s.enqueue(ctx, userID, TableTaskAssignments, assignment.ID, model.SyncOpCreate, taskAssignmentRemotePayload(&assignment)); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Delete removes a task locally and queues the remote delete. The audit
// entry keeps a snapshot of the task instead of a task_id reference, which
// the cascade would immediately erase.
func (s *TaskService) Delete(ctx context.Context, taskID string) error {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return err
	}
	task, err := s.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}

	now := time.Now().UTC()
	if err := s.store.Tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	s.logActivity(ctx, model.ActivityLog{
		UserID:    &userID,
		Action:    model.ActionTaskDeleted,
		OldValue:  mustJSON(taskRemotePayload(task)),
		Timestamp: now,
	})
	return s.enqueue(ctx, userID, TableTasks, taskID, model.SyncOpDelete, nil)
}

func (s *TaskService) enqueue(ctx context.Context, userID, entityType, entityID string, op model.SyncOperation, payload map[string]any) error {
	item := model.SyncQueueItem{
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  op,
	}
	if payload != nil {
		item.Data = mustJSON(payload)
	}
	return s.store.Queue.Enqueue(ctx, &item)
}

// logActivity appends to the audit trail; a failed audit write must not
// fail the mutation it describes.
func (s *TaskService) logActivity(ctx context.Context, entry model.ActivityLog) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_ = s.store.Logs.Upsert(ctx, &entry)
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}

package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"teamtasks/internal/model"
)

// openTestStore opens a fresh migrated mirror in a per-test temp dir.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewStore(db)
}

func seedUser(t *testing.T, store *Store, id string) *model.UserProfile {
	t.Helper()
	now := time.Now().UTC()
	user := &model.UserProfile{
		ID:          id,
		DisplayName: "User " + id,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Users.Upsert(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return user
}

func seedTask(t *testing.T, store *Store, id, createdBy string) *model.Task {
	t.Helper()
	now := time.Now().UTC()
	task := &model.Task{
		ID:        id,
		Title:     "Task " + id,
		Status:    model.TaskStatusTodo,
		Priority:  model.TaskPriorityMedium,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Tasks.Upsert(context.Background(), task); err != nil {
		t.Fatalf("seed task %s: %v", id, err)
	}
	return task
}

func strptr(s string) *string { return &s }

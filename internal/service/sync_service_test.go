package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"teamtasks/internal/model"
	"teamtasks/internal/repository"
)

func openTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewStore(db)
}

// fakeRemote is an in-memory stand-in for the hosted backend. It records
// every mutating call in order and can be told to fail specific tables or
// entity ids.
type fakeRemote struct {
	mu sync.Mutex

	userID  string
	userErr error
	gate    chan struct{} // when set, CurrentUserID blocks until closed

	rows      map[string][]map[string]any
	selectErr map[string]error
	failIDs   map[string]error // insert/update/delete failures by entity id

	calls []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		userID:    "user-1",
		rows:      map[string][]map[string]any{},
		selectErr: map[string]error{},
		failIDs:   map[string]error{},
	}
}

func (f *fakeRemote) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeRemote) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) CurrentUserID(ctx context.Context) (string, error) {
	f.record("AUTH")
	if f.gate != nil {
		<-f.gate
	}
	if f.userErr != nil {
		return "", f.userErr
	}
	return f.userID, nil
}

func (f *fakeRemote) Select(ctx context.Context, table string) ([]map[string]any, error) {
	f.record("SELECT %s", table)
	if err := f.selectErr[table]; err != nil {
		return nil, err
	}
	return f.rows[table], nil
}

func (f *fakeRemote) Insert(ctx context.Context, table string, payload map[string]any) error {
	id, _ := payload["id"].(string)
	f.record("INSERT %s %s", table, id)
	return f.failIDs[id]
}

func (f *fakeRemote) Update(ctx context.Context, table string, payload map[string]any, id string) error {
	f.record("UPDATE %s %s", table, id)
	return f.failIDs[id]
}

func (f *fakeRemote) Delete(ctx context.Context, table string, id string) error {
	f.record("DELETE %s %s", table, id)
	return f.failIDs[id]
}

func enqueue(t *testing.T, store *repository.Store, entityID string, op model.SyncOperation, at time.Time) {
	t.Helper()
	item := &model.SyncQueueItem{
		UserID:     "user-1",
		EntityType: TableTasks,
		EntityID:   entityID,
		Operation:  op,
		CreatedAt:  at,
	}
	if op != model.SyncOpDelete {
		item.Data = []byte(`{"id":"` + entityID + `","title":"t"}`)
	}
	if err := store.Queue.Enqueue(context.Background(), item); err != nil {
		t.Fatalf("enqueue %s: %v", entityID, err)
	}
}

func TestPerformFullSyncPushThenPull(t *testing.T) {
	store := openTestStore(t)
	remote := newFakeRemote()
	remote.rows[TableUserProfiles] = []map[string]any{
		{"id": "user-1", "display_name": "Alice", "created_at": "2026-08-01T10:00:00Z", "updated_at": "2026-08-01T10:00:00Z"},
	}
	remote.rows[TableTasks] = []map[string]any{
		{"id": "task-r", "title": "Remote task", "created_by": "user-1", "status": "in_progress", "priority": "high", "progress": float64(40)},
	}
	svc := NewSyncService(store, remote, nil, 5)

	base := time.Now().UTC().Truncate(time.Second)
	enqueue(t, store, "task-1", model.SyncOpCreate, base)
	enqueue(t, store, "task-1", model.SyncOpUpdate, base.Add(time.Second))
	enqueue(t, store, "task-2", model.SyncOpDelete, base.Add(2*time.Second))

	res, err := svc.PerformFullSync(context.Background())
	if err != nil {
		t.Fatalf("full sync: %v", err)
	}
	if res.Pushed != 3 || res.PushFailed != 0 {
		t.Errorf("pushed=%d failed=%d, want 3/0", res.Pushed, res.PushFailed)
	}
	if res.Pulled != 2 || res.SkippedRows != 0 || res.SkippedTables != 0 {
		t.Errorf("pulled=%d skippedRows=%d skippedTables=%d, want 2/0/0",
			res.Pulled, res.SkippedRows, res.SkippedTables)
	}

	calls := remote.callLog()
	wantPrefix := []string{
		"AUTH",
		"INSERT task task-1",
		"UPDATE task task-1",
		"DELETE task task-2",
		"SELECT user_profile",
	}
	for i, w := range wantPrefix {
		if i >= len(calls) || calls[i] != w {
			t.Fatalf("call[%d] = %v, want %q (full log %v)", i, calls, w, calls)
		}
	}

	ctx := context.Background()
	// Synced queue items were garbage-collected after the cycle.
	count, err := store.Queue.CountPending(ctx)
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if count != 0 {
		t.Errorf("pending after sync = %d, want 0", count)
	}
	leftovers, err := store.Queue.ListByEntity(ctx, TableTasks, "task-1")
	if err != nil {
		t.Fatalf("list by entity: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("synced items survived gc: %v", leftovers)
	}

	// The pulled row landed in the mirror with decoded enums.
	task, err := store.Tasks.GetByID(ctx, "task-r")
	if err != nil {
		t.Fatalf("get pulled task: %v", err)
	}
	if task == nil {
		t.Fatal("pulled task missing from mirror")
	}
	if task.Status != model.TaskStatusInProgress || task.Priority != model.TaskPriorityHigh || task.Progress != 40 {
		t.Errorf("pulled task decoded wrong: %+v", task)
	}

	// The cycle recorded its completion time.
	at, err := store.Settings.LastSyncedAt(ctx)
	if err != nil {
		t.Fatalf("last synced at: %v", err)
	}
	if at.IsZero() {
		t.Error("last sync timestamp not recorded")
	}
}

func TestPushFailureSkipsItemOnly(t *testing.T) {
	store := openTestStore(t)
	remote := newFakeRemote()
	remote.failIDs["task-b"] = errors.New("boom")
	svc := NewSyncService(store, remote, nil, 5)

	base := time.Now().UTC().Truncate(time.Second)
	enqueue(t, store, "task-a", model.SyncOpCreate, base)
	enqueue(t, store, "task-b", model.SyncOpCreate, base.Add(time.Second))
	enqueue(t, store, "task-c", model.SyncOpCreate, base.Add(2*time.Second))

	res, err := svc.PerformFullSync(context.Background())
	if err != nil {
		t.Fatalf("full sync: %v", err)
	}
	if res.Pushed != 2 || res.PushFailed != 1 {
		t.Errorf("pushed=%d failed=%d, want 2/1", res.Pushed, res.PushFailed)
	}

	// The failed item stays queued for the next cycle with one attempt
	// recorded; the successes were swept.
	pending, err := store.Queue.ListPending(context.Background())
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].EntityID != "task-b" {
		t.Fatalf("pending = %v, want just task-b", pending)
	}
	if pending[0].Attempts != 1 {
		t.Errorf("attempts = %d, want 1", pending[0].Attempts)
	}
}

func TestPushFailureParksConflictAtCap(t *testing.T) {
	store := openTestStore(t)
	remote := newFakeRemote()
	remote.failIDs["task-b"] = errors.New("boom")
	svc := NewSyncService(store, remote, nil, 1)

	enqueue(t, store, "task-b", model.SyncOpCreate, time.Now().UTC())

	if _, err := svc.PerformFullSync(context.Background()); err != nil {
		t.Fatalf("full sync: %v", err)
	}

	conflicts, err := svc.Conflicts(context.Background())
	if err != nil {
		t.Fatalf("conflicts: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].EntityID != "task-b" {
		t.Fatalf("conflicts = %v, want just task-b", conflicts)
	}

	// A parked item is never retried.
	before := len(remote.callLog())
	if _, err := svc.PerformFullSync(context.Background()); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	for _, call := range remote.callLog()[before:] {
		if call == "INSERT task task-b" {
			t.Error("conflicted item was retried")
		}
	}
}

func TestSyncAbortsWithoutSession(t *testing.T) {
	store := openTestStore(t)
	remote := newFakeRemote()
	remote.userErr = errors.New("jwt expired")
	svc := NewSyncService(store, remote, nil, 5)

	enqueue(t, store, "task-1", model.SyncOpCreate, time.Now().UTC())

	if _, err := svc.PerformFullSync(context.Background()); err == nil {
		t.Fatal("expected an error when the session check fails")
	}

	// Nothing was pushed and the queue is intact.
	for _, call := range remote.callLog() {
		if call != "AUTH" {
			t.Errorf("unexpected remote call %q", call)
		}
	}
	count, err := store.Queue.CountPending(context.Background())
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if count != 1 {
		t.Errorf("pending = %d, want untouched 1", count)
	}
}

func TestPullSkipsFailedTable(t *testing.T) {
	store := openTestStore(t)
	remote := newFakeRemote()
	remote.selectErr[TableTasks] = errors.New("timeout")
	remote.rows[TableUserProfiles] = []map[string]any{
		{"id": "user-1", "display_name": "Alice"},
	}
	svc := NewSyncService(store, remote, nil, 5)

	res, err := svc.PerformFullSync(context.Background())
	if err != nil {
		t.Fatalf("full sync: %v", err)
	}
	if res.SkippedTables != 1 {
		t.Errorf("skipped tables = %d, want 1", res.SkippedTables)
	}
	if res.Pulled != 1 {
		t.Errorf("pulled = %d, want the user row despite the task failure", res.Pulled)
	}
}

func TestPullSkipsMalformedRow(t *testing.T) {
	store := openTestStore(t)
	remote := newFakeRemote()
	remote.rows[TableUserProfiles] = []map[string]any{
		{"display_name": "No ID"},
		{"id": "user-1", "display_name": "Alice"},
	}
	svc := NewSyncService(store, remote, nil, 5)

	res, err := svc.PerformFullSync(context.Background())
	if err != nil {
		t.Fatalf("full sync: %v", err)
	}
	if res.SkippedRows != 1 || res.Pulled != 1 {
		t.Errorf("skippedRows=%d pulled=%d, want 1/1", res.SkippedRows, res.Pulled)
	}
	user, err := store.Users.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user == nil {
		t.Error("valid row was not applied")
	}
}

func TestPullOverwritesLocalState(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := store.Users.Upsert(ctx, &model.UserProfile{ID: "user-1", DisplayName: "Alice", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := store.Tasks.Upsert(ctx, &model.Task{
		ID: "task-1", Title: "Stale local title", Status: model.TaskStatusDone,
		Priority: model.TaskPriorityLow, Progress: 100, CreatedBy: "user-1",
		CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	remote := newFakeRemote()
	remote.rows[TableTasks] = []map[string]any{
		{"id": "task-1", "title": "Fresh remote title", "created_by": "user-1", "status": "mystery_state", "priority": "urgent"},
	}
	svc := NewSyncService(store, remote, nil, 5)

	if _, err := svc.PerformFullSync(ctx); err != nil {
		t.Fatalf("full sync: %v", err)
	}

	task, err := store.Tasks.GetByID(ctx, "task-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if task.Title != "Fresh remote title" {
		t.Errorf("title = %q, want the remote value", task.Title)
	}
	if task.Status != model.TaskStatusTodo {
		t.Errorf("unknown remote status decoded to %q, want TODO fallback", task.Status)
	}
	if task.Priority != model.TaskPriorityUrgent {
		t.Errorf("priority = %q, want URGENT", task.Priority)
	}
}

func TestSyncSingleFlight(t *testing.T) {
	store := openTestStore(t)
	remote := newFakeRemote()
	remote.gate = make(chan struct{})
	svc := NewSyncService(store, remote, nil, 5)

	done := make(chan error, 1)
	go func() {
		_, err := svc.PerformFullSync(context.Background())
		done <- err
	}()

	// Wait for the first cycle to enter the session check, then try again.
	deadline := time.After(2 * time.Second)
	for len(remote.callLog()) == 0 {
		select {
		case <-deadline:
			t.Fatal("first sync never started")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if _, err := svc.PerformFullSync(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("concurrent sync error = %v, want ErrSyncInProgress", err)
	}

	close(remote.gate)
	if err := <-done; err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	// The lock is released afterwards.
	if _, err := svc.PerformFullSync(context.Background()); err != nil {
		t.Errorf("follow-up sync failed: %v", err)
	}
}

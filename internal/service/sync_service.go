package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"teamtasks/internal/model"
	"teamtasks/internal/repository"
)

// ErrSyncInProgress is returned when PerformFullSync is called while a
// previous cycle is still running. Overlapping cycles would corrupt the
// PENDING/SYNCED bookkeeping, so only one runs at a time.
var ErrSyncInProgress = errors.New("sync already in progress")

// RemoteStore is the contract the sync engine needs from the hosted
// backend. remote.Client satisfies it; tests supply a fake.
type RemoteStore interface {
	Select(ctx context.Context, table string) ([]map[string]any, error)
	Insert(ctx context.Context, table string, payload map[string]any) error
	Update(ctx context.Context, table string, payload map[string]any, id string) error
	Delete(ctx context.Context, table string, id string) error
	CurrentUserID(ctx context.Context) (string, error)
}

// SyncResult reports what one full-sync cycle did. Per-item and per-row
// failures end up in the counters, not in the error return.
type SyncResult struct {
	Pushed        int
	PushFailed    int
	Pulled        int
	SkippedRows   int
	SkippedTables int
	Duration      time.Duration
}

// SyncService runs the full synchronization cycle: drain the pending-
// mutation queue against the remote store, then overwrite the local mirror
// with the remote's current state (last-pull-wins).
type SyncService struct {
	store           *repository.Store
	remote          RemoteStore
	logger          *log.Logger
	maxPushAttempts int

	mu sync.Mutex // serializes sync cycles
}

// NewSyncService wires the engine. A nil logger defaults to stderr.
// maxPushAttempts bounds retries before a queue item is parked as
// CONFLICT; zero or negative means retry forever.
func NewSyncService(store *repository.Store, remote RemoteStore, logger *log.Logger, maxPushAttempts int) *SyncService {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &SyncService{
		store:           store,
		remote:          remote,
		logger:          logger,
		maxPushAttempts: maxPushAttempts,
	}
}

// PerformFullSync runs one push-then-pull cycle. It fails only when the
// orchestration itself cannot proceed (no auth session, unreadable queue);
// individual item pushes and row pulls are skip-on-error and reported via
// the result counters. Push runs before pull so queued local writes are not
// clobbered by their own stale remote copy.
func (s *SyncService) PerformFullSync(ctx context.Context) (*SyncResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	start := time.Now()
	s.logger.Printf("starting full sync")

	if _, err := s.remote.CurrentUserID(ctx); err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}

	res := &SyncResult{}
	if err := s.pushPendingChanges(ctx, res); err != nil {
		return nil, fmt.Errorf("push phase: %w", err)
	}
	if err := s.pullFreshData(ctx, res); err != nil {
		return nil, fmt.Errorf("pull phase: %w", err)
	}

	// Housekeeping after a completed cycle; best effort.
	if err := s.store.Queue.ClearSynced(ctx); err != nil {
		s.logger.Printf("WARNING: clear synced queue items: %v", err)
	}
	if err := s.store.Settings.SetLastSyncedAt(ctx, time.Now()); err != nil {
		s.logger.Printf("WARNING: record last sync time: %v", err)
	}

	res.Duration = time.Since(start)
	s.logger.Printf("full sync complete: pushed=%d (failed=%d), pulled=%d (skipped rows=%d, skipped tables=%d)",
		res.Pushed, res.PushFailed, res.Pulled, res.SkippedRows, res.SkippedTables)
	return res, nil
}

// pushPendingChanges drains the queue in FIFO order. One item's failure
// never aborts the rest: the item keeps PENDING (or is parked as CONFLICT
// once the attempt cap is hit) and the loop moves on.
func (s *SyncService) pushPendingChanges(ctx context.Context, res *SyncResult) error {
	items, err := s.store.Queue.ListPending(ctx)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := s.pushItem(ctx, &item); err != nil {
			s.logger.Printf("WARNING: push %s %s/%s (%s): %v",
				item.Operation, item.EntityType, item.EntityID, item.ID, err)
			res.PushFailed++
			promoted, recErr := s.store.Queue.RecordFailure(ctx, item.ID, s.maxPushAttempts)
			if recErr != nil {
				s.logger.Printf("WARNING: record push failure for %s: %v", item.ID, recErr)
			} else if promoted {
				s.logger.Printf("sync item %s parked as conflict after %d attempts", item.ID, item.Attempts+1)
			}
			continue
		}
		if err := s.store.Queue.MarkSynced(ctx, item.ID, time.Now().UTC()); err != nil {
			s.logger.Printf("WARNING: mark %s synced: %v", item.ID, err)
		}
		res.Pushed++
	}
	return nil
}

func (s *SyncService) pushItem(ctx context.Context, item *model.SyncQueueItem) error {
	switch item.Operation {
	case model.SyncOpCreate:
		payload, err := decodeQueuePayload(item.Data)
		if err != nil {
			return err
		}
		return s.remote.Insert(ctx, item.EntityType, payload)
	case model.SyncOpUpdate:
		payload, err := decodeQueuePayload(item.Data)
		if err != nil {
			return err
		}
		return s.remote.Update(ctx, item.EntityType, payload, item.EntityID)
	case model.SyncOpDelete:
		return s.remote.Delete(ctx, item.EntityType, item.EntityID)
	default:
		return fmt.Errorf("unknown operation %q", item.Operation)
	}
}

func decodeQueuePayload(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty queue payload")
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode queue payload: %w", err)
	}
	return payload, nil
}

// pullFreshData overwrites the local mirror with the remote state, table by
// table, parents before children so foreign keys resolve during upsert. A
// failed table fetch skips that table for this cycle; a failed row skips
// just that row.
func (s *SyncService) pullFreshData(ctx context.Context, res *SyncResult) error {
	tables := []struct {
		name  string
		apply func(ctx context.Context, row map[string]any) error
	}{
		{TableUserProfiles, func(ctx context.Context, row map[string]any) error {
			profile, err := decodeUserProfile(row)
			if err != nil {
				return err
			}
			return s.store.Users.Upsert(ctx, profile)
		}},
		{TableGroups, func(ctx context.Context, row map[string]any) error {
			group, err := decodeGroup(row)
			if err != nil {
				return err
			}
			return s.store.Groups.Upsert(ctx, group)
		}},
		{TableGroupMembers, func(ctx context.Context, row map[string]any) error {
			member, err := decodeGroupMember(row)
			if err != nil {
				return err
			}
			return s.store.Members.Upsert(ctx, member)
		}},
		{TableTasks, func(ctx context.Context, row map[string]any) error {
			task, err := decodeTask(row)
			if err != nil {
				return err
			}
			return s.store.Tasks.Upsert(ctx, task)
		}},
		{TableTaskAssignments, func(ctx context.Context, row map[string]any) error {
			assignment, err := decodeTaskAssignment(row)
			if err != nil {
				return err
			}
			return s.store.Assignments.Upsert(ctx, assignment)
		}},
		{TableActivityLogs, func(ctx context.Context, row map[string]any) error {
			entry, err := decodeActivityLog(row)
			if err != nil {
				return err
			}
			return s.store.Logs.Upsert(ctx, entry)
		}},
	}

	for _, table := range tables {
		rows, err := s.remote.Select(ctx, table.name)
		if err != nil {
			s.logger.Printf("WARNING: pull %s: %v (table skipped)", table.name, err)
			res.SkippedTables++
			continue
		}
		for _, row := range rows {
			if err := table.apply(ctx, row); err != nil {
				s.logger.Printf("WARNING: apply %s row: %v (row skipped)", table.name, err)
				res.SkippedRows++
				continue
			}
			res.Pulled++
		}
	}
	return nil
}

// PendingCount reports how many queued mutations still await push.
func (s *SyncService) PendingCount(ctx context.Context) (int64, error) {
	return s.store.Queue.CountPending(ctx)
}

// Conflicts lists queue items parked for manual resolution.
func (s *SyncService) Conflicts(ctx context.Context) ([]model.SyncQueueItem, error) {
	return s.store.Queue.ListConflicts(ctx)
}

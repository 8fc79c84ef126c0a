package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"teamtasks/internal/model"
	"teamtasks/internal/repository"
)

// GroupService performs local group mutations with the same
// write-log-enqueue pattern as TaskService.
type GroupService struct {
	store *repository.Store
}

func NewGroupService(store *repository.Store) *GroupService {
	return &GroupService{store: store}
}

func (s *GroupService) currentUserID(ctx context.Context) (string, error) {
	token, err := s.store.AuthTokens.Get(ctx)
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", fmt.Errorf("not signed in")
	}
	return token.UserID, nil
}

// Create makes a group owned by the current user, who also becomes its
// first OWNER member.
func (s *GroupService) Create(ctx context.Context, name, description string, parentGroupID *string) (*model.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	group := model.Group{
		ID:            uuid.NewString(),
		Name:          name,
		OwnerID:       userID,
		ParentGroupID: parentGroupID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if description != "" {
		group.Description = &description
	}
	if err := s.store.Groups.Upsert(ctx, &group); err != nil {
		return nil, err
	}

	member := model.GroupMember{
		ID:       uuid.NewString(),
		GroupID:  group.ID,
		UserID:   userID,
		Role:     model.MemberRoleOwner,
		JoinedAt: now,
	}
	if err := s.store.Members.Upsert(ctx, &member); err != nil {
		return nil, err
	}

	s.logActivity(ctx, model.ActivityLog{
		UserID:    &userID,
		GroupID:   &group.ID,
		Action:    model.ActionGroupCreated,
		NewValue:  mustJSON(groupRemotePayload(&group)),
		Timestamp: now,
	})
	if err := s.enqueue(ctx, userID, TableGroups, group.ID, model.SyncOpCreate, groupRemotePayload(&group)); err != nil {
		return nil, err
	}
	if err := s.enqueue(ctx, userID, TableGroupMembers, member.ID, model.SyncOpCreate, groupMemberRemotePayload(&member)); err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *GroupService) AddMember(ctx context.Context, groupID, memberUserID string, role model.MemberRole) (*model.GroupMember, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	group, err := s.store.Groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, fmt.Errorf("group %s not found", groupID)
	}
	if role == "" {
		role = model.MemberRoleMember
	}

	now := time.Now().UTC()
	member := model.GroupMember{
		ID:       uuid.NewString(),
		GroupID:  groupID,
		UserID:   memberUserID,
		Role:     role,
		JoinedAt: now,
	}
	if err := s.store.Members.Upsert(ctx, &member); err != nil {
		return nil, err
	}

	s.logActivity(ctx, model.ActivityLog{
		UserID:    &userID,
		GroupID:   &groupID,
		Action:    model.ActionMemberAdded,
		NewValue:  mustJSON(groupMemberRemotePayload(&member)),
		Timestamp: now,
	})
	if err := s.enqueue(ctx, userID, TableGroupMembers, member.ID, model.SyncOpCreate, groupMemberRemotePayload(&member)); err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *GroupService) RemoveMember(ctx context.Context, memberID string) error {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return err
	}
	member, err := s.store.Members.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return nil
	}

	now := time.Now().UTC()
	if err := s.store.Members.Delete(ctx, memberID); err != nil {
		return err
	}
	s.logActivity(ctx, model.ActivityLog{
		UserID:    &userID,
		GroupID:   &member.GroupID,
		Action:    model.ActionMemberRemoved,
		OldValue:  mustJSON(groupMemberRemotePayload(member)),
		Timestamp: now,
	})
	return s.enqueue(ctx, userID, TableGroupMembers, memberID, model.SyncOpDelete, nil)
}

func (s *GroupService) enqueue(ctx context.Context, userID, entityType, entityID string, op model.SyncOperation, payload map[string]any) error {
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

func (s *GroupService) logActivity(ctx context.Context, entry model.ActivityLog) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_ = s.store.Logs.Upsert(ctx, &entry)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teamtasks/internal/model"
)

// GroupMemberRepository is the mirror-store DAO for group memberships.
type GroupMemberRepository struct {
	db *gorm.DB
}

func NewGroupMemberRepository(db *gorm.DB) *GroupMemberRepository {
	return &GroupMemberRepository{db: db}
}

func (r *GroupMemberRepository) Upsert(ctx context.Context, member *model.GroupMember) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(member).Error; err != nil {
		return fmt.Errorf("upsert group member: %w", err)
	}
	return nil
}

func (r *GroupMemberRepository) GetByID(ctx context.Context, id string) (*model.GroupMember, error) {
	var member model.GroupMember
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get group member: %w", err)
	}
	return &member, nil
}

func (r *GroupMemberRepository) ListByGroup(ctx context.Context, groupID string) ([]model.GroupMember, error) {
	var members []model.GroupMember
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return members, nil
}

func (r *GroupMemberRepository) ListByUser(ctx context.Context, userID string) ([]model.GroupMember, error) {
	var members []model.GroupMember
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return members, nil
}

func (r *GroupMemberRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).
		Delete(&model.GroupMember{}).Error; err != nil {
		return fmt.Errorf("delete group member: %w", err)
	}
	return nil
}

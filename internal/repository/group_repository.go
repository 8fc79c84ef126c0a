package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teamtasks/internal/model"
)

// GroupRepository is the mirror-store DAO for groups.
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Upsert(ctx context.Context, group *model.Group) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(group).Error; err != nil {
		return fmt.Errorf("upsert group: %w", err)
	}
	return nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &group, nil
}

func (r *GroupRepository) ListAll(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func (r *GroupRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Group, error) {
	var groups []model.Group
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("list groups by owner: %w", err)
	}
	return groups, nil
}

func (r *GroupRepository) ListChildren(ctx context.Context, parentID string) ([]model.Group, error) {
	var groups []model.Group
	if err := r.db.WithContext(ctx).Where("parent_group_id = ?", parentID).Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("list child groups: %w", err)
	}
	return groups, nil
}

// Delete removes a group. Memberships and child groups cascade; tasks
// assigned to the group lose the assignment per the foreign-key policy.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).
		Delete(&model.Group{}).Error; err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

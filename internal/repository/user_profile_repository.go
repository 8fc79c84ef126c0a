package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teamtasks/internal/model"
)

// UserProfileRepository is the mirror-store DAO for user profiles.
type UserProfileRepository struct {
	db *gorm.DB
}

func NewUserProfileRepository(db *gorm.DB) *UserProfileRepository {
	return &UserProfileRepository{db: db}
}

func (r *UserProfileRepository) Upsert(ctx context.Context, profile *model.UserProfile) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(profile).Error; err != nil {
		return fmt.Errorf("upsert user profile: %w", err)
	}
	return nil
}

func (r *UserProfileRepository) GetByID(ctx context.Context, id string) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return &profile, nil
}

func (r *UserProfileRepository) ListAll(ctx context.Context) ([]model.UserProfile, error) {
	var profiles []model.UserProfile
	if err := r.db.WithContext(ctx).Order("display_name ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list user profiles: %w", err)
	}
	return profiles, nil
}

// Delete removes a profile. Owned groups cascade; task assignee references
// are set to null per the foreign-key policy.
func (r *UserProfileRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).
		Delete(&model.UserProfile{}).Error; err != nil {
		return fmt.Errorf("delete user profile: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teamtasks/internal/model"
)

// The auth token cache is a single-row table; this is its fixed key.
const authTokenRowID = 1

// AuthTokenRepository stores the cached remote session.
type AuthTokenRepository struct {
	db *gorm.DB
}

func NewAuthTokenRepository(db *gorm.DB) *AuthTokenRepository {
	return &AuthTokenRepository{db: db}
}

// Save replaces the cached session. The row id is forced to the singleton
// key regardless of what the caller set.
func (r *AuthTokenRepository) Save(ctx context.Context, token *model.AuthToken) error {
	token.ID = authTokenRowID
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(token).Error; err != nil {
		return fmt.Errorf("save auth token: %w", err)
	}
	return nil
}

// Get returns the cached session, or nil when none is stored.
func (r *AuthTokenRepository) Get(ctx context.Context) (*model.AuthToken, error) {
	var token model.AuthToken
	if err := r.db.WithContext(ctx).Where("id = ?", authTokenRowID).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get auth token: %w", err)
	}
	return &token, nil
}

// Clear drops the cached session (logout).
func (r *AuthTokenRepository) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("id = ?", authTokenRowID).
		Delete(&model.AuthToken{}).Error; err != nil {
		return fmt.Errorf("clear auth token: %w", err)
	}
	return nil
}

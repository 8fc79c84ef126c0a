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

// AppSettingsRepository is a key/value store for simple local flags.
type AppSettingsRepository struct {
	db *gorm.DB
}

func NewAppSettingsRepository(db *gorm.DB) *AppSettingsRepository {
	return &AppSettingsRepository{db: db}
}

// Set upserts one setting.
func (r *AppSettingsRepository) Set(ctx context.Context, key, value string) error {
	setting := model.AppSetting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error; err != nil {
		return fmt.Errorf("set app setting %q: %w", key, err)
	}
	return nil
}

// Get returns the value for key, or "" when the key is unset.
func (r *AppSettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var setting model.AppSetting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get app setting %q: %w", key, err)
	}
	return setting.Value, nil
}

// SetLastSyncedAt records when the last successful sync cycle finished.
func (r *AppSettingsRepository) SetLastSyncedAt(ctx context.Context, at time.Time) error {
	return r.Set(ctx, model.SettingLastSyncTimestamp, at.UTC().Format(time.RFC3339))
}

// LastSyncedAt returns the recorded end of the last successful sync cycle,
// or the zero time when no sync has completed yet.
func (r *AppSettingsRepository) LastSyncedAt(ctx context.Context) (time.Time, error) {
	raw, err := r.Get(ctx, model.SettingLastSyncTimestamp)
	if err != nil || raw == "" {
		return time.Time{}, err
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last sync timestamp: %w", err)
	}
	return at, nil
}

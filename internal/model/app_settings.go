package model

import "time"

// Keys used by the sync engine.
const (
	SettingLastSyncTimestamp = "last_sync_timestamp"
	SettingOfflineMode       = "offline_mode_enabled"
	SettingCurrentUserID     = "current_user_id"
)

// AppSetting is one key/value pair in the local settings table.
type AppSetting struct {
	Key       string    `gorm:"primaryKey"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (AppSetting) TableName() string { return "app_settings" }

package model

import "time"

// UserProfile mirrors one row of the remote user_profile table.
// Timestamps come from the remote, so gorm must not touch them.
type UserProfile struct {
	ID          string  `gorm:"primaryKey"`
	DisplayName string  `gorm:"column:display_name;not null"`
	AvatarURL   *string `gorm:"column:avatar_url"`
	PublicKey   string  `gorm:"column:public_key;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (UserProfile) TableName() string { return "user_profiles" }

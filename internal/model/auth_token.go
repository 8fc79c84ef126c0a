package model

import "time"

// AuthToken caches the remote session locally. The table holds at most one
// row (id is always 1).
type AuthToken struct {
	ID           int       `gorm:"primaryKey"`
	AccessToken  string    `gorm:"column:access_token;not null"`
	RefreshToken *string   `gorm:"column:refresh_token"`
	UserID       string    `gorm:"column:user_id;not null"`
	ExpiresAt    time.Time `gorm:"column:expires_at"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime:false"`
}

func (AuthToken) TableName() string { return "auth_tokens" }

// IsExpired reports whether the cached session has passed its expiry.
func (t *AuthToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

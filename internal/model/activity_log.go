package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is the append-only audit trail. Rows referencing a deleted
// task or group are cascade-deleted; a deleted user leaves user_id null.
type ActivityLog struct {
	ID        string         `gorm:"primaryKey"`
	UserID    *string        `gorm:"column:user_id;index"`
	TaskID    *string        `gorm:"column:task_id;index"`
	GroupID   *string        `gorm:"column:group_id;index"`
	Action    ActivityAction `gorm:"not null;index"`
	OldValue  datatypes.JSON `gorm:"column:old_value"`
	NewValue  datatypes.JSON `gorm:"column:new_value"`
	Metadata  datatypes.JSON
	Timestamp time.Time      `gorm:"index"`

	User  *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Task  *Task        `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Group *Group       `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

func (ActivityLog) TableName() string { return "activity_logs" }

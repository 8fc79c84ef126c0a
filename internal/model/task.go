package model

import "time"

// Task is the core entity: a unit of work that can be assigned to a user or
// a group and nested under a parent task. Progress is kept in [0,100].
type Task struct {
	ID                   string       `gorm:"primaryKey"`
	Title                string       `gorm:"not null"`
	Description          *string
	DescriptionEncrypted *string      `gorm:"column:description_encrypted"`
	Status               TaskStatus   `gorm:"not null;index"`
	Priority             TaskPriority `gorm:"not null;index"`
	Progress             int          `gorm:"not null;default:0"`
	DueDate              *time.Time   `gorm:"column:due_date;index"`
	CreatedBy            string       `gorm:"column:created_by;not null;index"`
	AssignedToUser       *string      `gorm:"column:assigned_to_user;index"`
	AssignedToGroup      *string      `gorm:"column:assigned_to_group;index"`
	ParentTaskID         *string      `gorm:"column:parent_task_id;index"`
	EncryptionMetadata   *string      `gorm:"column:encryption_metadata"`
	CreatedAt            time.Time    `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt            time.Time    `gorm:"column:updated_at;autoUpdateTime:false"`

	Creator       *UserProfile `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE"`
	AssignedUser  *UserProfile `gorm:"foreignKey:AssignedToUser;constraint:OnDelete:SET NULL"`
	AssignedGroup *Group       `gorm:"foreignKey:AssignedToGroup;constraint:OnDelete:SET NULL"`
	Parent        *Task        `gorm:"foreignKey:ParentTaskID;constraint:OnDelete:CASCADE"`
}

func (Task) TableName() string { return "tasks" }

// ClampProgress bounds a progress value to the valid 0-100 range.
func ClampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

package model

import "time"

// TaskAssignment is one entry in the append-only assignment history of a
// task. Rows are never mutated after insert.
type TaskAssignment struct {
	ID              string         `gorm:"primaryKey"`
	TaskID          string         `gorm:"column:task_id;not null;index"`
	AssignedFrom    *string        `gorm:"column:assigned_from"`
	AssignedToUser  *string        `gorm:"column:assigned_to_user;index"`
	AssignedToGroup *string        `gorm:"column:assigned_to_group;index"`
	AssignmentType  AssignmentType `gorm:"column:assignment_type;not null"`
	AssignedAt      time.Time      `gorm:"column:assigned_at"`

	Task      *Task        `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	FromUser  *UserProfile `gorm:"foreignKey:AssignedFrom;constraint:OnDelete:SET NULL"`
	ToUser    *UserProfile `gorm:"foreignKey:AssignedToUser;constraint:OnDelete:SET NULL"`
	ToGroup   *Group       `gorm:"foreignKey:AssignedToGroup;constraint:OnDelete:SET NULL"`
}

func (TaskAssignment) TableName() string { return "task_assignments" }

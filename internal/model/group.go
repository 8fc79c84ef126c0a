package model

import "time"

// Group is a team of users, optionally nested under a parent group.
// Deleting the owner or the parent cascades to the group.
type Group struct {
	ID            string  `gorm:"primaryKey"`
	Name          string  `gorm:"not null"`
	Description   *string
	OwnerID       string  `gorm:"column:owner_id;not null;index"`
	ParentGroupID *string `gorm:"column:parent_group_id;index"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime:false"`

	Owner  *UserProfile `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Parent *Group       `gorm:"foreignKey:ParentGroupID;constraint:OnDelete:CASCADE"`
}

func (Group) TableName() string { return "groups" }

package model

import "time"

// GroupMember links a user to a group with a role. The composite unique
// index keeps membership to at most one row per user per group.
type GroupMember struct {
	ID       string     `gorm:"primaryKey"`
	GroupID  string     `gorm:"column:group_id;not null;uniqueIndex:idx_group_members_group_user;index"`
	UserID   string     `gorm:"column:user_id;not null;uniqueIndex:idx_group_members_group_user;index"`
	Role     MemberRole `gorm:"not null;index"`
	JoinedAt time.Time  `gorm:"column:joined_at"`

	Group *Group       `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	User  *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (GroupMember) TableName() string { return "group_members" }

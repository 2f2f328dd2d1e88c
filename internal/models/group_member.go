package models

import (
	"time"

	"gorm.io/gorm"
)

// GroupMember is a roster entry. UserID stays nil for guests until the
// member is linked to an account; at most one member per (group, user) pair.
// LegacyPlayerID points at an imported Player record when the member
// originated from a legacy export.
type GroupMember struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	GroupID        uint           `gorm:"index:idx_member_group_user,unique;not null" json:"group_id"`
	UserID         *uint          `gorm:"index:idx_member_group_user,unique" json:"user_id"`
	DisplayName    string         `gorm:"size:100;not null" json:"display_name"`
	PhotoURL       string         `gorm:"size:500" json:"photo_url"`
	IsGuest        bool           `gorm:"default:false" json:"is_guest"`
	Role           string         `gorm:"size:50;default:player" json:"role"` // owner, admin, player
	LegacyPlayerID *uint          `gorm:"index" json:"legacy_player_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (GroupMember) TableName() string { return "group_members" }

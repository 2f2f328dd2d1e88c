package models

import (
	"time"

	"gorm.io/gorm"
)

// Invite statuses
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusRejected = "rejected"
	InviteStatusExpired  = "expired"
)

// Invite asks an email address to claim a roster member. At most one
// pending invite may exist per GroupMemberID; acceptance requires the
// member to still be unlinked.
type Invite struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	GroupID       uint           `gorm:"index;not null" json:"group_id"`
	GroupMemberID uint           `gorm:"index;not null" json:"group_member_id"`
	Email         string         `gorm:"size:255;index;not null" json:"email"`
	InvitedBy     uint           `gorm:"not null" json:"invited_by"`
	Status        string         `gorm:"size:20;index;default:pending" json:"status"`
	TokenHash     string         `gorm:"size:64;index" json:"-"` // emailed link token, stored hashed
	ExpiresAt     time.Time      `gorm:"index" json:"expires_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Invite) TableName() string { return "invites" }

package models

import "time"

// DeviceToken is a push token registered by a signed-in device. Tokens are
// refreshed in place; re-registering an existing token moves it to the
// current user.
type DeviceToken struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Token      string    `gorm:"uniqueIndex;size:255;not null" json:"token"`
	Platform   string    `gorm:"size:20" json:"platform"` // ios, android
	Provider   string    `gorm:"size:20;default:expo" json:"provider"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (DeviceToken) TableName() string { return "device_tokens" }

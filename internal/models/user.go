package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account holder. Created lazily on first registration
// and never recreated; display fields are owned by the profile screen and
// are not overwritten by later authentications.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password    string         `gorm:"size:255" json:"-"` // bcrypt hash
	DisplayName string         `gorm:"size:100" json:"display_name"`
	PhotoURL    string         `gorm:"size:500" json:"photo_url"`
	Role        string         `gorm:"size:50;default:user" json:"role"` // admin, user
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	LastLogin   *time.Time     `json:"last_login"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

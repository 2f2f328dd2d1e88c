package models

import (
	"time"

	"gorm.io/gorm"
)

// Group represents a mejengas group. Identity is immutable; soft fields are
// editable by the owner or a group admin.
type Group struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	OwnerID     uint           `gorm:"index;not null" json:"owner_id"`
	Description string         `gorm:"size:1000" json:"description"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	Type        string         `gorm:"size:50;default:friendly" json:"type"`       // friendly, league
	Visibility  string         `gorm:"size:20;default:private" json:"visibility"` // private, public
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Group) TableName() string { return "groups" }

package models

import "time"

// Player is a legacy player record imported from the old data set. Roster
// members may weakly reference one through GroupMember.LegacyPlayerID.
type Player struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DisplayName string    `gorm:"size:100;not null" json:"display_name"`
	PhotoURL    string    `gorm:"size:500" json:"photo_url"`
	UserID      *uint     `gorm:"index" json:"user_id,omitempty"` // set once claimed by an account
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Player) TableName() string { return "players" }

// PlayerSeasonStat is a legacy per-season outfield document. It references
// either a legacy player or a linked user, whichever the old writer stored.
type PlayerSeasonStat struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	GroupID   uint            `gorm:"index;not null" json:"group_id"`
	Season    string          `gorm:"size:20;index;not null" json:"season"`
	PlayerID  *uint           `gorm:"index" json:"player_id,omitempty"`
	UserID    *uint           `gorm:"index" json:"user_id,omitempty"`
	Stats     PlayerStatBlock `gorm:"embedded" json:"stats"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (PlayerSeasonStat) TableName() string { return "player_season_stats" }

// GoalkeeperSeasonStat is the goalkeeper counterpart of PlayerSeasonStat.
type GoalkeeperSeasonStat struct {
	ID        uint                `gorm:"primaryKey" json:"id"`
	GroupID   uint                `gorm:"index;not null" json:"group_id"`
	Season    string              `gorm:"size:20;index;not null" json:"season"`
	PlayerID  *uint               `gorm:"index" json:"player_id,omitempty"`
	UserID    *uint               `gorm:"index" json:"user_id,omitempty"`
	Stats     GoalkeeperStatBlock `gorm:"embedded" json:"stats"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (GoalkeeperSeasonStat) TableName() string { return "goalkeeper_season_stats" }

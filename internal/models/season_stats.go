package models

import "time"

// PlayerStatBlock holds a member's outfield numbers for one season.
// Matches == 0 means the block is absent: it emits no season card and
// contributes nothing to historic totals.
type PlayerStatBlock struct {
	Matches  int `json:"matches"`
	Goals    int `json:"goals"`
	Assists  int `json:"assists"`
	OwnGoals int `json:"own_goals"`
	Won      int `json:"won"`
	Draw     int `json:"draw"`
	Lost     int `json:"lost"`
	MVP      int `gorm:"column:mvp" json:"mvp"`
}

// Present reports whether the block counts for card generation.
func (b PlayerStatBlock) Present() bool { return b.Matches > 0 }

// Add accumulates another block into this one, field by field.
func (b *PlayerStatBlock) Add(o PlayerStatBlock) {
	b.Matches += o.Matches
	b.Goals += o.Goals
	b.Assists += o.Assists
	b.OwnGoals += o.OwnGoals
	b.Won += o.Won
	b.Draw += o.Draw
	b.Lost += o.Lost
	b.MVP += o.MVP
}

// IsZero reports whether every field is zero.
func (b PlayerStatBlock) IsZero() bool { return b == PlayerStatBlock{} }

// GoalkeeperStatBlock holds a member's goalkeeper numbers for one season.
// Same absence rule as PlayerStatBlock: Matches == 0 means no block.
type GoalkeeperStatBlock struct {
	Matches       int `json:"matches"`
	GoalsConceded int `json:"goals_conceded"`
	CleanSheets   int `json:"clean_sheets"`
	Goals         int `json:"goals"`
	Assists       int `json:"assists"`
	OwnGoals      int `json:"own_goals"`
	Won           int `json:"won"`
	Draw          int `json:"draw"`
	Lost          int `json:"lost"`
	MVP           int `gorm:"column:mvp" json:"mvp"`
}

// Present reports whether the block counts for card generation.
func (b GoalkeeperStatBlock) Present() bool { return b.Matches > 0 }

// Add accumulates another block into this one, field by field.
func (b *GoalkeeperStatBlock) Add(o GoalkeeperStatBlock) {
	b.Matches += o.Matches
	b.GoalsConceded += o.GoalsConceded
	b.CleanSheets += o.CleanSheets
	b.Goals += o.Goals
	b.Assists += o.Assists
	b.OwnGoals += o.OwnGoals
	b.Won += o.Won
	b.Draw += o.Draw
	b.Lost += o.Lost
	b.MVP += o.MVP
}

// IsZero reports whether every field is zero.
func (b GoalkeeperStatBlock) IsZero() bool { return b == GoalkeeperStatBlock{} }

// SeasonStats is one document per (group, season, member). Either block,
// both, or neither may be populated.
type SeasonStats struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	GroupID       uint                `gorm:"index;index:idx_stats_doc,unique;not null" json:"group_id"`
	Season        string              `gorm:"size:20;index:idx_stats_doc,unique;not null" json:"season"`
	GroupMemberID uint                `gorm:"index;index:idx_stats_doc,unique;not null" json:"group_member_id"`
	Player        PlayerStatBlock     `gorm:"embedded;embeddedPrefix:player_" json:"player_stats"`
	Goalkeeper    GoalkeeperStatBlock `gorm:"embedded;embeddedPrefix:gk_" json:"goalkeeper_stats"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (SeasonStats) TableName() string { return "season_stats" }

package services

import (
	"errors"
	"sort"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"gorm.io/gorm"
)

// ErrMemberNotFound marks a member id that resolves to nothing, as opposed
// to a member that simply has no stats yet.
var ErrMemberNotFound = errors.New("group member not found")

// Season card kinds. Player sorts before goalkeeper within the same
// season and group.
const (
	CardKindPlayer     = "player"
	CardKindGoalkeeper = "goalkeeper"
)

// SeasonCard is one season/role line on a member profile screen.
type SeasonCard struct {
	Kind       string                      `json:"kind"`
	Season     string                      `json:"season"`
	GroupID    uint                        `json:"group_id"`
	GroupName  string                      `json:"group_name"`
	Player     *models.PlayerStatBlock     `json:"player_stats,omitempty"`
	Goalkeeper *models.GoalkeeperStatBlock `json:"goalkeeper_stats,omitempty"`
}

// MemberProfile is the assembled payload for a group-member profile screen.
// The booleans tell the client which "Historic" section(s) to render; when
// both are set the sections are labeled "as player" / "as goalkeeper".
type MemberProfile struct {
	Member             models.GroupMember         `json:"member"`
	Cards              []SeasonCard               `json:"cards"`
	HistoricPlayer     models.PlayerStatBlock     `json:"historic_player"`
	HistoricGoalkeeper models.GoalkeeperStatBlock `json:"historic_goalkeeper"`
	HasPlayerStats     bool                       `json:"has_player_stats"`
	HasGoalkeeperStats bool                       `json:"has_goalkeeper_stats"`
}

type SeasonStatsService struct {
	db       *gorm.DB
	resolver *GroupResolver
	feed     *ChangeFeed
}

func NewSeasonStatsService(db *gorm.DB) *SeasonStatsService {
	return &SeasonStatsService{
		db:       db,
		resolver: NewGroupResolver(db),
		feed:     GetChangeFeed(),
	}
}

// GetMemberProfile builds the profile payload for one roster member.
func (s *SeasonStatsService) GetMemberProfile(memberID uint) (*MemberProfile, error) {
	var member models.GroupMember
	if err := s.db.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	var docs []models.SeasonStats
	if err := s.db.Where("group_member_id = ?", memberID).Find(&docs).Error; err != nil {
		return nil, err
	}

	// One batched resolution for the distinct group ids across all documents.
	groupIDs := make([]uint, 0, len(docs))
	for _, doc := range docs {
		groupIDs = append(groupIDs, doc.GroupID)
	}
	groups := s.resolver.Resolve(groupIDs)

	cards, historicPlayer, historicGK := buildSeasonCards(docs, groups)

	return &MemberProfile{
		Member:             member,
		Cards:              cards,
		HistoricPlayer:     historicPlayer,
		HistoricGoalkeeper: historicGK,
		HasPlayerStats:     !historicPlayer.IsZero(),
		HasGoalkeeperStats: !historicGK.IsZero(),
	}, nil
}

// buildSeasonCards emits one card per (document, role) pair whose block is
// present with matches > 0, accumulating historic totals per role. A
// document with both blocks populated yields two cards sharing season and
// group. Cards come back fully ordered.
func buildSeasonCards(docs []models.SeasonStats, groups map[uint]models.Group) ([]SeasonCard, models.PlayerStatBlock, models.GoalkeeperStatBlock) {
	var (
		cards          = make([]SeasonCard, 0, len(docs))
		historicPlayer models.PlayerStatBlock
		historicGK     models.GoalkeeperStatBlock
	)

	for _, doc := range docs {
		groupName := ""
		if g, ok := groups[doc.GroupID]; ok {
			groupName = g.Name
		}

		if doc.Player.Present() {
			block := doc.Player
			cards = append(cards, SeasonCard{
				Kind:      CardKindPlayer,
				Season:    doc.Season,
				GroupID:   doc.GroupID,
				GroupName: groupName,
				Player:    &block,
			})
			historicPlayer.Add(block)
		}

		if doc.Goalkeeper.Present() {
			block := doc.Goalkeeper
			cards = append(cards, SeasonCard{
				Kind:       CardKindGoalkeeper,
				Season:     doc.Season,
				GroupID:    doc.GroupID,
				GroupName:  groupName,
				Goalkeeper: &block,
			})
			historicGK.Add(block)
		}
	}

	sortSeasonCards(cards)
	return cards, historicPlayer, historicGK
}

// sortSeasonCards orders cards by season descending, group name ascending,
// then player before goalkeeper. The order is total, so input order never
// shows through.
func sortSeasonCards(cards []SeasonCard) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Season != cards[j].Season {
			return cards[i].Season > cards[j].Season
		}
		if cards[i].GroupName != cards[j].GroupName {
			return cards[i].GroupName < cards[j].GroupName
		}
		return cards[i].Kind == CardKindPlayer && cards[j].Kind == CardKindGoalkeeper
	})
}

// --- Group season tables ---

// SeasonTableRow is one member line in a group's season table.
type SeasonTableRow struct {
	GroupMemberID uint                        `json:"group_member_id"`
	DisplayName   string                      `json:"display_name"`
	PhotoURL      string                      `json:"photo_url,omitempty"`
	Player        *models.PlayerStatBlock     `json:"player_stats,omitempty"`
	Goalkeeper    *models.GoalkeeperStatBlock `json:"goalkeeper_stats,omitempty"`
	Points        int                         `json:"points"`
}

// SeasonTable groups rows for a single season.
type SeasonTable struct {
	Season string           `json:"season"`
	Rows   []SeasonTableRow `json:"rows"`
}

// GetGroupSeasonTables returns one table per season for a group, newest
// season first. Rows are ranked by points (3 per win, 1 per draw across
// both roles), goals scored breaking ties, then name.
func (s *SeasonStatsService) GetGroupSeasonTables(groupID uint) ([]SeasonTable, error) {
	var docs []models.SeasonStats
	if err := s.db.Where("group_id = ?", groupID).Find(&docs).Error; err != nil {
		return nil, err
	}

	var members []models.GroupMember
	if err := s.db.Where("group_id = ?", groupID).Find(&members).Error; err != nil {
		return nil, err
	}
	roster := make(map[uint]models.GroupMember, len(members))
	for _, m := range members {
		roster[m.ID] = m
	}

	bySeason := make(map[string][]SeasonTableRow)
	for _, doc := range docs {
		if !doc.Player.Present() && !doc.Goalkeeper.Present() {
			continue
		}

		row := SeasonTableRow{GroupMemberID: doc.GroupMemberID}
		if m, ok := roster[doc.GroupMemberID]; ok {
			row.DisplayName = m.DisplayName
			row.PhotoURL = m.PhotoURL
		}
		if doc.Player.Present() {
			block := doc.Player
			row.Player = &block
			row.Points += 3*block.Won + block.Draw
		}
		if doc.Goalkeeper.Present() {
			block := doc.Goalkeeper
			row.Goalkeeper = &block
			row.Points += 3*block.Won + block.Draw
		}
		bySeason[doc.Season] = append(bySeason[doc.Season], row)
	}

	tables := make([]SeasonTable, 0, len(bySeason))
	for season, rows := range bySeason {
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].Points != rows[j].Points {
				return rows[i].Points > rows[j].Points
			}
			gi, gj := rowGoals(rows[i]), rowGoals(rows[j])
			if gi != gj {
				return gi > gj
			}
			return rows[i].DisplayName < rows[j].DisplayName
		})
		tables = append(tables, SeasonTable{Season: season, Rows: rows})
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Season > tables[j].Season })

	return tables, nil
}

func rowGoals(r SeasonTableRow) int {
	goals := 0
	if r.Player != nil {
		goals += r.Player.Goals
	}
	if r.Goalkeeper != nil {
		goals += r.Goalkeeper.Goals
	}
	return goals
}

// --- Upsert ---

var ErrMemberNotInGroup = errors.New("member does not belong to this group")

type UpsertSeasonStatsRequest struct {
	Season        string                     `json:"season" binding:"required"`
	GroupMemberID uint                       `json:"group_member_id" binding:"required"`
	Player        models.PlayerStatBlock     `json:"player_stats"`
	Goalkeeper    models.GoalkeeperStatBlock `json:"goalkeeper_stats"`
}

// Upsert writes the (group, season, member) document, creating it when
// missing, and signals the stats change stream for the group.
func (s *SeasonStatsService) Upsert(groupID uint, req *UpsertSeasonStatsRequest) (*models.SeasonStats, error) {
	var member models.GroupMember
	if err := s.db.First(&member, req.GroupMemberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if member.GroupID != groupID {
		return nil, ErrMemberNotInGroup
	}

	var doc models.SeasonStats
	err := s.db.Where("group_id = ? AND season = ? AND group_member_id = ?", groupID, req.Season, req.GroupMemberID).
		First(&doc).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		doc = models.SeasonStats{
			GroupID:       groupID,
			Season:        req.Season,
			GroupMemberID: req.GroupMemberID,
			Player:        req.Player,
			Goalkeeper:    req.Goalkeeper,
		}
		if err := s.db.Create(&doc).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		doc.Player = req.Player
		doc.Goalkeeper = req.Goalkeeper
		if err := s.db.Save(&doc).Error; err != nil {
			return nil, err
		}
	}

	s.feed.PublishStatsChange(groupID)
	return &doc, nil
}

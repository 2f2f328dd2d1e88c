package services

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/logger"
	"gorm.io/gorm"
)

// LegacyImportService ingests JSON exports of the old data set. Historical
// writes were inconsistent about field casing (ownerId vs ownerid, userId vs
// userid); every alias is resolved here, in one mapping function per entity,
// so the rest of the codebase only ever sees the canonical schema.
type LegacyImportService struct {
	db *gorm.DB
}

func NewLegacyImportService(db *gorm.DB) *LegacyImportService {
	return &LegacyImportService{db: db}
}

type LegacyImportResponse struct {
	Groups  int      `json:"groups"`
	Players int      `json:"players"`
	Members int      `json:"members"`
	Stats   int      `json:"stats"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// legacyExport mirrors the top-level shape of an export file. Entities stay
// raw until their mapping function runs.
type legacyExport struct {
	Groups          []json.RawMessage `json:"groups"`
	Players         []json.RawMessage `json:"players"`
	PlayerStats     []json.RawMessage `json:"playerStats"`
	GoalkeeperStats []json.RawMessage `json:"goalkeeperStats"`
}

// legacyGroup is the canonical decoded form of a legacy group record.
type legacyGroup struct {
	LegacyID    string
	Name        string
	Description string
	Type        string
}

type legacyPlayer struct {
	LegacyID    string
	DisplayName string
	PhotoURL    string
}

type legacyStat struct {
	GroupLegacyID  string
	PlayerLegacyID string
	Season         string
	Matches        int
	Goals          int
	Assists        int
	OwnGoals       int
	Won            int
	Draw           int
	Lost           int
	MVP            int
	GoalsConceded  int
	CleanSheets    int
}

// Import reads an export document and loads it for the importing user, who
// becomes owner of every imported group. Re-running an import skips records
// that already exist instead of duplicating them.
func (s *LegacyImportService) Import(r io.Reader, importerID uint) (*LegacyImportResponse, error) {
	var export legacyExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("invalid export document: %w", err)
	}

	var importer models.User
	if err := s.db.First(&importer, importerID).Error; err != nil {
		return nil, fmt.Errorf("importing user not found: %w", err)
	}

	resp := &LegacyImportResponse{}
	groupByLegacyID := make(map[string]*models.Group)
	playerByLegacyID := make(map[string]*models.Player)
	// member key is groupLegacyID + "/" + playerLegacyID
	memberByKey := make(map[string]*models.GroupMember)

	for _, raw := range export.Groups {
		lg, err := mapLegacyGroup(raw)
		if err != nil {
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}

		group, created, err := s.findOrCreateGroup(lg, &importer)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("group %q: %v", lg.Name, err))
			continue
		}
		groupByLegacyID[lg.LegacyID] = group
		if created {
			resp.Groups++
		} else {
			resp.Skipped++
		}
	}

	for _, raw := range export.Players {
		lp, err := mapLegacyPlayer(raw)
		if err != nil {
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}

		player, created, err := s.findOrCreatePlayer(lp)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("player %q: %v", lp.DisplayName, err))
			continue
		}
		playerByLegacyID[lp.LegacyID] = player
		if created {
			resp.Players++
		} else {
			resp.Skipped++
		}
	}

	importStat := func(stat *legacyStat, goalkeeper bool) {
		group, ok := groupByLegacyID[stat.GroupLegacyID]
		if !ok {
			resp.Errors = append(resp.Errors, fmt.Sprintf("stat references unknown group %q", stat.GroupLegacyID))
			return
		}
		player, ok := playerByLegacyID[stat.PlayerLegacyID]
		if !ok {
			resp.Errors = append(resp.Errors, fmt.Sprintf("stat references unknown player %q", stat.PlayerLegacyID))
			return
		}

		memberKey := stat.GroupLegacyID + "/" + stat.PlayerLegacyID
		member, seen := memberByKey[memberKey]
		if !seen {
			var created bool
			var err error
			member, created, err = s.findOrCreateLegacyMember(group.ID, player)
			if err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("member for player %q: %v", player.DisplayName, err))
				return
			}
			memberByKey[memberKey] = member
			if created {
				resp.Members++
			}
		}

		created, err := s.upsertLegacyStat(group.ID, member.ID, player.ID, stat, goalkeeper)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("stat %s/%s %s: %v", stat.GroupLegacyID, stat.PlayerLegacyID, stat.Season, err))
			return
		}
		if created {
			resp.Stats++
		} else {
			resp.Skipped++
		}
	}

	for _, raw := range export.PlayerStats {
		stat, err := mapLegacyStat(raw)
		if err != nil {
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}
		importStat(stat, false)
	}

	for _, raw := range export.GoalkeeperStats {
		stat, err := mapLegacyStat(raw)
		if err != nil {
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}
		importStat(stat, true)
	}

	logger.Infof("[LegacyImport] Import complete: groups=%d, players=%d, members=%d, stats=%d, skipped=%d, errors=%d",
		resp.Groups, resp.Players, resp.Members, resp.Stats, resp.Skipped, len(resp.Errors))
	return resp, nil
}

func (s *LegacyImportService) findOrCreateGroup(lg *legacyGroup, importer *models.User) (*models.Group, bool, error) {
	var existing models.Group
	err := s.db.Where("name = ? AND owner_id = ?", lg.Name, importer.ID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	group := models.Group{
		Name:        lg.Name,
		OwnerID:     importer.ID,
		Description: lg.Description,
		IsActive:    true,
		Type:        lg.Type,
		Visibility:  "private",
	}
	if group.Type == "" {
		group.Type = "friendly"
	}

	ownerID := importer.ID
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		owner := models.GroupMember{
			GroupID:     group.ID,
			UserID:      &ownerID,
			DisplayName: importer.DisplayName,
			PhotoURL:    importer.PhotoURL,
			Role:        "owner",
		}
		return tx.Create(&owner).Error
	}); err != nil {
		return nil, false, err
	}
	return &group, true, nil
}

func (s *LegacyImportService) findOrCreatePlayer(lp *legacyPlayer) (*models.Player, bool, error) {
	var existing models.Player
	err := s.db.Where("display_name = ?", lp.DisplayName).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	player := models.Player{
		DisplayName: lp.DisplayName,
		PhotoURL:    lp.PhotoURL,
	}
	if err := s.db.Create(&player).Error; err != nil {
		return nil, false, err
	}
	return &player, true, nil
}

func (s *LegacyImportService) findOrCreateLegacyMember(groupID uint, player *models.Player) (*models.GroupMember, bool, error) {
	var existing models.GroupMember
	err := s.db.Where("group_id = ? AND legacy_player_id = ?", groupID, player.ID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	playerID := player.ID
	member := models.GroupMember{
		GroupID:        groupID,
		DisplayName:    player.DisplayName,
		PhotoURL:       player.PhotoURL,
		IsGuest:        true,
		Role:           "player",
		LegacyPlayerID: &playerID,
	}
	if err := s.db.Create(&member).Error; err != nil {
		return nil, false, err
	}
	return &member, true, nil
}

// upsertLegacyStat writes both the canonical per-member document and the
// legacy per-player row the profile assembler reads.
func (s *LegacyImportService) upsertLegacyStat(groupID, memberID, playerID uint, stat *legacyStat, goalkeeper bool) (bool, error) {
	playerBlock := models.PlayerStatBlock{
		Matches: stat.Matches, Goals: stat.Goals, Assists: stat.Assists, OwnGoals: stat.OwnGoals,
		Won: stat.Won, Draw: stat.Draw, Lost: stat.Lost, MVP: stat.MVP,
	}
	gkBlock := models.GoalkeeperStatBlock{
		Matches: stat.Matches, GoalsConceded: stat.GoalsConceded, CleanSheets: stat.CleanSheets,
		Goals: stat.Goals, Assists: stat.Assists, OwnGoals: stat.OwnGoals,
		Won: stat.Won, Draw: stat.Draw, Lost: stat.Lost, MVP: stat.MVP,
	}

	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var doc models.SeasonStats
		err := tx.Where("group_id = ? AND season = ? AND group_member_id = ?", groupID, stat.Season, memberID).
			First(&doc).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			doc = models.SeasonStats{GroupID: groupID, Season: stat.Season, GroupMemberID: memberID}
			if goalkeeper {
				doc.Goalkeeper = gkBlock
			} else {
				doc.Player = playerBlock
			}
			if err := tx.Create(&doc).Error; err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			// Second pass for the other role of the same member and season
			if goalkeeper {
				if doc.Goalkeeper.Present() {
					return nil
				}
				doc.Goalkeeper = gkBlock
			} else {
				if doc.Player.Present() {
					return nil
				}
				doc.Player = playerBlock
			}
			if err := tx.Save(&doc).Error; err != nil {
				return err
			}
			created = true
		}

		pid := playerID
		if goalkeeper {
			var count int64
			tx.Model(&models.GoalkeeperSeasonStat{}).
				Where("group_id = ? AND season = ? AND player_id = ?", groupID, stat.Season, pid).
				Count(&count)
			if count == 0 {
				return tx.Create(&models.GoalkeeperSeasonStat{
					GroupID: groupID, Season: stat.Season, PlayerID: &pid, Stats: gkBlock,
				}).Error
			}
			return nil
		}

		var count int64
		tx.Model(&models.PlayerSeasonStat{}).
			Where("group_id = ? AND season = ? AND player_id = ?", groupID, stat.Season, pid).
			Count(&count)
		if count == 0 {
			return tx.Create(&models.PlayerSeasonStat{
				GroupID: groupID, Season: stat.Season, PlayerID: &pid, Stats: playerBlock,
			}).Error
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// --- Mapping functions, one per entity ---

// mapLegacyGroup normalizes a raw legacy group record.
func mapLegacyGroup(raw json.RawMessage) (*legacyGroup, error) {
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed group record: %w", err)
	}

	lg := &legacyGroup{
		LegacyID:    stringField(fields, "id", "legacyId", "legacy_id"),
		Name:        stringField(fields, "name", "groupName", "groupname"),
		Description: stringField(fields, "description"),
		Type:        stringField(fields, "type"),
	}
	if lg.LegacyID == "" {
		return nil, fmt.Errorf("group record missing id")
	}
	if lg.Name == "" {
		return nil, fmt.Errorf("group %q missing name", lg.LegacyID)
	}
	return lg, nil
}

// mapLegacyPlayer normalizes a raw legacy player record.
func mapLegacyPlayer(raw json.RawMessage) (*legacyPlayer, error) {
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed player record: %w", err)
	}

	lp := &legacyPlayer{
		LegacyID:    stringField(fields, "id", "legacyId", "legacy_id"),
		DisplayName: stringField(fields, "name", "displayName", "displayname"),
		PhotoURL:    stringField(fields, "photoURL", "photoUrl", "photourl"),
	}
	if lp.LegacyID == "" {
		return nil, fmt.Errorf("player record missing id")
	}
	if lp.DisplayName == "" {
		return nil, fmt.Errorf("player %q missing name", lp.LegacyID)
	}
	return lp, nil
}

// mapLegacyStat normalizes a raw legacy stat record of either role.
func mapLegacyStat(raw json.RawMessage) (*legacyStat, error) {
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed stat record: %w", err)
	}

	stat := &legacyStat{
		GroupLegacyID:  stringField(fields, "groupId", "groupid", "group_id"),
		PlayerLegacyID: stringField(fields, "playerId", "playerid", "player_id", "userId", "userid"),
		Season:         stringField(fields, "season", "year"),
		Matches:        intField(fields, "matches", "matchesPlayed", "games"),
		Goals:          intField(fields, "goals"),
		Assists:        intField(fields, "assists"),
		OwnGoals:       intField(fields, "ownGoals", "owngoals", "own_goals"),
		Won:            intField(fields, "won", "wins"),
		Draw:           intField(fields, "draw", "draws"),
		Lost:           intField(fields, "lost", "losses"),
		MVP:            intField(fields, "mvp", "mvps"),
		GoalsConceded:  intField(fields, "goalsConceded", "goalsconceded", "goals_conceded"),
		CleanSheets:    intField(fields, "cleanSheets", "cleansheets", "clean_sheets"),
	}
	if stat.GroupLegacyID == "" || stat.PlayerLegacyID == "" {
		return nil, fmt.Errorf("stat record missing group or player reference")
	}
	if stat.Season == "" {
		return nil, fmt.Errorf("stat record for %q missing season", stat.PlayerLegacyID)
	}
	return stat, nil
}

func decodeFields(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// stringField returns the first alias present, tolerating numeric ids.
func stringField(fields map[string]json.RawMessage, aliases ...string) string {
	for _, alias := range aliases {
		raw, ok := fields[alias]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

// intField returns the first alias present, tolerating stringified numbers.
func intField(fields map[string]json.RawMessage, aliases ...string) int {
	for _, alias := range aliases {
		raw, ok := fields[alias]
		if !ok {
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err == nil {
			return n
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if parsed, err := strconv.Atoi(s); err == nil {
				return parsed
			}
		}
	}
	return 0
}

package services

import (
	"errors"
	"sort"
	"sync"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"gorm.io/gorm"
)

// ErrProfileIdentifier rejects calls that supply neither (or both) of the
// two profile identifiers. Raised before any store access.
var ErrProfileIdentifier = errors.New("exactly one of user_id or player_id is required")

// ErrProfileNotFound marks an identifier that resolves to no record.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStatEntry is one per-group, per-season line of a user profile,
// carrying either an outfield or a goalkeeper block with its group attached.
type ProfileStatEntry struct {
	Kind       string                      `json:"kind"`
	Season     string                      `json:"season"`
	GroupID    uint                        `json:"group_id"`
	Group      *models.Group               `json:"group,omitempty"`
	Player     *models.PlayerStatBlock     `json:"player_stats,omitempty"`
	Goalkeeper *models.GoalkeeperStatBlock `json:"goalkeeper_stats,omitempty"`
}

// ProfileTotals sums across both stat kinds. Won/draw/lost/mvp and
// goals/assists accumulate from player and goalkeeper blocks alike;
// clean sheets and goals conceded only exist for the goalkeeper kind.
type ProfileTotals struct {
	Matches       int `json:"matches"`
	Goals         int `json:"goals"`
	Assists       int `json:"assists"`
	OwnGoals      int `json:"own_goals"`
	Won           int `json:"won"`
	Draw          int `json:"draw"`
	Lost          int `json:"lost"`
	MVP           int `json:"mvp"`
	CleanSheets   int `json:"clean_sheets"`
	GoalsConceded int `json:"goals_conceded"`
}

// ProfileView is the assembled payload for a user or legacy-player profile.
type ProfileView struct {
	User    *models.User       `json:"user,omitempty"`
	Player  *models.Player     `json:"player,omitempty"`
	Entries []ProfileStatEntry `json:"entries"`
	Totals  ProfileTotals      `json:"totals"`
}

// ProfileRequest selects the profile subject: exactly one id must be set.
type ProfileRequest struct {
	UserID   *uint
	PlayerID *uint
}

type ProfileService struct {
	db       *gorm.DB
	resolver *GroupResolver
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db, resolver: NewGroupResolver(db)}
}

// GetProfile assembles the profile view. The subject record, the outfield
// stat documents and the goalkeeper stat documents are fetched
// concurrently; none depends on another's result. Group records are
// resolved once for the union of referenced group ids.
func (s *ProfileService) GetProfile(req *ProfileRequest) (*ProfileView, error) {
	if (req.UserID == nil) == (req.PlayerID == nil) {
		return nil, ErrProfileIdentifier
	}

	var (
		wg         sync.WaitGroup
		user       *models.User
		player     *models.Player
		playerDocs []models.PlayerSeasonStat
		keeperDocs []models.GoalkeeperSeasonStat
		subjectErr error
		playerErr  error
		keeperErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		user, player, subjectErr = s.fetchSubject(req)
	}()
	go func() {
		defer wg.Done()
		playerDocs, playerErr = s.fetchPlayerDocs(req)
	}()
	go func() {
		defer wg.Done()
		keeperDocs, keeperErr = s.fetchKeeperDocs(req)
	}()
	wg.Wait()

	if subjectErr != nil {
		return nil, subjectErr
	}
	if playerErr != nil {
		return nil, playerErr
	}
	if keeperErr != nil {
		return nil, keeperErr
	}

	groupIDs := make([]uint, 0, len(playerDocs)+len(keeperDocs))
	for _, d := range playerDocs {
		groupIDs = append(groupIDs, d.GroupID)
	}
	for _, d := range keeperDocs {
		groupIDs = append(groupIDs, d.GroupID)
	}
	groups := s.resolver.Resolve(groupIDs)

	entries, totals := assembleProfileEntries(playerDocs, keeperDocs, groups)

	return &ProfileView{
		User:    user,
		Player:  player,
		Entries: entries,
		Totals:  totals,
	}, nil
}

func (s *ProfileService) fetchSubject(req *ProfileRequest) (*models.User, *models.Player, error) {
	if req.UserID != nil {
		var user models.User
		if err := s.db.First(&user, *req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrProfileNotFound
			}
			return nil, nil, err
		}
		return &user, nil, nil
	}

	var player models.Player
	if err := s.db.First(&player, *req.PlayerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProfileNotFound
		}
		return nil, nil, err
	}
	return nil, &player, nil
}

func (s *ProfileService) fetchPlayerDocs(req *ProfileRequest) ([]models.PlayerSeasonStat, error) {
	var docs []models.PlayerSeasonStat
	query := s.db.Model(&models.PlayerSeasonStat{})
	if req.UserID != nil {
		query = query.Where("user_id = ?", *req.UserID)
	} else {
		query = query.Where("player_id = ?", *req.PlayerID)
	}
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *ProfileService) fetchKeeperDocs(req *ProfileRequest) ([]models.GoalkeeperSeasonStat, error) {
	var docs []models.GoalkeeperSeasonStat
	query := s.db.Model(&models.GoalkeeperSeasonStat{})
	if req.UserID != nil {
		query = query.Where("user_id = ?", *req.UserID)
	} else {
		query = query.Where("player_id = ?", *req.PlayerID)
	}
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// assembleProfileEntries attaches resolved groups, computes combined
// totals and sorts the entries: season descending, player kind before
// goalkeeper kind.
func assembleProfileEntries(playerDocs []models.PlayerSeasonStat, keeperDocs []models.GoalkeeperSeasonStat, groups map[uint]models.Group) ([]ProfileStatEntry, ProfileTotals) {
	entries := make([]ProfileStatEntry, 0, len(playerDocs)+len(keeperDocs))
	var totals ProfileTotals

	for _, doc := range playerDocs {
		block := doc.Stats
		entry := ProfileStatEntry{
			Kind:    CardKindPlayer,
			Season:  doc.Season,
			GroupID: doc.GroupID,
			Player:  &block,
		}
		if g, ok := groups[doc.GroupID]; ok {
			group := g
			entry.Group = &group
		}
		entries = append(entries, entry)

		totals.Matches += block.Matches
		totals.Goals += block.Goals
		totals.Assists += block.Assists
		totals.OwnGoals += block.OwnGoals
		totals.Won += block.Won
		totals.Draw += block.Draw
		totals.Lost += block.Lost
		totals.MVP += block.MVP
	}

	for _, doc := range keeperDocs {
		block := doc.Stats
		entry := ProfileStatEntry{
			Kind:       CardKindGoalkeeper,
			Season:     doc.Season,
			GroupID:    doc.GroupID,
			Goalkeeper: &block,
		}
		if g, ok := groups[doc.GroupID]; ok {
			group := g
			entry.Group = &group
		}
		entries = append(entries, entry)

		totals.Matches += block.Matches
		totals.Goals += block.Goals
		totals.Assists += block.Assists
		totals.OwnGoals += block.OwnGoals
		totals.Won += block.Won
		totals.Draw += block.Draw
		totals.Lost += block.Lost
		totals.MVP += block.MVP
		totals.CleanSheets += block.CleanSheets
		totals.GoalsConceded += block.GoalsConceded
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Season != entries[j].Season {
			return entries[i].Season > entries[j].Season
		}
		return entries[i].Kind == CardKindPlayer && entries[j].Kind == CardKindGoalkeeper
	})

	return entries, totals
}

package services

import (
	"sort"
	"sync"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/logger"
	"gorm.io/gorm"
)

// GoalkeeperEntry is one keeper line, enriched with the member's current
// roster identity so a rename shows up without waiting for a stats write.
type GoalkeeperEntry struct {
	GroupMemberID uint                       `json:"group_member_id"`
	DisplayName   string                     `json:"display_name"`
	PhotoURL      string                     `json:"photo_url,omitempty"`
	UserID        *uint                      `json:"user_id,omitempty"`
	Stats         models.GoalkeeperStatBlock `json:"stats"`
}

// GoalkeeperSeasonGroup holds the entries of one season.
type GoalkeeperSeasonGroup struct {
	Season  string            `json:"season"`
	Entries []GoalkeeperEntry `json:"entries"`
}

// GoalkeeperLeaderboard is the published aggregation result.
type GoalkeeperLeaderboard struct {
	GroupID  uint                    `json:"group_id"`
	Seasons  []GoalkeeperSeasonGroup `json:"seasons"`
	Historic []GoalkeeperEntry       `json:"historic"`
}

type rosterLoader func() (map[uint]models.GroupMember, error)
type statsLoader func() ([]models.SeasonStats, error)

// goalkeeperLiveAggregator joins the group's roster stream with its
// season-stats stream and republishes a full recomputation on every change
// from either side. Both cached snapshots are owned exclusively by the run
// goroutine; they are replaced whole, never mutated in place.
type goalkeeperLiveAggregator struct {
	groupID    uint
	feed       *ChangeFeed
	loadRoster rosterLoader
	loadStats  statsLoader
	callback   func(*GoalkeeperLeaderboard)

	roster    map[uint]models.GroupMember
	stats     []models.SeasonStats
	statsSeen bool

	rosterSubID string
	statsSubID  string
	stop        chan struct{}
	teardown    sync.Once
}

// GoalkeeperLiveService creates live aggregators and one-shot snapshots.
type GoalkeeperLiveService struct {
	db   *gorm.DB
	feed *ChangeFeed
}

func NewGoalkeeperLiveService(db *gorm.DB) *GoalkeeperLiveService {
	return &GoalkeeperLiveService{db: db, feed: GetChangeFeed()}
}

// Watch starts a live aggregation for one group. The callback fires only
// after a stats snapshot has been observed at least once, so consumers
// never see an artificially empty table before data is known. The returned
// teardown terminates both subscriptions; calling it repeatedly, or after a
// source has failed, is safe.
func (s *GoalkeeperLiveService) Watch(groupID uint, callback func(*GoalkeeperLeaderboard)) func() {
	return watchGoalkeepers(groupID, s.feed, s.rosterLoaderFor(groupID), s.statsLoaderFor(groupID), callback)
}

func watchGoalkeepers(groupID uint, feed *ChangeFeed, loadRoster rosterLoader, loadStats statsLoader, callback func(*GoalkeeperLeaderboard)) func() {
	a := &goalkeeperLiveAggregator{
		groupID:    groupID,
		feed:       feed,
		loadRoster: loadRoster,
		loadStats:  loadStats,
		callback:   callback,
		stop:       make(chan struct{}),
	}

	var rosterCh, statsCh <-chan struct{}
	a.rosterSubID, rosterCh = feed.SubscribeRoster(groupID)
	a.statsSubID, statsCh = feed.SubscribeStats(groupID)

	go a.run(rosterCh, statsCh)

	return func() {
		a.teardown.Do(func() {
			close(a.stop)
			feed.UnsubscribeRoster(groupID, a.rosterSubID)
			feed.UnsubscribeStats(groupID, a.statsSubID)
		})
	}
}

func (a *goalkeeperLiveAggregator) run(rosterCh, statsCh <-chan struct{}) {
	// Initial snapshots: roster first (enrichment only), then stats, which
	// gates the first emission.
	a.refreshRoster()
	a.refreshStats()

	for {
		select {
		case _, ok := <-rosterCh:
			if !ok {
				return
			}
			a.refreshRoster()
			a.emit()
		case _, ok := <-statsCh:
			if !ok {
				return
			}
			a.refreshStats()
		case <-a.stop:
			return
		}
	}
}

// refreshRoster reloads the roster map. A failed reload keeps the previous
// map: roster data is enrichment, not the primary signal.
func (a *goalkeeperLiveAggregator) refreshRoster() {
	roster, err := a.loadRoster()
	if err != nil {
		logger.Warn().Err(err).Uint("group_id", a.groupID).Msg("goalkeeper roster reload failed, keeping previous roster")
		return
	}
	a.roster = roster
}

// refreshStats reloads the stats snapshot and emits. A failed reload
// publishes an empty result as the fail-safe default.
func (a *goalkeeperLiveAggregator) refreshStats() {
	stats, err := a.loadStats()
	if err != nil {
		logger.Error().Err(err).Uint("group_id", a.groupID).Msg("goalkeeper stats reload failed, publishing empty result")
		a.stats = nil
		a.statsSeen = true
		a.emit()
		return
	}
	a.stats = stats
	a.statsSeen = true
	a.emit()
}

func (a *goalkeeperLiveAggregator) emit() {
	if !a.statsSeen {
		return
	}
	select {
	case <-a.stop:
		return
	default:
	}
	a.callback(computeGoalkeeperLeaderboard(a.groupID, a.roster, a.stats))
}

// computeGoalkeeperLeaderboard is the full recomputation from the latest
// known snapshots. Documents without a goalkeeper block, or with zero
// matches, are skipped entirely rather than zero-filled.
func computeGoalkeeperLeaderboard(groupID uint, roster map[uint]models.GroupMember, docs []models.SeasonStats) *GoalkeeperLeaderboard {
	bySeason := make(map[string][]GoalkeeperEntry)
	historic := make(map[uint]*GoalkeeperEntry)
	var memberOrder []uint

	for _, doc := range docs {
		if !doc.Goalkeeper.Present() {
			continue
		}

		entry := GoalkeeperEntry{
			GroupMemberID: doc.GroupMemberID,
			Stats:         doc.Goalkeeper,
		}
		if m, ok := roster[doc.GroupMemberID]; ok {
			entry.DisplayName = m.DisplayName
			entry.PhotoURL = m.PhotoURL
			entry.UserID = m.UserID
		}
		bySeason[doc.Season] = append(bySeason[doc.Season], entry)

		agg, ok := historic[doc.GroupMemberID]
		if !ok {
			clone := entry
			clone.Stats = models.GoalkeeperStatBlock{}
			historic[doc.GroupMemberID] = &clone
			agg = historic[doc.GroupMemberID]
			memberOrder = append(memberOrder, doc.GroupMemberID)
		}
		agg.Stats.Add(doc.Goalkeeper)
	}

	lb := &GoalkeeperLeaderboard{GroupID: groupID, Seasons: make([]GoalkeeperSeasonGroup, 0, len(bySeason)), Historic: make([]GoalkeeperEntry, 0, len(historic))}

	for season, entries := range bySeason {
		sortGoalkeeperEntries(entries)
		lb.Seasons = append(lb.Seasons, GoalkeeperSeasonGroup{Season: season, Entries: entries})
	}
	sort.Slice(lb.Seasons, func(i, j int) bool { return lb.Seasons[i].Season > lb.Seasons[j].Season })

	for _, id := range memberOrder {
		lb.Historic = append(lb.Historic, *historic[id])
	}
	sortGoalkeeperEntries(lb.Historic)

	return lb
}

// sortGoalkeeperEntries ranks keepers: clean sheets descending, goals
// conceded ascending, name ascending.
func sortGoalkeeperEntries(entries []GoalkeeperEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Stats.CleanSheets != entries[j].Stats.CleanSheets {
			return entries[i].Stats.CleanSheets > entries[j].Stats.CleanSheets
		}
		if entries[i].Stats.GoalsConceded != entries[j].Stats.GoalsConceded {
			return entries[i].Stats.GoalsConceded < entries[j].Stats.GoalsConceded
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})
}

// Snapshot computes the leaderboard once, for initial screen render.
func (s *GoalkeeperLiveService) Snapshot(groupID uint) (*GoalkeeperLeaderboard, error) {
	roster, err := s.rosterLoaderFor(groupID)()
	if err != nil {
		return nil, err
	}
	stats, err := s.statsLoaderFor(groupID)()
	if err != nil {
		return nil, err
	}
	return computeGoalkeeperLeaderboard(groupID, roster, stats), nil
}

func (s *GoalkeeperLiveService) rosterLoaderFor(groupID uint) rosterLoader {
	return func() (map[uint]models.GroupMember, error) {
		var members []models.GroupMember
		if err := s.db.Where("group_id = ?", groupID).Find(&members).Error; err != nil {
			return nil, err
		}
		roster := make(map[uint]models.GroupMember, len(members))
		for _, m := range members {
			roster[m.ID] = m
		}
		return roster, nil
	}
}

func (s *GoalkeeperLiveService) statsLoaderFor(groupID uint) statsLoader {
	return func() ([]models.SeasonStats, error) {
		var docs []models.SeasonStats
		if err := s.db.Where("group_id = ?", groupID).Find(&docs).Error; err != nil {
			return nil, err
		}
		return docs, nil
	}
}

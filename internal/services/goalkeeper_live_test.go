package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
)

func waitForLeaderboard(t *testing.T, ch <-chan *GoalkeeperLeaderboard) *GoalkeeperLeaderboard {
	t.Helper()
	select {
	case lb := <-ch:
		return lb
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for leaderboard emission")
		return nil
	}
}

func uintPtr(v uint) *uint { return &v }

func TestWatchGoalkeepers_NoEmitBeforeFirstStatsSnapshot(t *testing.T) {
	feed := NewChangeFeed()
	release := make(chan struct{})
	emissions := make(chan *GoalkeeperLeaderboard, 16)

	roster := func() (map[uint]models.GroupMember, error) {
		return map[uint]models.GroupMember{}, nil
	}
	var once sync.Once
	stats := func() ([]models.SeasonStats, error) {
		once.Do(func() { <-release })
		return nil, nil
	}

	teardown := watchGoalkeepers(1, feed, roster, stats, func(lb *GoalkeeperLeaderboard) {
		emissions <- lb
	})
	defer teardown()

	// Roster activity while the stats snapshot is still pending must not
	// produce an emission.
	feed.PublishRosterChange(1)
	select {
	case <-emissions:
		t.Fatal("emitted before the first stats snapshot was observed")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	waitForLeaderboard(t, emissions)
}

func TestWatchGoalkeepers_StatsFailurePublishesEmpty(t *testing.T) {
	feed := NewChangeFeed()
	emissions := make(chan *GoalkeeperLeaderboard, 16)

	roster := func() (map[uint]models.GroupMember, error) {
		return map[uint]models.GroupMember{}, nil
	}
	stats := func() ([]models.SeasonStats, error) {
		return nil, errors.New("store unavailable")
	}

	teardown := watchGoalkeepers(2, feed, roster, stats, func(lb *GoalkeeperLeaderboard) {
		emissions <- lb
	})
	defer teardown()

	lb := waitForLeaderboard(t, emissions)
	if len(lb.Seasons) != 0 || len(lb.Historic) != 0 {
		t.Errorf("stats failure should publish an empty result, got %d seasons and %d historic entries",
			len(lb.Seasons), len(lb.Historic))
	}
}

func TestWatchGoalkeepers_RosterFailureKeepsLastRoster(t *testing.T) {
	feed := NewChangeFeed()
	emissions := make(chan *GoalkeeperLeaderboard, 16)

	var (
		mu         sync.Mutex
		failRoster bool
	)
	roster := func() (map[uint]models.GroupMember, error) {
		mu.Lock()
		defer mu.Unlock()
		if failRoster {
			return nil, errors.New("store unavailable")
		}
		return map[uint]models.GroupMember{
			10: {ID: 10, DisplayName: "Carlos"},
		}, nil
	}
	stats := func() ([]models.SeasonStats, error) {
		return []models.SeasonStats{
			{GroupID: 3, Season: "2024", GroupMemberID: 10, Goalkeeper: models.GoalkeeperStatBlock{Matches: 3, CleanSheets: 1}},
		}, nil
	}

	teardown := watchGoalkeepers(3, feed, roster, stats, func(lb *GoalkeeperLeaderboard) {
		emissions <- lb
	})
	defer teardown()

	first := waitForLeaderboard(t, emissions)
	if len(first.Historic) != 1 || first.Historic[0].DisplayName != "Carlos" {
		t.Fatalf("expected initial emission enriched with roster name, got %+v", first.Historic)
	}

	mu.Lock()
	failRoster = true
	mu.Unlock()

	feed.PublishRosterChange(3)
	second := waitForLeaderboard(t, emissions)
	if len(second.Historic) != 1 || second.Historic[0].DisplayName != "Carlos" {
		t.Errorf("roster reload failure should keep the previous roster, got %+v", second.Historic)
	}
}

func TestWatchGoalkeepers_TeardownIdempotent(t *testing.T) {
	feed := NewChangeFeed()

	roster := func() (map[uint]models.GroupMember, error) {
		return map[uint]models.GroupMember{}, nil
	}
	stats := func() ([]models.SeasonStats, error) { return nil, nil }

	teardown := watchGoalkeepers(4, feed, roster, stats, func(*GoalkeeperLeaderboard) {})

	teardown()
	teardown()

	rosterSubs, statsSubs := feed.SubscriberCount(4)
	if rosterSubs != 0 || statsSubs != 0 {
		t.Errorf("expected both subscriptions removed, got roster=%d stats=%d", rosterSubs, statsSubs)
	}
}

func TestComputeGoalkeeperLeaderboard(t *testing.T) {
	roster := map[uint]models.GroupMember{
		1: {ID: 1, DisplayName: "Ana", UserID: uintPtr(100)},
		2: {ID: 2, DisplayName: "Beto"},
		3: {ID: 3, DisplayName: "Caro"},
	}
	docs := []models.SeasonStats{
		// Outfield-only document, no goalkeeper entry expected
		{GroupID: 1, Season: "2024", GroupMemberID: 3, Player: models.PlayerStatBlock{Matches: 5}},
		// Zero-match goalkeeper block is skipped, not zero-filled
		{GroupID: 1, Season: "2024", GroupMemberID: 3, Goalkeeper: models.GoalkeeperStatBlock{CleanSheets: 9}},
		{GroupID: 1, Season: "2024", GroupMemberID: 1, Goalkeeper: models.GoalkeeperStatBlock{Matches: 4, CleanSheets: 2, GoalsConceded: 3}},
		{GroupID: 1, Season: "2024", GroupMemberID: 2, Goalkeeper: models.GoalkeeperStatBlock{Matches: 4, CleanSheets: 2, GoalsConceded: 5}},
		{GroupID: 1, Season: "2023", GroupMemberID: 2, Goalkeeper: models.GoalkeeperStatBlock{Matches: 6, CleanSheets: 4, GoalsConceded: 2}},
	}

	lb := computeGoalkeeperLeaderboard(1, roster, docs)

	if len(lb.Seasons) != 2 {
		t.Fatalf("expected 2 seasons, got %d", len(lb.Seasons))
	}
	if lb.Seasons[0].Season != "2024" {
		t.Errorf("expected newest season first, got %q", lb.Seasons[0].Season)
	}

	// 2024: equal clean sheets, fewer conceded ranks first
	season2024 := lb.Seasons[0].Entries
	if len(season2024) != 2 {
		t.Fatalf("expected 2 entries in 2024, got %d", len(season2024))
	}
	if season2024[0].DisplayName != "Ana" || season2024[1].DisplayName != "Beto" {
		t.Errorf("expected order Ana, Beto in 2024, got %s, %s",
			season2024[0].DisplayName, season2024[1].DisplayName)
	}
	if season2024[0].UserID == nil || *season2024[0].UserID != 100 {
		t.Error("expected roster user id carried onto the entry")
	}

	// Historic: Beto accumulates across seasons (6 clean sheets) ahead of Ana (2)
	if len(lb.Historic) != 2 {
		t.Fatalf("expected 2 historic entries, got %d", len(lb.Historic))
	}
	if lb.Historic[0].DisplayName != "Beto" {
		t.Errorf("expected Beto first in historic ranking, got %s", lb.Historic[0].DisplayName)
	}
	if got := lb.Historic[0].Stats; got.Matches != 10 || got.CleanSheets != 6 || got.GoalsConceded != 7 {
		t.Errorf("historic accumulation wrong: %+v", got)
	}
}

func TestSortGoalkeeperEntries(t *testing.T) {
	entries := []GoalkeeperEntry{
		{DisplayName: "B", Stats: models.GoalkeeperStatBlock{CleanSheets: 1, GoalsConceded: 2}},
		{DisplayName: "A", Stats: models.GoalkeeperStatBlock{CleanSheets: 1, GoalsConceded: 2}},
		{DisplayName: "C", Stats: models.GoalkeeperStatBlock{CleanSheets: 3, GoalsConceded: 8}},
	}

	sortGoalkeeperEntries(entries)

	want := []string{"C", "A", "B"}
	for i, name := range want {
		if entries[i].DisplayName != name {
			t.Errorf("position %d: expected %s, got %s", i, name, entries[i].DisplayName)
		}
	}
}

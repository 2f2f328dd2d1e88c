package services

import (
	"testing"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
)

func TestBuildSeasonCards(t *testing.T) {
	groups := map[uint]models.Group{
		1: {ID: 1, Name: "Jueves FC"},
	}
	docs := []models.SeasonStats{
		{
			GroupID: 1, Season: "2023", GroupMemberID: 10,
			Player: models.PlayerStatBlock{Matches: 5, Goals: 3},
		},
		{
			GroupID: 1, Season: "2024", GroupMemberID: 10,
			Player:     models.PlayerStatBlock{Matches: 2, Goals: 1},
			Goalkeeper: models.GoalkeeperStatBlock{Matches: 4, CleanSheets: 2},
		},
	}

	cards, historicPlayer, historicGK := buildSeasonCards(docs, groups)

	if len(cards) != 3 {
		t.Fatalf("expected 3 cards (player 2023, player 2024, goalkeeper 2024), got %d", len(cards))
	}

	// Newest season first, player before goalkeeper within a season
	if cards[0].Season != "2024" || cards[0].Kind != CardKindPlayer {
		t.Errorf("card 0: expected 2024/player, got %s/%s", cards[0].Season, cards[0].Kind)
	}
	if cards[1].Season != "2024" || cards[1].Kind != CardKindGoalkeeper {
		t.Errorf("card 1: expected 2024/goalkeeper, got %s/%s", cards[1].Season, cards[1].Kind)
	}
	if cards[2].Season != "2023" || cards[2].Kind != CardKindPlayer {
		t.Errorf("card 2: expected 2023/player, got %s/%s", cards[2].Season, cards[2].Kind)
	}

	if cards[0].GroupName != "Jueves FC" {
		t.Errorf("expected resolved group name on card, got %q", cards[0].GroupName)
	}

	if historicPlayer.Matches != 7 || historicPlayer.Goals != 4 {
		t.Errorf("historic player totals: expected matches=7 goals=4, got matches=%d goals=%d",
			historicPlayer.Matches, historicPlayer.Goals)
	}
	if historicGK.Matches != 4 || historicGK.CleanSheets != 2 {
		t.Errorf("historic goalkeeper totals: expected matches=4 clean_sheets=2, got matches=%d clean_sheets=%d",
			historicGK.Matches, historicGK.CleanSheets)
	}
}

func TestBuildSeasonCards_ZeroMatchesBlockIsAbsent(t *testing.T) {
	docs := []models.SeasonStats{
		{
			GroupID: 1, Season: "2024", GroupMemberID: 10,
			// Non-zero counters with zero matches still mean "no block"
			Player:     models.PlayerStatBlock{Matches: 0, Goals: 9},
			Goalkeeper: models.GoalkeeperStatBlock{Matches: 0, CleanSheets: 3},
		},
	}

	cards, historicPlayer, historicGK := buildSeasonCards(docs, nil)
	if len(cards) != 0 {
		t.Errorf("expected no cards for zero-match blocks, got %d", len(cards))
	}
	if !historicPlayer.IsZero() || !historicGK.IsZero() {
		t.Error("zero-match blocks must not contribute to historic totals")
	}
}

func TestBuildSeasonCards_UnresolvedGroup(t *testing.T) {
	docs := []models.SeasonStats{
		{GroupID: 42, Season: "2024", GroupMemberID: 1, Player: models.PlayerStatBlock{Matches: 1}},
	}

	cards, _, _ := buildSeasonCards(docs, map[uint]models.Group{})
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].GroupName != "" {
		t.Errorf("unresolved group should leave name empty, got %q", cards[0].GroupName)
	}
}

func TestSortSeasonCards(t *testing.T) {
	cards := []SeasonCard{
		{Season: "2023", GroupName: "B", Kind: CardKindGoalkeeper},
		{Season: "2024", GroupName: "B", Kind: CardKindPlayer},
		{Season: "2024", GroupName: "A", Kind: CardKindGoalkeeper},
		{Season: "2024", GroupName: "A", Kind: CardKindPlayer},
		{Season: "2023", GroupName: "A", Kind: CardKindPlayer},
	}

	sortSeasonCards(cards)

	expected := []struct {
		season string
		group  string
		kind   string
	}{
		{"2024", "A", CardKindPlayer},
		{"2024", "A", CardKindGoalkeeper},
		{"2024", "B", CardKindPlayer},
		{"2023", "A", CardKindPlayer},
		{"2023", "B", CardKindGoalkeeper},
	}

	for i, want := range expected {
		got := cards[i]
		if got.Season != want.season || got.GroupName != want.group || got.Kind != want.kind {
			t.Errorf("card %d: expected %s/%s/%s, got %s/%s/%s",
				i, want.season, want.group, want.kind, got.Season, got.GroupName, got.Kind)
		}
	}
}

func TestRowGoals(t *testing.T) {
	row := SeasonTableRow{
		Player:     &models.PlayerStatBlock{Goals: 3},
		Goalkeeper: &models.GoalkeeperStatBlock{Goals: 1},
	}
	if got := rowGoals(row); got != 4 {
		t.Errorf("expected combined goals 4, got %d", got)
	}

	if got := rowGoals(SeasonTableRow{}); got != 0 {
		t.Errorf("expected 0 goals for empty row, got %d", got)
	}
}

func TestStatBlockPresence(t *testing.T) {
	if (models.PlayerStatBlock{Matches: 0, Goals: 5}).Present() {
		t.Error("player block with zero matches must not be present")
	}
	if !(models.PlayerStatBlock{Matches: 1}).Present() {
		t.Error("player block with matches must be present")
	}
	if (models.GoalkeeperStatBlock{CleanSheets: 2}).Present() {
		t.Error("goalkeeper block with zero matches must not be present")
	}
}

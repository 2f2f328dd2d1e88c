package services

import (
	"errors"
	"testing"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
)

func TestGetProfile_RequiresExactlyOneIdentifier(t *testing.T) {
	svc := NewProfileService(nil)

	tests := []struct {
		name string
		req  ProfileRequest
	}{
		{"neither set", ProfileRequest{}},
		{"both set", ProfileRequest{UserID: uintPtr(1), PlayerID: uintPtr(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetProfile(&tt.req)
			if !errors.Is(err, ErrProfileIdentifier) {
				t.Errorf("expected ErrProfileIdentifier, got %v", err)
			}
		})
	}
}

func TestAssembleProfileEntries_CombinedTotals(t *testing.T) {
	playerDocs := []models.PlayerSeasonStat{
		{
			GroupID: 1, Season: "2023",
			Stats: models.PlayerStatBlock{Matches: 10, Goals: 6, Assists: 2, Won: 5, Draw: 2, Lost: 3, MVP: 1},
		},
	}
	keeperDocs := []models.GoalkeeperSeasonStat{
		{
			GroupID: 1, Season: "2024",
			Stats: models.GoalkeeperStatBlock{
				Matches: 4, CleanSheets: 2, GoalsConceded: 5,
				Goals: 1, Won: 2, Draw: 1, Lost: 1, MVP: 1,
			},
		},
	}

	entries, totals := assembleProfileEntries(playerDocs, keeperDocs, nil)

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	// Goalkeeper blocks feed every shared counter of the combined totals
	if totals.Matches != 14 {
		t.Errorf("totals.Matches = %d, expected 14", totals.Matches)
	}
	if totals.Goals != 7 {
		t.Errorf("totals.Goals = %d, expected 7", totals.Goals)
	}
	if totals.Won != 7 || totals.Draw != 3 || totals.Lost != 4 || totals.MVP != 2 {
		t.Errorf("record totals wrong: won=%d draw=%d lost=%d mvp=%d",
			totals.Won, totals.Draw, totals.Lost, totals.MVP)
	}
	if totals.CleanSheets != 2 || totals.GoalsConceded != 5 {
		t.Errorf("keeper-only totals wrong: clean_sheets=%d goals_conceded=%d",
			totals.CleanSheets, totals.GoalsConceded)
	}
}

func TestAssembleProfileEntries_Ordering(t *testing.T) {
	playerDocs := []models.PlayerSeasonStat{
		{GroupID: 1, Season: "2023", Stats: models.PlayerStatBlock{Matches: 1}},
		{GroupID: 1, Season: "2024", Stats: models.PlayerStatBlock{Matches: 1}},
	}
	keeperDocs := []models.GoalkeeperSeasonStat{
		{GroupID: 1, Season: "2024", Stats: models.GoalkeeperStatBlock{Matches: 1}},
	}

	entries, _ := assembleProfileEntries(playerDocs, keeperDocs, nil)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	expected := []struct {
		season string
		kind   string
	}{
		{"2024", CardKindPlayer},
		{"2024", CardKindGoalkeeper},
		{"2023", CardKindPlayer},
	}
	for i, want := range expected {
		if entries[i].Season != want.season || entries[i].Kind != want.kind {
			t.Errorf("entry %d: expected %s/%s, got %s/%s",
				i, want.season, want.kind, entries[i].Season, entries[i].Kind)
		}
	}
}

func TestAssembleProfileEntries_GroupAttachment(t *testing.T) {
	groups := map[uint]models.Group{
		1: {ID: 1, Name: "Sabatina"},
	}
	playerDocs := []models.PlayerSeasonStat{
		{GroupID: 1, Season: "2024", Stats: models.PlayerStatBlock{Matches: 1}},
		{GroupID: 2, Season: "2024", Stats: models.PlayerStatBlock{Matches: 1}},
	}

	entries, _ := assembleProfileEntries(playerDocs, nil, groups)

	var resolved, unresolved *ProfileStatEntry
	for i := range entries {
		switch entries[i].GroupID {
		case 1:
			resolved = &entries[i]
		case 2:
			unresolved = &entries[i]
		}
	}

	if resolved == nil || resolved.Group == nil || resolved.Group.Name != "Sabatina" {
		t.Error("expected resolved group attached to its entry")
	}
	if unresolved == nil || unresolved.Group != nil {
		t.Error("expected nil group on entry whose group did not resolve")
	}
}

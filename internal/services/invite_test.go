package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/config"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestCronSpecFromClock(t *testing.T) {
	tests := []struct {
		clock string
		want  string
	}{
		{"03:30", "30 3 * * *"},
		{"00:00", "0 0 * * *"},
		{"23:05", "5 23 * * *"},
		{"7:45", "45 7 * * *"},
		{"not-a-clock", "30 3 * * *"},
		{"", "30 3 * * *"},
	}

	for _, tt := range tests {
		if got := cronSpecFromClock(tt.clock); got != tt.want {
			t.Errorf("cronSpecFromClock(%q) = %q, expected %q", tt.clock, got, tt.want)
		}
	}
}

func TestInviteLink(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"with base url", "https://mejengas.app", "https://mejengas.app/invites/claim?token=abc"},
		{"trailing slash trimmed", "https://mejengas.app/", "https://mejengas.app/invites/claim?token=abc"},
		{"no base url", "", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewInviteService(nil, &config.InviteConfig{BaseURL: tt.baseURL})
			if got := svc.inviteLink("abc"); got != tt.want {
				t.Errorf("inviteLink = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestGenerateInviteToken(t *testing.T) {
	token, hash, err := generateInviteToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(token))
	}
	if hash != hashRefreshToken(token) {
		t.Error("stored hash must match the hash of the raw token")
	}

	token2, _, err := generateInviteToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == token2 {
		t.Error("expected distinct tokens across calls")
	}
}

// --- Accept ---

func newInviteTestService(t *testing.T) (*InviteService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Group{}, &models.GroupMember{}, &models.Invite{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewInviteService(db, &config.InviteConfig{ExpireDays: 7}), db
}

func seedInvite(t *testing.T, db *gorm.DB, member *models.GroupMember, invite *models.Invite) {
	t.Helper()
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to seed member: %v", err)
	}
	invite.GroupID = member.GroupID
	invite.GroupMemberID = member.ID
	if err := db.Create(invite).Error; err != nil {
		t.Fatalf("failed to seed invite: %v", err)
	}
}

func reloadInviteStatus(t *testing.T, db *gorm.DB, inviteID uint) string {
	t.Helper()
	var invite models.Invite
	if err := db.First(&invite, inviteID).Error; err != nil {
		t.Fatalf("failed to reload invite: %v", err)
	}
	return invite.Status
}

func TestAccept_LinksMemberAndMarksAccepted(t *testing.T) {
	svc, db := newInviteTestService(t)

	member := &models.GroupMember{GroupID: 1, DisplayName: "Ana", IsGuest: true, Role: "player"}
	invite := &models.Invite{
		Email:     "ana@example.com",
		InvitedBy: 5,
		Status:    models.InviteStatusPending,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	seedInvite(t, db, member, invite)

	linked, err := svc.Accept(invite.ID, 60, "Ana@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if linked.UserID == nil || *linked.UserID != 60 {
		t.Errorf("expected member linked to user 60, got %v", linked.UserID)
	}
	if linked.IsGuest {
		t.Error("linked member must no longer be a guest")
	}
	if got := reloadInviteStatus(t, db, invite.ID); got != models.InviteStatusAccepted {
		t.Errorf("expected invite status %q, got %q", models.InviteStatusAccepted, got)
	}
}

func TestAccept_LinkedMemberFailsWithoutStatusChange(t *testing.T) {
	svc, db := newInviteTestService(t)

	otherUser := uint(50)
	member := &models.GroupMember{GroupID: 1, UserID: &otherUser, DisplayName: "Ana", Role: "player"}
	invite := &models.Invite{
		Email:     "ana@example.com",
		InvitedBy: 5,
		Status:    models.InviteStatusPending,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	seedInvite(t, db, member, invite)

	_, err := svc.Accept(invite.ID, 60, "ana@example.com")
	if !errors.Is(err, ErrMemberLinked) {
		t.Fatalf("expected ErrMemberLinked, got %v", err)
	}

	if got := reloadInviteStatus(t, db, invite.ID); got != models.InviteStatusPending {
		t.Errorf("failed accept must not mutate invite status: got %q", got)
	}

	var reloaded models.GroupMember
	if err := db.First(&reloaded, member.ID).Error; err != nil {
		t.Fatalf("failed to reload member: %v", err)
	}
	if reloaded.UserID == nil || *reloaded.UserID != otherUser {
		t.Errorf("failed accept must not relink the member: got %v", reloaded.UserID)
	}
}

func TestAccept_ExpiredInvite(t *testing.T) {
	svc, db := newInviteTestService(t)

	member := &models.GroupMember{GroupID: 1, DisplayName: "Ana", IsGuest: true, Role: "player"}
	invite := &models.Invite{
		Email:     "ana@example.com",
		InvitedBy: 5,
		Status:    models.InviteStatusPending,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	seedInvite(t, db, member, invite)

	_, err := svc.Accept(invite.ID, 60, "ana@example.com")
	if !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("expected ErrInviteExpired, got %v", err)
	}
	if got := reloadInviteStatus(t, db, invite.ID); got != models.InviteStatusPending {
		t.Errorf("expired accept must not mutate invite status: got %q", got)
	}
}

func TestAccept_NotPending(t *testing.T) {
	svc, db := newInviteTestService(t)

	member := &models.GroupMember{GroupID: 1, DisplayName: "Ana", IsGuest: true, Role: "player"}
	invite := &models.Invite{
		Email:     "ana@example.com",
		InvitedBy: 5,
		Status:    models.InviteStatusRejected,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	seedInvite(t, db, member, invite)

	_, err := svc.Accept(invite.ID, 60, "ana@example.com")
	if !errors.Is(err, ErrInviteNotPending) {
		t.Fatalf("expected ErrInviteNotPending, got %v", err)
	}
}

func TestAccept_WrongEmail(t *testing.T) {
	svc, db := newInviteTestService(t)

	member := &models.GroupMember{GroupID: 1, DisplayName: "Ana", IsGuest: true, Role: "player"}
	invite := &models.Invite{
		Email:     "ana@example.com",
		InvitedBy: 5,
		Status:    models.InviteStatusPending,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	seedInvite(t, db, member, invite)

	_, err := svc.Accept(invite.ID, 60, "someone-else@example.com")
	if !errors.Is(err, ErrInviteWrongEmail) {
		t.Fatalf("expected ErrInviteWrongEmail, got %v", err)
	}
	if got := reloadInviteStatus(t, db, invite.ID); got != models.InviteStatusPending {
		t.Errorf("wrong-email accept must not mutate invite status: got %q", got)
	}
}

func TestAccept_UserAlreadyInGroup(t *testing.T) {
	svc, db := newInviteTestService(t)

	userID := uint(60)
	existing := &models.GroupMember{GroupID: 1, UserID: &userID, DisplayName: "Ana's account", Role: "player"}
	if err := db.Create(existing).Error; err != nil {
		t.Fatalf("failed to seed existing member: %v", err)
	}

	member := &models.GroupMember{GroupID: 1, DisplayName: "Ana", IsGuest: true, Role: "player"}
	invite := &models.Invite{
		Email:     "ana@example.com",
		InvitedBy: 5,
		Status:    models.InviteStatusPending,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	seedInvite(t, db, member, invite)

	_, err := svc.Accept(invite.ID, userID, "ana@example.com")
	if !errors.Is(err, ErrAlreadyInGroup) {
		t.Fatalf("expected ErrAlreadyInGroup, got %v", err)
	}

	if got := reloadInviteStatus(t, db, invite.ID); got != models.InviteStatusPending {
		t.Errorf("failed accept must not mutate invite status: got %q", got)
	}
	var reloaded models.GroupMember
	if err := db.First(&reloaded, member.ID).Error; err != nil {
		t.Fatalf("failed to reload member: %v", err)
	}
	if reloaded.UserID != nil {
		t.Errorf("failed accept must leave the member unlinked, got %v", reloaded.UserID)
	}
}

package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/config"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var (
	ErrInviteNotFound   = errors.New("invite not found")
	ErrInviteNotPending = errors.New("invite is no longer pending")
	ErrInviteExpired    = errors.New("invite has expired")
	ErrInvitePending    = errors.New("member already has a pending invite")
	ErrInviteWrongEmail = errors.New("invite was issued to a different email")
)

type InviteService struct {
	db     *gorm.DB
	cfg    *config.InviteConfig
	groups *GroupService
	email  *EmailService
	feed   *ChangeFeed
}

func NewInviteService(db *gorm.DB, cfg *config.InviteConfig) *InviteService {
	return &InviteService{
		db:     db,
		cfg:    cfg,
		groups: NewGroupService(db),
		email:  NewEmailService(db),
		feed:   GetChangeFeed(),
	}
}

type CreateInviteRequest struct {
	GroupMemberID uint   `json:"group_member_id" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
}

// Create issues an invite for an unlinked member. At most one pending invite
// per member; issuing a new one requires revoking or resolving the old one
// first. The emailed link carries the raw token; only its hash is stored.
func (s *InviteService) Create(groupID, actorID uint, req *CreateInviteRequest) (*models.Invite, error) {
	group, err := s.groups.GetByID(groupID)
	if err != nil {
		return nil, err
	}
	if err := s.groups.RequireAdmin(groupID, actorID); err != nil {
		return nil, err
	}

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
	if member.UserID != nil {
		return nil, ErrMemberLinked
	}

	var pending int64
	if err := s.db.Model(&models.Invite{}).
		Where("group_member_id = ? AND status = ?", req.GroupMemberID, models.InviteStatusPending).
		Count(&pending).Error; err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, ErrInvitePending
	}

	token, tokenHash, err := generateInviteToken()
	if err != nil {
		return nil, err
	}

	expireDays := s.cfg.ExpireDays
	if expireDays <= 0 {
		expireDays = 7
	}

	invite := models.Invite{
		GroupID:       groupID,
		GroupMemberID: req.GroupMemberID,
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		InvitedBy:     actorID,
		Status:        models.InviteStatusPending,
		TokenHash:     tokenHash,
		ExpiresAt:     time.Now().AddDate(0, 0, expireDays),
	}
	if err := s.db.Create(&invite).Error; err != nil {
		return nil, err
	}

	link := s.inviteLink(token)
	if err := s.email.SendInviteEmail(invite.Email, group.Name, member.DisplayName, link); err != nil {
		logger.Warn().Err(err).Uint("invite_id", invite.ID).Msg("invite email delivery failed")
	}

	LogInfo("Invite", "Create", fmt.Sprintf("Invite for member %d in group %d", member.ID, groupID), &actorID, "", "", nil)
	return &invite, nil
}

// ListForGroup returns all invites of a group, newest first. Admin only.
func (s *InviteService) ListForGroup(groupID, actorID uint) ([]models.Invite, error) {
	if err := s.groups.RequireAdmin(groupID, actorID); err != nil {
		return nil, err
	}

	var invites []models.Invite
	if err := s.db.Where("group_id = ?", groupID).Order("created_at DESC").Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

// ListForEmail returns the pending invites addressed to an email.
func (s *InviteService) ListForEmail(email string) ([]models.Invite, error) {
	var invites []models.Invite
	if err := s.db.
		Where("email = ? AND status = ? AND expires_at > ?",
			strings.ToLower(strings.TrimSpace(email)), models.InviteStatusPending, time.Now()).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

// Accept links the invited member to the accepting user's account. The whole
// transition runs in one transaction: the invite must still be pending and
// unexpired, the member still unlinked, and the user not already present in
// the group.
func (s *InviteService) Accept(inviteID uint, userID uint, userEmail string) (*models.GroupMember, error) {
	var member *models.GroupMember

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var invite models.Invite
		if err := tx.First(&invite, inviteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInviteNotFound
			}
			return err
		}
		if invite.Status != models.InviteStatusPending {
			return ErrInviteNotPending
		}
		if time.Now().After(invite.ExpiresAt) {
			return ErrInviteExpired
		}
		if invite.Email != strings.ToLower(strings.TrimSpace(userEmail)) {
			return ErrInviteWrongEmail
		}

		var m models.GroupMember
		if err := tx.First(&m, invite.GroupMemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		if m.UserID != nil {
			return ErrMemberLinked
		}

		var count int64
		if err := tx.Model(&models.GroupMember{}).
			Where("group_id = ? AND user_id = ?", invite.GroupID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyInGroup
		}

		if err := tx.Model(&m).Updates(map[string]interface{}{
			"user_id":  userID,
			"is_guest": false,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&invite).Update("status", models.InviteStatusAccepted).Error; err != nil {
			return err
		}

		uid := userID
		m.UserID = &uid
		m.IsGuest = false
		member = &m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.feed.PublishRosterChange(member.GroupID)
	return member, nil
}

// Reject marks a pending invite rejected. Only the invited email may reject.
func (s *InviteService) Reject(inviteID uint, userEmail string) error {
	var invite models.Invite
	if err := s.db.First(&invite, inviteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	if invite.Status != models.InviteStatusPending {
		return ErrInviteNotPending
	}
	if invite.Email != strings.ToLower(strings.TrimSpace(userEmail)) {
		return ErrInviteWrongEmail
	}

	return s.db.Model(&invite).Update("status", models.InviteStatusRejected).Error
}

// Revoke deletes a pending invite. Admin of the issuing group only.
func (s *InviteService) Revoke(groupID, inviteID, actorID uint) error {
	if err := s.groups.RequireAdmin(groupID, actorID); err != nil {
		return err
	}

	var invite models.Invite
	if err := s.db.First(&invite, inviteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	if invite.GroupID != groupID {
		return ErrInviteNotFound
	}
	if invite.Status != models.InviteStatusPending {
		return ErrInviteNotPending
	}

	return s.db.Delete(&invite).Error
}

// ExpirePending marks every overdue pending invite as expired and returns
// how many rows changed.
func (s *InviteService) ExpirePending() (int64, error) {
	result := s.db.Model(&models.Invite{}).
		Where("status = ? AND expires_at <= ?", models.InviteStatusPending, time.Now()).
		Update("status", models.InviteStatusExpired)
	return result.RowsAffected, result.Error
}

// StartExpirySweeper schedules the daily expiry sweep at the configured
// local time. Returns the scheduler so callers can stop it on shutdown.
func (s *InviteService) StartExpirySweeper() *cron.Cron {
	sweepTime := s.cfg.SweepTime
	if sweepTime == "" {
		sweepTime = "03:30"
	}

	spec := cronSpecFromClock(sweepTime)
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		expired, err := s.ExpirePending()
		if err != nil {
			logger.Error().Err(err).Msg("invite expiry sweep failed")
			return
		}
		if expired > 0 {
			logger.Info().Int64("expired", expired).Msg("invite expiry sweep done")
		}
	}); err != nil {
		logger.Error().Err(err).Str("spec", spec).Msg("invalid invite sweep schedule")
		return c
	}
	c.Start()
	logger.Info().Str("at", sweepTime).Msg("invite expiry sweeper scheduled")
	return c
}

// cronSpecFromClock turns "HH:MM" into a daily cron spec. Malformed input
// falls back to 03:30.
func cronSpecFromClock(clock string) string {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return "30 3 * * *"
	}
	hour := strings.TrimPrefix(parts[0], "0")
	minute := strings.TrimPrefix(parts[1], "0")
	if hour == "" {
		hour = "0"
	}
	if minute == "" {
		minute = "0"
	}
	return fmt.Sprintf("%s %s * * *", minute, hour)
}

func (s *InviteService) inviteLink(token string) string {
	base := strings.TrimSuffix(s.cfg.BaseURL, "/")
	if base == "" {
		return token
	}
	return base + "/invites/claim?token=" + token
}

func generateInviteToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	tokenHash = hashRefreshToken(token)
	return token, tokenHash, nil
}

// GetByID returns one invite.
func (s *InviteService) GetByID(inviteID uint) (*models.Invite, error) {
	var invite models.Invite
	if err := s.db.First(&invite, inviteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &invite, nil
}

// FindByToken resolves an invite from the raw emailed token.
func (s *InviteService) FindByToken(token string) (*models.Invite, error) {
	if token == "" {
		return nil, ErrInviteNotFound
	}

	var invite models.Invite
	if err := s.db.Where("token_hash = ?", hashRefreshToken(token)).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &invite, nil
}

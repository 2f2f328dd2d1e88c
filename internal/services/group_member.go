package services

import (
	"errors"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrAlreadyInGroup  = errors.New("user already has a member in this group")
	ErrMemberLinked    = errors.New("member is already linked to an account")
	ErrMemberNotLinked = errors.New("member is not linked to an account")
	ErrOwnerMember     = errors.New("the owner's member cannot be removed")
)

type GroupMemberService struct {
	db     *gorm.DB
	groups *GroupService
	feed   *ChangeFeed
}

func NewGroupMemberService(db *gorm.DB) *GroupMemberService {
	return &GroupMemberService{
		db:     db,
		groups: NewGroupService(db),
		feed:   GetChangeFeed(),
	}
}

type AddMemberRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=100"`
	PhotoURL    string `json:"photo_url" binding:"max=500"`
	IsGuest     bool   `json:"is_guest"`
}

// Add creates a new roster entry. New members start unlinked; linking to an
// account happens via invites or an explicit link by an admin.
func (s *GroupMemberService) Add(groupID, actorID uint, req *AddMemberRequest) (*models.GroupMember, error) {
	if _, err := s.groups.GetByID(groupID); err != nil {
		return nil, err
	}
	if err := s.groups.RequireAdmin(groupID, actorID); err != nil {
		return nil, err
	}

	member := models.GroupMember{
		GroupID:     groupID,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		IsGuest:     req.IsGuest,
		Role:        "player",
	}
	if err := s.db.Create(&member).Error; err != nil {
		return nil, err
	}

	s.feed.PublishRosterChange(groupID)
	return &member, nil
}

// List returns the group's roster ordered by display name.
func (s *GroupMemberService) List(groupID, actorID uint) ([]models.GroupMember, error) {
	if err := s.groups.RequireMember(groupID, actorID); err != nil {
		return nil, err
	}

	var members []models.GroupMember
	if err := s.db.Where("group_id = ?", groupID).Order("display_name ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

type UpdateMemberRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	PhotoURL    *string `json:"photo_url" binding:"omitempty,max=500"`
	Role        *string `json:"role" binding:"omitempty,oneof=admin player"`
}

// Update edits a roster entry. The owner role is assigned at group creation
// and never reassigned here.
func (s *GroupMemberService) Update(groupID, memberID, actorID uint, req *UpdateMemberRequest) (*models.GroupMember, error) {
	if err := s.groups.RequireAdmin(groupID, actorID); err != nil {
		return nil, err
	}

	member, err := s.getInGroup(groupID, memberID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.PhotoURL != nil {
		updates["photo_url"] = *req.PhotoURL
	}
	if req.Role != nil {
		if member.Role == "owner" {
			return nil, ErrOwnerMember
		}
		updates["role"] = *req.Role
	}
	if len(updates) > 0 {
		if err := s.db.Model(member).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.feed.PublishRosterChange(groupID)
	return member, nil
}

// Remove deletes a roster entry together with its stat documents and any
// pending invite. The owner's own entry stays for the life of the group.
func (s *GroupMemberService) Remove(groupID, memberID, actorID uint) error {
	if err := s.groups.RequireAdmin(groupID, actorID); err != nil {
		return err
	}

	member, err := s.getInGroup(groupID, memberID)
	if err != nil {
		return err
	}
	if member.Role == "owner" {
		return ErrOwnerMember
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_member_id = ?", memberID).Delete(&models.SeasonStats{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_member_id = ? AND status = ?", memberID, models.InviteStatusPending).
			Delete(&models.Invite{}).Error; err != nil {
			return err
		}
		return tx.Delete(member).Error
	})
	if err != nil {
		return err
	}

	s.feed.PublishRosterChange(groupID)
	s.feed.PublishStatsChange(groupID)
	return nil
}

// Link attaches an account to an unlinked member, bypassing the invite
// flow. Admin only. One member per (group, user) pair; a second link attempt
// in the same group is rejected before touching the row.
func (s *GroupMemberService) Link(groupID, memberID, actorID, userID uint) (*models.GroupMember, error) {
	if err := s.groups.RequireAdmin(groupID, actorID); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}

	member, err := s.getInGroup(groupID, memberID)
	if err != nil {
		return nil, err
	}
	if member.UserID != nil {
		return nil, ErrMemberLinked
	}

	var count int64
	if err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyInGroup
	}

	if err := s.db.Model(member).Updates(map[string]interface{}{
		"user_id":  userID,
		"is_guest": false,
	}).Error; err != nil {
		return nil, err
	}

	s.feed.PublishRosterChange(groupID)
	return member, nil
}

// Unlink detaches the account from a member, reverting it to a guest. The
// member row and its stats stay with the group.
func (s *GroupMemberService) Unlink(groupID, memberID, actorID uint) (*models.GroupMember, error) {
	member, err := s.getInGroup(groupID, memberID)
	if err != nil {
		return nil, err
	}
	if member.UserID == nil {
		return nil, ErrMemberNotLinked
	}

	// The linked user may unlink themselves; anyone else needs admin.
	if *member.UserID != actorID {
		if err := s.groups.RequireAdmin(groupID, actorID); err != nil {
			return nil, err
		}
	}
	if member.Role == "owner" {
		return nil, ErrOwnerMember
	}

	if err := s.db.Model(member).Updates(map[string]interface{}{
		"user_id":  nil,
		"is_guest": true,
	}).Error; err != nil {
		return nil, err
	}
	member.UserID = nil
	member.IsGuest = true

	s.feed.PublishRosterChange(groupID)
	return member, nil
}

// Leave removes the caller's link from their own member in the group.
func (s *GroupMemberService) Leave(groupID, userID uint) error {
	var member models.GroupMember
	if err := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return err
	}
	if member.Role == "owner" {
		return ErrOwnerLeave
	}

	if err := s.db.Model(&member).Updates(map[string]interface{}{
		"user_id":  nil,
		"is_guest": true,
	}).Error; err != nil {
		return err
	}

	s.feed.PublishRosterChange(groupID)
	return nil
}

func (s *GroupMemberService) getInGroup(groupID, memberID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	if err := s.db.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if member.GroupID != groupID {
		return nil, ErrMemberNotInGroup
	}
	return &member, nil
}

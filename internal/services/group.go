package services

import (
	"errors"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrNotGroupMember = errors.New("not a member of this group")
	ErrNotGroupAdmin  = errors.New("requires group owner or admin")
	ErrOwnerLeave     = errors.New("owner cannot leave their own group")
)

type GroupService struct {
	db   *gorm.DB
	feed *ChangeFeed
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db, feed: GetChangeFeed()}
}

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=1000"`
	Type        string `json:"type" binding:"omitempty,oneof=friendly league"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=private public"`
}

// Create inserts the group and its owner's roster entry in one transaction;
// a group never exists without at least its owner on the roster.
func (s *GroupService) Create(ownerID uint, req *CreateGroupRequest) (*models.Group, error) {
	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		return nil, errors.New("owner not found")
	}

	group := models.Group{
		Name:        req.Name,
		OwnerID:     ownerID,
		Description: req.Description,
		IsActive:    true,
		Type:        req.Type,
		Visibility:  req.Visibility,
	}
	if group.Type == "" {
		group.Type = "friendly"
	}
	if group.Visibility == "" {
		group.Visibility = "private"
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		member := models.GroupMember{
			GroupID:     group.ID,
			UserID:      &ownerID,
			DisplayName: owner.DisplayName,
			PhotoURL:    owner.PhotoURL,
			Role:        "owner",
		}
		return tx.Create(&member).Error
	}); err != nil {
		return nil, err
	}

	return &group, nil
}

func (s *GroupService) GetByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

// GroupSummary is a group plus the caller's roster entry within it.
type GroupSummary struct {
	Group       models.Group `json:"group"`
	MemberCount int64        `json:"member_count"`
	MyRole      string       `json:"my_role"`
}

// ListForUser returns every group where the user holds a roster entry,
// newest first.
func (s *GroupService) ListForUser(userID uint) ([]GroupSummary, error) {
	var memberships []models.GroupMember
	if err := s.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []GroupSummary{}, nil
	}

	roleByGroup := make(map[uint]string, len(memberships))
	groupIDs := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		roleByGroup[m.GroupID] = m.Role
		groupIDs = append(groupIDs, m.GroupID)
	}

	var groups []models.Group
	if err := s.db.Where("id IN ?", groupIDs).Order("created_at DESC").Find(&groups).Error; err != nil {
		return nil, err
	}

	summaries := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		var count int64
		s.db.Model(&models.GroupMember{}).Where("group_id = ?", g.ID).Count(&count)
		summaries = append(summaries, GroupSummary{
			Group:       g,
			MemberCount: count,
			MyRole:      roleByGroup[g.ID],
		})
	}
	return summaries, nil
}

type UpdateGroupRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Type        *string `json:"type" binding:"omitempty,oneof=friendly league"`
	Visibility  *string `json:"visibility" binding:"omitempty,oneof=private public"`
	IsActive    *bool   `json:"is_active"`
}

// Update edits the group's soft fields. Caller must be owner or admin.
func (s *GroupService) Update(groupID, userID uint, req *UpdateGroupRequest) (*models.Group, error) {
	group, err := s.GetByID(groupID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireAdmin(groupID, userID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Visibility != nil {
		updates["visibility"] = *req.Visibility
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := s.db.Model(group).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return group, nil
}

// Delete soft-deletes the group with its roster, stats and invites.
// Owner only.
func (s *GroupService) Delete(groupID, userID uint) error {
	group, err := s.GetByID(groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != userID {
		return ErrNotGroupAdmin
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.Invite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.SeasonStats{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(group).Error
	})
}

// RequireAdmin checks that the user is owner or admin of the group.
func (s *GroupService) RequireAdmin(groupID, userID uint) error {
	var member models.GroupMember
	if err := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return err
	}
	if member.Role != "owner" && member.Role != "admin" {
		return ErrNotGroupAdmin
	}
	return nil
}

// RequireMember checks that the user has any roster entry in the group.
func (s *GroupService) RequireMember(groupID, userID uint) error {
	var count int64
	if err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotGroupMember
	}
	return nil
}

package handlers

import (
	"fmt"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/config"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/middleware"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/services"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type InviteHandler struct {
	db            *gorm.DB
	inviteService *services.InviteService
	groupService  *services.GroupService
	pushService   *services.PushService
}

func NewInviteHandler(db *gorm.DB, cfg *config.Config) *InviteHandler {
	return &InviteHandler{
		db:            db,
		inviteService: services.NewInviteService(db, &cfg.Invites),
		groupService:  services.NewGroupService(db),
		pushService:   services.NewPushService(db, &cfg.Push),
	}
}

// Create issues an invite for an unlinked member
// POST /api/groups/:id/invites
func (h *InviteHandler) Create(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actorID := middleware.GetUserID(c)
	invite, err := h.inviteService.Create(groupID, actorID, &req)
	if err != nil {
		groupError(c, err)
		return
	}

	// Invited users with an existing account also get a push
	var invited models.User
	if err := h.db.Where("email = ?", invite.Email).First(&invited).Error; err == nil {
		if group, err := h.groupService.GetByID(groupID); err == nil {
			h.pushService.NotifyUser(invited.ID,
				"Group invitation",
				fmt.Sprintf("You have been invited to join %s", group.Name),
				map[string]string{"type": "invite", "invite_id": fmt.Sprint(invite.ID)})
		}
	}

	response.Created(c, invite)
}

// ListForGroup returns a group's invites, admin only
// GET /api/groups/:id/invites
func (h *InviteHandler) ListForGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invites, err := h.inviteService.ListForGroup(groupID, middleware.GetUserID(c))
	if err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, invites)
}

// ListMine returns the caller's pending invites
// GET /api/invites
func (h *InviteHandler) ListMine(c *gin.Context) {
	invites, err := h.inviteService.ListForEmail(middleware.GetUsername(c))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, invites)
}

// Accept links the caller to the invited member
// POST /api/invites/:id/accept
func (h *InviteHandler) Accept(c *gin.Context) {
	inviteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	member, err := h.inviteService.Accept(inviteID, userID, middleware.GetUsername(c))
	if err != nil {
		groupError(c, err)
		return
	}

	if invite, err := h.inviteService.GetByID(inviteID); err == nil {
		h.pushService.NotifyUser(invite.InvitedBy,
			"Invitation accepted",
			fmt.Sprintf("%s joined the group", member.DisplayName),
			map[string]string{"type": "invite_accepted", "group_id": fmt.Sprint(member.GroupID)})
	}

	response.Success(c, member)
}

// Reject declines an invite addressed to the caller
// POST /api/invites/:id/reject
func (h *InviteHandler) Reject(c *gin.Context) {
	inviteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.inviteService.Reject(inviteID, middleware.GetUsername(c)); err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "invite rejected"})
}

// Revoke deletes a pending invite, admin only
// DELETE /api/groups/:id/invites/:inviteId
func (h *InviteHandler) Revoke(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	inviteID, ok := parseIDParam(c, "inviteId")
	if !ok {
		return
	}

	if err := h.inviteService.Revoke(groupID, inviteID, middleware.GetUserID(c)); err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "invite revoked"})
}

// Claim resolves an invite from an emailed link token
// GET /api/invites/claim?token=...
func (h *InviteHandler) Claim(c *gin.Context) {
	invite, err := h.inviteService.FindByToken(c.Query("token"))
	if err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, invite)
}

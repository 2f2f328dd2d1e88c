package handlers

import (
	"github.com/carlosvillalobossalas/mejengas-backend/internal/middleware"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/services"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GroupMemberHandler struct {
	memberService *services.GroupMemberService
}

func NewGroupMemberHandler(db *gorm.DB) *GroupMemberHandler {
	return &GroupMemberHandler{
		memberService: services.NewGroupMemberService(db),
	}
}

// List returns the group's roster
// GET /api/groups/:id/members
func (h *GroupMemberHandler) List(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	members, err := h.memberService.List(groupID, middleware.GetUserID(c))
	if err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, members)
}

// Add creates an unlinked roster member
// POST /api/groups/:id/members
func (h *GroupMemberHandler) Add(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.Add(groupID, middleware.GetUserID(c), &req)
	if err != nil {
		groupError(c, err)
		return
	}

	response.Created(c, member)
}

// Update edits a roster member
// PUT /api/groups/:id/members/:memberId
func (h *GroupMemberHandler) Update(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	var req services.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.Update(groupID, memberID, middleware.GetUserID(c), &req)
	if err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, member)
}

// Remove deletes a roster member and its stats
// DELETE /api/groups/:id/members/:memberId
func (h *GroupMemberHandler) Remove(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	if err := h.memberService.Remove(groupID, memberID, middleware.GetUserID(c)); err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "member removed"})
}

type linkMemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// Link attaches an account to an unlinked member, admin only
// POST /api/groups/:id/members/:memberId/link
func (h *GroupMemberHandler) Link(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	var req linkMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.Link(groupID, memberID, middleware.GetUserID(c), req.UserID)
	if err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, member)
}

// Unlink detaches the account from a member
// POST /api/groups/:id/members/:memberId/unlink
func (h *GroupMemberHandler) Unlink(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	member, err := h.memberService.Unlink(groupID, memberID, middleware.GetUserID(c))
	if err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, member)
}

// Leave drops the caller's link from their member in the group
// POST /api/groups/:id/leave
func (h *GroupMemberHandler) Leave(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.memberService.Leave(groupID, middleware.GetUserID(c)); err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "left group"})
}

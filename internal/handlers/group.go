package handlers

import (
	"errors"
	"strconv"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/middleware"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/services"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{
		groupService: services.NewGroupService(db),
	}
}

// parseIDParam reads a uint path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// groupError maps service sentinels onto HTTP responses.
func groupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrInviteNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotGroupMember),
		errors.Is(err, services.ErrNotGroupAdmin),
		errors.Is(err, services.ErrOwnerMember),
		errors.Is(err, services.ErrOwnerLeave):
		response.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAlreadyInGroup),
		errors.Is(err, services.ErrMemberLinked),
		errors.Is(err, services.ErrMemberNotLinked),
		errors.Is(err, services.ErrMemberNotInGroup),
		errors.Is(err, services.ErrInvitePending),
		errors.Is(err, services.ErrInviteNotPending),
		errors.Is(err, services.ErrInviteExpired),
		errors.Is(err, services.ErrInviteWrongEmail):
		response.Error(c, response.NewConflict(err.Error()))
	default:
		response.ServerError(c, err.Error())
	}
}

// Create creates a group owned by the caller
// POST /api/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req services.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	group, err := h.groupService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, group)
}

// List returns the caller's groups
// GET /api/groups
func (h *GroupHandler) List(c *gin.Context) {
	summaries, err := h.groupService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, summaries)
}

// GetByID returns one group
// GET /api/groups/:id
func (h *GroupHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	group, err := h.groupService.GetByID(id)
	if err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, group)
}

// Update edits a group's soft fields
// PUT /api/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	group, err := h.groupService.Update(id, middleware.GetUserID(c), &req)
	if err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, group)
}

// Delete removes a group, owner only
// DELETE /api/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.groupService.Delete(id, middleware.GetUserID(c)); err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "group deleted"})
}

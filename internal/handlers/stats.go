package handlers

import (
	"github.com/carlosvillalobossalas/mejengas-backend/internal/middleware"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/services"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StatsHandler struct {
	statsService  *services.SeasonStatsService
	keeperService *services.GoalkeeperLiveService
	groupService  *services.GroupService
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{
		statsService:  services.NewSeasonStatsService(db),
		keeperService: services.NewGoalkeeperLiveService(db),
		groupService:  services.NewGroupService(db),
	}
}

// Upsert writes one (season, member) stats document
// PUT /api/groups/:id/season-stats
func (h *StatsHandler) Upsert(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.groupService.RequireAdmin(groupID, middleware.GetUserID(c)); err != nil {
		groupError(c, err)
		return
	}

	var req services.UpsertSeasonStatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	doc, err := h.statsService.Upsert(groupID, &req)
	if err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, doc)
}

// SeasonTables returns the group's per-season tables
// GET /api/groups/:id/season-stats
func (h *StatsHandler) SeasonTables(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.groupService.RequireMember(groupID, middleware.GetUserID(c)); err != nil {
		groupError(c, err)
		return
	}

	tables, err := h.statsService.GetGroupSeasonTables(groupID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, tables)
}

// GoalkeeperSnapshot returns the leaderboard once, for initial render
// GET /api/groups/:id/goalkeepers
func (h *StatsHandler) GoalkeeperSnapshot(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.groupService.RequireMember(groupID, middleware.GetUserID(c)); err != nil {
		groupError(c, err)
		return
	}

	lb, err := h.keeperService.Snapshot(groupID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, lb)
}

// MemberProfile returns the season cards and historic totals of one member
// GET /api/members/:id/profile
func (h *StatsHandler) MemberProfile(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.statsService.GetMemberProfile(memberID)
	if err != nil {
		groupError(c, err)
		return
	}

	response.Success(c, profile)
}

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

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{
		profileService: services.NewProfileService(db),
	}
}

// Get assembles a profile for either a user or a legacy player. Exactly one
// of user_id and player_id must be supplied.
// GET /api/profile?user_id=N | ?player_id=N
func (h *ProfileHandler) Get(c *gin.Context) {
	var req services.ProfileRequest

	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.BadRequest(c, "invalid user_id")
			return
		}
		uid := uint(id)
		req.UserID = &uid
	}
	if raw := c.Query("player_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.BadRequest(c, "invalid player_id")
			return
		}
		pid := uint(id)
		req.PlayerID = &pid
	}

	view, err := h.profileService.GetProfile(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProfileIdentifier):
			response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrProfileNotFound):
			response.NotFound(c, err.Error())
		default:
			response.ServerError(c, err.Error())
		}
		return
	}

	response.Success(c, view)
}

// GetMine assembles the caller's own profile
// GET /api/profile/me
func (h *ProfileHandler) GetMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	view, err := h.profileService.GetProfile(&services.ProfileRequest{UserID: &userID})
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, view)
}

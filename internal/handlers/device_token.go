package handlers

import (
	"github.com/carlosvillalobossalas/mejengas-backend/internal/config"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/middleware"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/services"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DeviceTokenHandler struct {
	pushService *services.PushService
}

func NewDeviceTokenHandler(db *gorm.DB, cfg *config.Config) *DeviceTokenHandler {
	return &DeviceTokenHandler{
		pushService: services.NewPushService(db, &cfg.Push),
	}
}

// Register stores or refreshes the caller's device token
// POST /api/devices
func (h *DeviceTokenHandler) Register(c *gin.Context) {
	var req services.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, err := h.pushService.RegisterDevice(middleware.GetUserID(c), &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, token)
}

// Unregister drops one of the caller's device tokens
// DELETE /api/devices/:token
func (h *DeviceTokenHandler) Unregister(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "token required")
		return
	}

	if err := h.pushService.UnregisterDevice(middleware.GetUserID(c), token); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "device unregistered"})
}

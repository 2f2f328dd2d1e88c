package handlers

import (
	"github.com/carlosvillalobossalas/mejengas-backend/internal/services"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(db *gorm.DB) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService: services.NewSystemConfigService(db),
	}
}

// GetEmailConfig returns the mailer settings, password omitted
// GET /api/system-config/email
func (h *SystemConfigHandler) GetEmailConfig(c *gin.Context) {
	cfg, err := h.configService.GetEmailConfig()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, cfg)
}

// UpdateEmailConfig applies a partial mailer settings update
// PUT /api/system-config/email
func (h *SystemConfigHandler) UpdateEmailConfig(c *gin.Context) {
	var req services.UpdateEmailConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.UpdateEmailConfig(&req); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	cfg, err := h.configService.GetEmailConfig()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, cfg)
}

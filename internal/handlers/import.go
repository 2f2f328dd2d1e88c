package handlers

import (
	"github.com/carlosvillalobossalas/mejengas-backend/internal/middleware"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/services"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ImportHandler struct {
	importService *services.LegacyImportService
}

func NewImportHandler(db *gorm.DB) *ImportHandler {
	return &ImportHandler{
		importService: services.NewLegacyImportService(db),
	}
}

// ImportLegacy ingests a legacy JSON export, admin only
// POST /api/import/legacy
func (h *ImportHandler) ImportLegacy(c *gin.Context) {
	resp, err := h.importService.Import(c.Request.Body, middleware.GetUserID(c))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, resp)
}

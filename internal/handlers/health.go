package handlers

import (
	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// HealthHandler provides enhanced health check endpoints.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Pending invite count
	var pendingInvites int64
	models.GetDB().Model(&models.Invite{}).
		Where("status = ?", models.InviteStatusPending).
		Count(&pendingInvites)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "mejengas",
		"components": gin.H{
			"database":        dbStatus,
			"queue_mode":      queueMode,
			"pending_invites": pendingInvites,
		},
	})
}

package main

import (
	"github.com/carlosvillalobossalas/mejengas-backend/internal/handlers"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/middleware"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for credential-handling routes
	authLimiter := middleware.NewRateLimiter(10, 20)

	db := models.GetDB()
	authHandler := handlers.NewAuthHandler(db, svc.cfg)
	groupHandler := handlers.NewGroupHandler(db)
	memberHandler := handlers.NewGroupMemberHandler(db)
	inviteHandler := handlers.NewInviteHandler(db, svc.cfg)
	statsHandler := handlers.NewStatsHandler(db)
	profileHandler := handlers.NewProfileHandler(db)
	sseHandler := handlers.NewSSEHandler(db)
	deviceHandler := handlers.NewDeviceTokenHandler(db, svc.cfg)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		// Invite claim landing (public, token in query string)
		api.GET("/invites/claim", inviteHandler.Claim)

		// SSE Events (public route with internal token validation)
		api.GET("/events/groups/:id/goalkeepers", sseHandler.StreamGoalkeepers)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", authHandler.GetCurrentUser)
			protected.PUT("/auth/me", authHandler.UpdateCurrentUser)
			protected.POST("/auth/logout", authHandler.Logout)
			protected.POST("/auth/change-password", authHandler.ChangePassword)
			protected.DELETE("/auth/me", authHandler.DeleteAccount)

			// Groups
			protected.POST("/groups", groupHandler.Create)
			protected.GET("/groups", groupHandler.List)
			protected.GET("/groups/:id", groupHandler.GetByID)
			protected.PUT("/groups/:id", groupHandler.Update)
			protected.DELETE("/groups/:id", groupHandler.Delete)
			protected.POST("/groups/:id/leave", memberHandler.Leave)

			// Group members
			protected.GET("/groups/:id/members", memberHandler.List)
			protected.POST("/groups/:id/members", memberHandler.Add)
			protected.PUT("/groups/:id/members/:memberId", memberHandler.Update)
			protected.DELETE("/groups/:id/members/:memberId", memberHandler.Remove)
			protected.POST("/groups/:id/members/:memberId/link", memberHandler.Link)
			protected.POST("/groups/:id/members/:memberId/unlink", memberHandler.Unlink)

			// Invites
			protected.POST("/groups/:id/invites", inviteHandler.Create)
			protected.GET("/groups/:id/invites", inviteHandler.ListForGroup)
			protected.DELETE("/groups/:id/invites/:inviteId", inviteHandler.Revoke)
			protected.GET("/invites", inviteHandler.ListMine)
			protected.POST("/invites/:id/accept", inviteHandler.Accept)
			protected.POST("/invites/:id/reject", inviteHandler.Reject)

			// Season stats and leaderboards
			protected.PUT("/groups/:id/season-stats", statsHandler.Upsert)
			protected.GET("/groups/:id/season-stats", statsHandler.SeasonTables)
			protected.GET("/groups/:id/goalkeepers", statsHandler.GoalkeeperSnapshot)
			protected.GET("/members/:id/profile", statsHandler.MemberProfile)

			// Profiles
			protected.GET("/profile", profileHandler.Get)
			protected.GET("/profile/me", profileHandler.GetMine)

			// Device tokens for push notifications
			protected.POST("/devices", deviceHandler.Register)
			protected.DELETE("/devices/:token", deviceHandler.Unregister)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			// Legacy data import
			importHandler := handlers.NewImportHandler(db)
			admin.POST("/import/legacy", importHandler.ImportLegacy)

			// System Logs
			systemLogHandler := handlers.NewSystemLogHandler(db)
			admin.GET("/system-logs", systemLogHandler.List)
			admin.GET("/system-logs/modules", systemLogHandler.GetModules)
			admin.GET("/system-logs/retention", systemLogHandler.GetRetention)
			admin.PUT("/system-logs/retention", systemLogHandler.SetRetention)
			admin.POST("/system-logs/cleanup", systemLogHandler.Cleanup)

			// System Config
			systemConfigHandler := handlers.NewSystemConfigHandler(db)
			admin.GET("/system-config/email", systemConfigHandler.GetEmailConfig)
			admin.PUT("/system-config/email", systemConfigHandler.UpdateEmailConfig)
		}
	}
}

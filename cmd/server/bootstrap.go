package main

import (
	"github.com/carlosvillalobossalas/mejengas-backend/internal/config"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/models"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/services"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/utils"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// appServices holds all initialized services needed by the application.
type appServices struct {
	cfg           *config.Config
	pushService   *services.PushService
	inviteSweeper *cron.Cron
	taskQueue     services.TaskQueue
	worker        *services.Worker
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	services.StartLogCleanupScheduler(models.GetDB())

	// Schedule the daily invite expiry sweep
	inviteService := services.NewInviteService(models.GetDB(), &cfg.Invites)
	inviteSweeper := inviteService.StartExpirySweeper()

	// Initialize push delivery (uses Redis if enabled, otherwise sync mode)
	pushService := services.NewPushService(models.GetDB(), &cfg.Push)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(pushService.Deliver)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(pushService.Deliver)
			if err := worker.Start(); err != nil {
				logger.Error().Err(err).Msg("Failed to start async worker")
			}
		}
	}

	return &appServices{
		cfg:           cfg,
		pushService:   pushService,
		inviteSweeper: inviteSweeper,
		taskQueue:     taskQueue,
		worker:        worker,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	if s.inviteSweeper != nil {
		s.inviteSweeper.Stop()
	}
	logger.Info().Msg("Schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}

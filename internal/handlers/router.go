package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/edusehat/education-service/internal/config"
	"github.com/edusehat/education-service/internal/repositories"
	"github.com/edusehat/education-service/internal/services"
	"github.com/edusehat/education-service/internal/utils"
	"github.com/edusehat/education-service/internal/validator"
)

type HandlerManager struct {
	progressHandler     *ProgressHandler
	monitoringHandler   *MonitoringHandler
	expertHandler       *ExpertHandler
	reportHandler       *ReportHandler
	notificationHandler *NotificationHandler
	userHandler         *UserHandler
	authMiddleware      *CasdoorAuthMiddleware
	adminAuth           *AdminAuth
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	adminConfig config.AdminConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		progressHandler:     NewProgressHandler(serviceManager.Progress(), logger),
		monitoringHandler:   NewMonitoringHandler(serviceManager.Monitoring(), logger),
		expertHandler:       NewExpertHandler(serviceManager.Expert(), logger),
		reportHandler:       NewReportHandler(serviceManager.Report(), logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), logger),
		userHandler:         NewUserHandler(logger),
		authMiddleware:      authMiddleware,
		adminAuth:           NewAdminAuth(adminConfig, validator, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")

	// Admin panel login uses fixed credentials, not Casdoor
	v1.POST("/admin/login", hm.adminAuth.Login)

	authenticated := v1.Group("")
	authenticated.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Learning pipeline routes
		progress := authenticated.Group("/progress")
		{
			progress.GET("", hm.progressHandler.GetProgress)
			progress.POST("/:stage_id/start", hm.progressHandler.StartStage)
			progress.POST("/:stage_id/complete", hm.progressHandler.CompleteStage)
		}

		// Monitoring questionnaire routes
		authenticated.POST("/monitoring", hm.monitoringHandler.SubmitMonitoring)
		authenticated.GET("/monitoring", hm.monitoringHandler.ListMine)
		authenticated.POST("/commitments", hm.monitoringHandler.SubmitCommitment)

		// Expert directory (read-only for participants)
		experts := authenticated.Group("/experts")
		{
			experts.GET("", hm.expertHandler.ListExperts)
			experts.GET("/:id", hm.expertHandler.GetExpert)
		}

		// User routes
		authenticated.GET("/users/me", hm.userHandler.GetMe)
	}

	// Admin panel routes guarded by the admin token
	admin := v1.Group("/admin")
	admin.Use(hm.adminAuth.Middleware())
	{
		experts := admin.Group("/experts")
		{
			experts.POST("", hm.expertHandler.CreateExpert)
			experts.PUT("/:id", hm.expertHandler.UpdateExpert)
			experts.DELETE("/:id", hm.expertHandler.DeleteExpert)
		}

		reports := admin.Group("/reports")
		{
			reports.GET("/stats", hm.reportHandler.GetStats)
			reports.GET("/monitoring", hm.reportHandler.GetMonitoringReport)
			reports.GET("/commitments", hm.reportHandler.GetCommitmentReport)
			reports.GET("/:name", hm.reportHandler.GetCompletionReport)
			reports.GET("/:name/export", hm.reportHandler.ExportCompletionReport)
		}

		admin.POST("/notifications/sweep", hm.notificationHandler.TriggerSweep)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "education-service",
		})
	})
}

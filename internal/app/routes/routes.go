package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/internflow/internal/app/controllers"
	"github.com/yigit/internflow/internal/app/metrics"
	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/middleware"
	"github.com/yigit/internflow/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	metricsPath string,
	authController *controllers.AuthController,
	internshipController *controllers.InternshipController,
	workflowController *controllers.WorkflowController,
	notificationController *controllers.NotificationController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
) {
	router.GET(metricsPath, gin.WrapH(metrics.Handler()))

	// API version group
	v1 := router.Group("/api/v1")

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	auth.Use(rateLimiter.Handler())
	{
		auth.POST("/login", authController.Login)
	}

	// --- Authenticated Routes Group ---
	// The limiter runs after JWTAuth so it keys on the user
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth(), rateLimiter.Handler())
	{
		authenticated.GET("/auth/me", authController.GetProfile)

		internships := authenticated.Group("/internships")
		{
			internships.POST("", internshipController.CreateInternship)
			internships.GET("", internshipController.ListInternships)
			internships.GET("/:id", internshipController.GetInternship)
			internships.DELETE("/:id", internshipController.DeleteInternship)
			internships.PUT("/:id/advisor", internshipController.AssignAdvisor)

			// Workflow
			internships.POST("/:id/transitions", workflowController.Transition)
			internships.POST("/:id/decisions/:decision", workflowController.Decide)
			internships.GET("/:id/approvals", workflowController.ListApprovals)
			internships.GET("/:id/approvals/latest", workflowController.LatestApproval)

			// Documents
			internships.POST("/:id/documents", internshipController.UploadDocument)
			internships.GET("/:id/documents", internshipController.ListDocuments)
			internships.GET("/:id/documents/:documentId", internshipController.DownloadDocument)
			internships.PUT("/:id/documents/:documentId/review", internshipController.ReviewReport)
		}

		authenticated.GET("/approvals/mine", workflowController.MyDecisions)

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", notificationController.ListNotifications)
			notifications.PUT("/:id/read", notificationController.MarkRead)
			notifications.GET("/ws", wsHandler.HandleConnection)
		}
	}
}

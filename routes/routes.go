package routes

import (
	"accounting-portal-api/controllers"
	"accounting-portal-api/middleware"
	"accounting-portal-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Accounting Portal API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Realtime socket (token passed as query parameter on upgrade)
			protected.GET("/ws", controllers.ConnectWS)

			// Company profile (created lazily on first load)
			protected.GET("/company-profile", controllers.GetCompanyProfile)
			protected.PUT("/company-profile", controllers.SaveCompanyProfile)

			// Cross-kind review navigation: invoices first, then vouchers
			protected.GET("/reviews/next", controllers.GetNextReviewTarget)

			// Review items (invoices, vouchers, notices, tasks)
			items := protected.Group("/items/:kind")
			{
				items.GET("", controllers.GetReviewItems)
				items.GET("/:id", controllers.GetReviewItem)
				items.GET("/:id/history", controllers.GetStatusHistory)

				// Decisions cover approve/reject/tag and the closure
				// lifecycle; role and gate checks happen in the service.
				items.POST("/:id/decision", controllers.PostDecision)
				items.GET("/:id/closure-request", controllers.GetClosureRequest)

				// Discussion thread (notices and tasks)
				items.GET("/:id/comments", controllers.GetComments)
				items.POST("/:id/comments", controllers.CreateComment)
				items.POST("/:id/comments/read", controllers.MarkCommentsRead)
				items.GET("/:id/comments/:comment_id/receipts", controllers.GetCommentReceipts)

				// Collaborators
				items.GET("/:id/collaborators", controllers.GetCollaborators)
				items.POST("/:id/collaborators",
					middleware.RequireRole(models.RoleCAAccountant, models.RoleCATeam, models.RoleClientMasterAdmin),
					controllers.AddCollaborator)
				items.DELETE("/:id/collaborators/:user_id",
					middleware.RequireRole(models.RoleCAAccountant, models.RoleCATeam, models.RoleClientMasterAdmin),
					controllers.RemoveCollaborator)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}
		}
	}
}

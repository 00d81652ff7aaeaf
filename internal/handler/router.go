package handler

import (
	"time"

	"training-portal/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires every route group onto the engine.
func SetupRouter(r *gin.Engine) {
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeadersMiddleware())

	limiter := middleware.NewRateLimiter(100, time.Minute)       // general API
	authLimiter := middleware.NewRateLimiter(10, time.Minute)    // credential endpoints
	webhookLimiter := middleware.NewRateLimiter(60, time.Minute) // provider callback

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(limiter))

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "training-portal"})
	})

	authHandler := NewAuthHandler()
	orgHandler := NewOrganizationHandler()
	inviteHandler := NewInviteHandler()
	programHandler := NewProgramHandler()
	sessionHandler := NewSessionHandler()
	appHandler := NewApplicationHandler()
	completionHandler := NewCompletionHandler()
	paymentHandler := NewPaymentHandler()
	userHandler := NewUserHandler()
	statsHandler := NewStatisticsHandler()
	auditHandler := NewAuditHandler()
	exportHandler := NewExportHandler()

	// ==================== Public routes ====================
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware(authLimiter))
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify-email", authHandler.VerifyEmail)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.POST("/new-password", authHandler.NewPassword)
	}

	// Catalogue browsing needs no session.
	api.GET("/programs", programHandler.List)
	api.GET("/programs/:id", programHandler.Get)
	api.GET("/sessions", sessionHandler.List)
	api.GET("/sessions/:id", sessionHandler.Get)

	// Invite landing page from the emailed link.
	api.GET("/invites/:token", inviteHandler.Validate)

	// Payment provider callback, authenticated by shared client id.
	callback := api.Group("/payments")
	callback.Use(middleware.RateLimitMiddleware(webhookLimiter))
	{
		callback.POST("/:application_id/callback", paymentHandler.Callback)
	}

	// ==================== Authenticated routes ====================
	authenticated := api.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		authenticated.GET("/auth/profile", authHandler.GetProfile)
		authenticated.PUT("/auth/profile", authHandler.UpdateProfile)
		authenticated.PUT("/auth/password", authHandler.ChangePassword)

		orgs := authenticated.Group("/organizations")
		{
			orgs.POST("", orgHandler.Create)
			orgs.GET("", orgHandler.List)
			orgs.GET("/:id", orgHandler.Get)
			orgs.PUT("/:id", orgHandler.Update)
			orgs.DELETE("/:id/members/:member_id", orgHandler.RemoveMember)
			orgs.GET("/:id/invites", inviteHandler.List)
		}

		invites := authenticated.Group("/invites")
		{
			invites.POST("", inviteHandler.Send)
			invites.POST("/resend", inviteHandler.Resend)
			invites.POST("/revoke", inviteHandler.Revoke)
			invites.POST("/respond", inviteHandler.Respond)
		}

		apps := authenticated.Group("/applications")
		{
			apps.POST("", appHandler.Submit)
			apps.GET("", appHandler.List)
			apps.GET("/:id", appHandler.Get)
			apps.DELETE("/:id", appHandler.Delete)
			apps.POST("/:id/pay", appHandler.Pay)
		}

		completions := authenticated.Group("/completions")
		{
			completions.POST("", completionHandler.Submit)
			completions.GET("", completionHandler.List)
			completions.GET("/:id", completionHandler.Get)
		}

		authenticated.GET("/payments", paymentHandler.List)
	}

	// ==================== Admin routes ====================
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.Use(middleware.AuditMiddleware())
	{
		admin.GET("/statistics/dashboard", statsHandler.Dashboard)
		admin.GET("/statistics/application-trend", statsHandler.ApplicationTrend)
		admin.GET("/statistics/sessions/:id", statsHandler.SessionStatistics)
		admin.GET("/statistics/citizenship", statsHandler.CitizenshipDistribution)

		programs := admin.Group("/programs")
		{
			programs.POST("", programHandler.Create)
			programs.PUT("/:id", programHandler.Update)
			programs.DELETE("/:id", programHandler.Delete)
			programs.POST("/:id/topics", programHandler.AddTopic)
		}

		sessions := admin.Group("/sessions")
		{
			sessions.POST("", sessionHandler.Create)
			sessions.PUT("/:id", sessionHandler.Update)
			sessions.DELETE("/:id", sessionHandler.Delete)
		}

		applications := admin.Group("/applications")
		{
			applications.POST("/:id/approve", appHandler.Approve)
			applications.POST("/:id/reject", appHandler.Reject)
		}

		admin.POST("/completions/respond", completionHandler.Respond)

		users := admin.Group("/users")
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.PUT("/:id/role", userHandler.UpdateRole)
		}

		audit := admin.Group("/audit")
		{
			audit.GET("", auditHandler.List)
			audit.GET("/stats", auditHandler.GetStats)
			audit.GET("/:id", auditHandler.Get)
		}

		export := admin.Group("/export")
		{
			export.GET("/applications", exportHandler.ExportApplications)
			export.GET("/participants", exportHandler.ExportParticipants)
			export.GET("/payments", exportHandler.ExportPayments)
			export.GET("/audit-logs", exportHandler.ExportAuditLogs)
		}
	}
}

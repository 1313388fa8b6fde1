package api

import (
	"alcyxob/trainer-app/internal/service"

	"github.com/gin-gonic/gin"
)

// Services are the dependencies of every handler.
type Services struct {
	Auth      service.AuthService
	Trainer   service.TrainerService
	Student   service.StudentService
	Plan      service.PlanService
	Share     service.ShareService
	Payment   service.PaymentService
	Dashboard service.DashboardService
}

// SetupRoutes registers the JSON API, the public plan pages and the marketing site.
// The router must already have the templates from web.Templates installed.
func SetupRoutes(router *gin.Engine, services Services) {
	authHandler := NewAuthHandler(services.Auth)
	trainerHandler := NewTrainerHandler(services.Trainer)
	studentHandler := NewStudentHandler(services.Student)
	planHandler := NewPlanHandler(services.Plan)
	shareHandler := NewShareHandler(services.Share)
	paymentHandler := NewPaymentHandler(services.Payment)
	dashboardHandler := NewDashboardHandler(services.Dashboard)
	siteHandler := NewSiteHandler()

	authMiddleware := AuthMiddleware(services.Auth)

	// --- Marketing site and public pages ---
	router.GET("/", siteHandler.Landing)
	router.GET("/pricing", siteHandler.Pricing)
	router.GET("/p/:token", shareHandler.PublicPlanPage)
	router.GET("/health", siteHandler.Health)
	router.GET("/ping", siteHandler.Ping)
	router.NoRoute(siteHandler.NotFound)

	apiGroup := router.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
		}

		apiGroup.GET("/public/plans/:token", shareHandler.GetPublicPlan)
	}

	protected := apiGroup.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", trainerHandler.GetMe)
		protected.PUT("/me", trainerHandler.UpdateMe)
		protected.PUT("/me/password", trainerHandler.ChangePassword)
		protected.POST("/me/avatar/upload-url", trainerHandler.RequestAvatarUpload)
		protected.PUT("/me/avatar", trainerHandler.SetAvatar)

		protected.GET("/dashboard", dashboardHandler.GetDashboard)

		studentGroup := protected.Group("/students")
		{
			studentGroup.GET("", studentHandler.ListStudents)
			studentGroup.POST("", studentHandler.CreateStudent)
			studentGroup.POST("/import", studentHandler.ImportStudents)
			studentGroup.GET("/:id", studentHandler.GetStudent)
			studentGroup.PUT("/:id", studentHandler.UpdateStudent)
			studentGroup.DELETE("/:id", studentHandler.DeleteStudent)
			studentGroup.POST("/:id/restore", studentHandler.RestoreStudent)
		}

		planGroup := protected.Group("/plans")
		{
			planGroup.GET("", planHandler.ListPlans)
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("/:id", planHandler.GetPlan)
			planGroup.PUT("/:id", planHandler.UpdatePlan)
			planGroup.DELETE("/:id", planHandler.DeletePlan)
			planGroup.POST("/:id/restore", planHandler.RestorePlan)
			planGroup.POST("/:id/duplicate", planHandler.DuplicatePlan)

			// --- Days ---
			planGroup.POST("/:id/days", planHandler.AddDay)
			planGroup.PUT("/:id/days/:dayId", planHandler.UpdateDay)
			planGroup.DELETE("/:id/days/:dayId", planHandler.DeleteDay)
			planGroup.POST("/:id/days/:dayId/complete", planHandler.CompleteDay)
			planGroup.DELETE("/:id/days/:dayId/complete", planHandler.CompleteDay)

			// --- Blocks ---
			planGroup.POST("/:id/days/:dayId/blocks", planHandler.AddBlock)
			planGroup.PUT("/:id/blocks/:blockId", planHandler.UpdateBlock)
			planGroup.DELETE("/:id/blocks/:blockId", planHandler.DeleteBlock)

			// --- Items ---
			planGroup.POST("/:id/blocks/:blockId/items", planHandler.AddItem)
			planGroup.PUT("/:id/items/:itemId", planHandler.UpdateItem)
			planGroup.DELETE("/:id/items/:itemId", planHandler.DeleteItem)

			// --- Sharing ---
			planGroup.POST("/:id/share", shareHandler.SharePlan)
			planGroup.GET("/:id/share", shareHandler.GetShare)
			planGroup.DELETE("/:id/share", shareHandler.RevokeShare)
			planGroup.GET("/:id/share/qr", shareHandler.ShareQRCode)
		}

		paymentGroup := protected.Group("/payments")
		{
			paymentGroup.GET("", paymentHandler.ListPayments)
			paymentGroup.POST("", paymentHandler.CreatePayment)
			paymentGroup.GET("/export.xlsx", paymentHandler.DownloadExport)
			paymentGroup.POST("/export", paymentHandler.ExportToStorage)
			paymentGroup.GET("/:id", paymentHandler.GetPayment)
			paymentGroup.PUT("/:id", paymentHandler.UpdatePayment)
			paymentGroup.DELETE("/:id", paymentHandler.DeletePayment)
			paymentGroup.POST("/:id/pay", paymentHandler.MarkPaid)
		}
	}
}

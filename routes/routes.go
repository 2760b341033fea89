package routes

import (
	"os"
	"strings"

	"cleanpro-backend/config"
	"cleanpro-backend/controllers"
	"cleanpro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()
	r.HandleMethodNotAllowed = true

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	// Marketing site endpoints, no auth
	public := r.Group("/public")
	{
		public.GET("/companies/:id/services", controllers.GetPublicServices)
		public.POST("/leads", controllers.CreateLead)
	}

	// Cron trigger, shared-secret auth inside the handler
	r.POST("/api/cron/send-reminders", controllers.SendReminders)

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.POST("/:id/opt-out", controllers.SetCustomerOptOut)
			customers.POST("/:id/loyalty", controllers.AdjustLoyaltyPoints)
			customers.GET("/:id/loyalty", controllers.GetLoyaltyHistory)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		// Service routes
		services := api.Group("/services")
		{
			services.POST("", controllers.CreateService)
			services.GET("", controllers.GetServices)
			services.GET("/:id", controllers.GetService)
			services.PUT("/:id", controllers.UpdateService)
			services.DELETE("/:id", controllers.DeleteService)
		}

		// Job routes
		jobs := api.Group("/jobs")
		{
			jobs.POST("", controllers.CreateJob)
			jobs.GET("", controllers.GetJobs)
			jobs.GET("/:id", controllers.GetJob)
			jobs.PUT("/:id", controllers.UpdateJob)
			jobs.POST("/:id/complete", controllers.CompleteJob)
			jobs.DELETE("/:id", controllers.DeleteJob)
		}

		// Message template routes
		templates := api.Group("/templates")
		{
			templates.POST("", controllers.CreateTemplate)
			templates.GET("", controllers.GetTemplates)
			templates.GET("/:id", controllers.GetTemplate)
			templates.PUT("/:id", controllers.UpdateTemplate)
			templates.DELETE("/:id", controllers.DeleteTemplate)
		}

		// Promotion routes
		promotions := api.Group("/promotions")
		{
			promotions.POST("", controllers.CreatePromotion)
			promotions.GET("", controllers.GetPromotions)
			promotions.GET("/validate/:code", controllers.ValidatePromotion)
			promotions.PUT("/:id", controllers.UpdatePromotion)
			promotions.DELETE("/:id", controllers.DeletePromotion)
		}

		// Referral routes
		referrals := api.Group("/referrals")
		{
			referrals.POST("", controllers.CreateReferral)
			referrals.GET("", controllers.GetReferrals)
			referrals.POST("/:id/complete", controllers.CompleteReferral)
		}

		// Lead inbox
		api.GET("/leads", controllers.GetLeads)

		// Reports routes
		reportController := controllers.ReportController{}
		api.GET("/reports", reportController.GetReportAnalytics)

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}

func allowedOrigins() []string {
	env := os.Getenv("CORS_ALLOWED_ORIGINS")
	if env == "" {
		return []string{"http://localhost:3000"}
	}
	var origins []string
	for _, o := range strings.Split(env, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

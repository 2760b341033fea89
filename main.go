package main

import (
	"fmt"
	"log"
	"os"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/routes"
	"cleanpro-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Customer{},
		&models.OptOut{},
		&models.Service{},
		&models.Job{},
		&models.JobItem{},
		&models.Reminder{},
		&models.MessageTemplate{},
		&models.CommunicationLog{},
		&models.AuditLog{},
		&models.Promotion{},
		&models.Referral{},
		&models.LoyaltyTransaction{},
		&models.Lead{},
	)
}

func main() {

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Deployments without an external cron trigger run the dispatcher
	// in-process instead.
	if os.Getenv("ENABLE_SCHEDULER") == "true" {
		services.StartScheduler(config.DB)
	}

	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}

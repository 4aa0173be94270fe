package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/priya-tailors/priyas-tailoring-api/config"
	"github.com/priya-tailors/priyas-tailoring-api/controllers"
	"github.com/priya-tailors/priyas-tailoring-api/middleware"
	"github.com/priya-tailors/priyas-tailoring-api/models"
	"github.com/priya-tailors/priyas-tailoring-api/services"
)

func main() {
	log.Println("Starting Priya's Tailoring workflow API...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Staff{},
		&models.Order{},
		&models.OrderItem{},
		&models.TimelineEntry{},
		&models.StaffWorkLog{},
		&models.AssignmentAuditLog{},
		&models.StageTemplate{},
		&models.CuttingTask{},
		&models.StageDefaults{},
		&models.OTPRequest{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize the blob-store upload proxy
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
	} else {
		log.Println("AWS_S3_BUCKET not set, image uploads disabled")
	}

	// Initialize Auth0 userinfo lookups for profile creation
	services.InitAuth0Service(cfg)

	// Initialize OTP dispatch
	services.InitOTPService(services.NewBulkSMSGateway(cfg), cfg.OTPMockMode)
	if cfg.OTPMockMode {
		log.Println("OTP verification running in mock mode")
	}

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.Default())

	registerRoutes(router, cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func registerRoutes(router *gin.Engine, cfg *config.Config) {
	v1 := router.Group("/api/v1")

	// Health check endpoint
	v1.GET("/health", healthCheck)

	authed := v1.Group("")
	authed.Use(middleware.EnsureValidToken(cfg))

	// Profile endpoints only need a valid token; everything else needs a
	// resolved staff profile and effective role
	authed.POST("/staff", controllers.CreateStaffProfile)
	authed.GET("/staff/me", controllers.GetMyProfile)

	staffed := authed.Group("")
	staffed.Use(middleware.ResolveStaff())

	// Orders
	staffed.POST("/orders",
		middleware.RequireRoles(models.RoleIntake, models.RoleSupervisor),
		controllers.CreateOrder)
	staffed.GET("/orders", controllers.ListOrders)
	staffed.GET("/orders/:id", controllers.GetOrder)
	staffed.GET("/orders/:id/timeline", controllers.GetOrderTimeline)
	staffed.POST("/orders/:id/deliver",
		middleware.RequireRoles(models.RoleDelivery, models.RoleSupervisor),
		controllers.MarkOrderDelivered)
	staffed.POST("/orders/:id/items",
		middleware.RequireRoles(models.RoleIntake, models.RoleSupervisor),
		controllers.AddOrderItem)
	staffed.POST("/orders/:id/images", controllers.AttachOrderImage)

	// Stage transitions (per-stage role checks happen in the handlers)
	staffed.POST("/orders/:id/stages/complete", controllers.CompleteOrderStage)
	staffed.POST("/orders/:id/items/:itemIndex/stages/complete", controllers.CompleteItemStage)
	staffed.POST("/orders/:id/items/:itemIndex/stages/reject", controllers.RejectItemStage)

	// OTP confirmation
	staffed.POST("/orders/:id/otp/send",
		middleware.RequireRoles(models.RoleIntake, models.RoleSupervisor),
		controllers.SendOrderOTP)
	staffed.POST("/orders/:id/otp/verify",
		middleware.RequireRoles(models.RoleIntake, models.RoleSupervisor),
		controllers.VerifyOrderOTP)

	// Assignment & audit
	staffed.POST("/assignments",
		middleware.RequireRoles(models.RoleSupervisor),
		controllers.AssignWork)
	staffed.POST("/assignments/bulk",
		middleware.RequireRoles(models.RoleSupervisor),
		controllers.BulkAssignWork)
	staffed.GET("/orders/:id/assignment-logs", controllers.GetAssignmentLogsForOrder)
	staffed.GET("/staff/:id/assignment-logs", controllers.GetAssignmentLogsForStaff)
	staffed.PUT("/staff/:id/role",
		middleware.RequireRoles(),
		controllers.UpdateStaffRole)

	// Templates and settings (writes are admin-only)
	staffed.GET("/templates/:garmentType/:stage",
		middleware.RequireRoles(models.RoleSupervisor),
		controllers.GetTemplates)
	staffed.PUT("/templates/:garmentType/:stage",
		middleware.RequireRoles(),
		controllers.PutTemplates)
	staffed.GET("/settings/stage-defaults",
		middleware.RequireRoles(models.RoleSupervisor),
		controllers.GetStageDefaults)
	staffed.PUT("/settings/stage-defaults",
		middleware.RequireRoles(),
		controllers.PutStageDefaults)

	// Reporting
	staffed.GET("/reports",
		middleware.RequireRoles(models.RoleSupervisor),
		controllers.GetReport)

	// Upload proxy
	staffed.POST("/uploads", controllers.UploadImage)
	staffed.GET("/uploads/url", controllers.GetImageURL)
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Priya's Tailoring API is running",
	})
}

package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/private-messaging-api/config"
	"github.com/kendall-kelly/private-messaging-api/controllers"
	"github.com/kendall-kelly/private-messaging-api/middleware"
	"github.com/kendall-kelly/private-messaging-api/models"
	"github.com/kendall-kelly/private-messaging-api/services"
)

func main() {
	log.Println("Starting Private Messaging API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	if err := initServices(context.Background(), cfg); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	router := setupRouter(cfg)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initServices wires the messaging services against the connected database
func initServices(ctx context.Context, cfg *config.Config) error {
	db := config.GetDB()

	messages := services.InitMessageService(db, services.NewGormUserDirectory(db), services.MessageServiceOptions{
		TitlePreviewLength: cfg.TitlePreviewLength,
		DefaultPageSize:    cfg.DefaultPageSize,
		MaxPageSize:        cfg.MaxPageSize,
	})
	services.InitNotificationService(db, messages)

	var archive services.ArchiveStore
	if cfg.ArchiveEnabled() {
		s3Service, err := services.InitS3Service(ctx, cfg)
		if err != nil {
			return err
		}
		archive = s3Service
		log.Printf("Purged messages will be archived to s3://%s", cfg.AWSS3Bucket)
	}
	services.InitPurgeService(db, archive, cfg.PurgeRetention)

	return nil
}

// setupRouter builds the HTTP routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		authed := v1.Group("", middleware.EnsureValidToken(cfg))

		users := authed.Group("/users")
		users.POST("", controllers.CreateUser)
		users.GET("/me", controllers.GetMyProfile)
		users.PUT("/me", controllers.UpdateMyProfile)

		messages := authed.Group("/messages")
		messages.GET("", controllers.ListMessages)
		messages.GET("/unread", controllers.ListUnreadMessages)
		messages.GET("/sent", controllers.ListSentMessages)
		messages.GET("/:id", controllers.GetMessage)
		messages.POST("", controllers.CreateMessage)
		messages.POST("/read", controllers.SetMessagesRead)
		messages.POST("/delete", controllers.DeleteMessages)
		messages.POST("/sent/delete", controllers.DeleteSentMessages)

		notifications := authed.Group("/notifications")
		notifications.GET("", controllers.ListNotifications)
		notifications.DELETE("/:id", controllers.DismissNotification)

		admin := authed.Group("/admin", middleware.RequireScope("admin:purge"))
		admin.POST("/purge", controllers.PurgeMessages)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Private Messaging API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not configured",
			},
		})
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}

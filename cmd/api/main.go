// Package main is the API server entry point.
package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yourusername/todo-api/internal/auth"
	"github.com/yourusername/todo-api/internal/config"
	"github.com/yourusername/todo-api/internal/storage"
	"github.com/yourusername/todo-api/internal/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	db, err := storage.Open(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := storage.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	// Gin router with default middleware (logger, recovery)
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	router.Use(cors.New(corsConfig))

	if err := setupRoutes(router, cfg, db); err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth is the health check endpoint handler.
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "todo-api",
		"version": "0.1.0",
	})
}

// setupRoutes builds the services and wires every route group.
func setupRoutes(router *gin.Engine, cfg *config.Config, db *gorm.DB) error {
	router.GET("/health", handleHealth)

	users := storage.NewUserRepository(db)
	tasks := storage.NewTaskRepository(db)

	hasher := auth.NewPasswordHasher()
	tokens, err := auth.NewTokenManager(
		cfg.SecretKey,
		cfg.Algorithm,
		time.Duration(cfg.AccessTokenExpireMinutes)*time.Minute,
	)
	if err != nil {
		return err
	}

	authHandler := auth.NewHandler(users, hasher, tokens)
	requireAuth := auth.RequireAuth(tokens, users)

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/me", requireAuth, authHandler.Me)
	}

	taskHandler := task.NewHandler(task.NewService(tasks))
	taskRoutes := router.Group("/tasks")
	taskRoutes.Use(requireAuth)
	taskHandler.Register(taskRoutes)

	return nil
}

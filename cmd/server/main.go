package main

import (
	"fmt"
	"log"
	"strings"

	"pc-inventory/internal/api/routes"
	"pc-inventory/internal/config"
	"pc-inventory/internal/logger"
	"pc-inventory/internal/models"
	"pc-inventory/internal/notify"
	"pc-inventory/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Log)
	defer func() { _ = appLogger.Sync() }()

	// Initialize database
	if err := models.InitDB(cfg); err != nil {
		appLogger.Fatal("failed to initialize database", zap.Error(err))
	}

	// Create default superuser if database is empty
	if cfg.DefaultUser.Username != "" {
		authService := services.NewAuthService(cfg)
		if err := authService.CreateDefaultUser(); err != nil {
			appLogger.Warn("failed to create default user", zap.Error(err))
		}
	}

	notifier, err := notify.New(cfg.Notification, appLogger.Named("notify"))
	if err != nil {
		appLogger.Fatal("failed to set up notifications", zap.Error(err))
	}

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	r := gin.New()

	// Setup routes
	routes.SetupRoutes(r, cfg, appLogger, notifier)

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{"error": "API endpoint not found", "kind": services.KindNotFound})
			return
		}
		c.JSON(404, gin.H{"error": "Not found", "kind": services.KindNotFound})
	})

	// Run server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("starting computer inventory server",
		zap.String("addr", addr),
		zap.String("database", cfg.Database.Type),
		zap.Bool("notifications", cfg.Notification.Enabled),
	)
	if err := r.Run(addr); err != nil {
		appLogger.Fatal("failed to start server", zap.Error(err))
	}
}

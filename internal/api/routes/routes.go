package routes

import (
	"pc-inventory/internal/api/handlers"
	"pc-inventory/internal/api/middleware"
	"pc-inventory/internal/config"
	"pc-inventory/internal/metrics"
	"pc-inventory/internal/notify"
	"pc-inventory/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, logger *zap.Logger, notifier notify.Notifier) {
	// Initialize services
	authService := services.NewAuthService(cfg)
	changeService := services.NewChangeService(cfg, notifier, logger)
	computerService := services.NewComputerService(cfg, changeService)
	userService := services.NewUserService(cfg, changeService)
	profileService := services.NewProfileService()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	profileHandler := handlers.NewProfileHandler(profileService)
	computerHandler := handlers.NewComputerHandler(computerService)
	changeHandler := handlers.NewChangeHandler(changeService)
	iconHandler := handlers.NewIconHandler(cfg)

	metrics.Init()

	// Middleware
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(metrics.Middleware())
	r.Use(middleware.CORSMiddleware())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/icons/:name", iconHandler.GetIcon)

	// Public routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"message": "Computer inventory API is running",
			})
		})

		api.POST("/login", middleware.RateLimit(cfg.Security.RateLimit), authHandler.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authService.Tokens()))
	{
		protected.POST("/delete_token", authHandler.DeleteToken)

		// User management routes
		users := protected.Group("/users")
		{
			users.GET("", userHandler.GetUsers)
			users.GET("/me", userHandler.GetMe)
			users.GET("/:id", userHandler.GetUser)
			users.POST("", middleware.RequireCapability(services.CapManageUsers), userHandler.CreateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.PATCH("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", middleware.RequireCapability(services.CapManageUsers), userHandler.DeleteUser)
		}

		profiles := protected.Group("/profiles")
		{
			profiles.GET("", profileHandler.GetProfiles)
			profiles.GET("/me", profileHandler.GetMyProfile)
			profiles.GET("/:id", profileHandler.GetProfile)
			profiles.PUT("/:id", profileHandler.UpdateProfile)
			profiles.PATCH("/:id", profileHandler.UpdateProfile)
			profiles.POST("", profileHandler.MethodNotAllowed)
			profiles.DELETE("/:id", profileHandler.MethodNotAllowed)
		}

		// Computer routes
		view := middleware.RequireCapability(services.CapViewComputers)
		manage := middleware.RequireCapability(services.CapManageComputers)
		computers := protected.Group("/computers")
		{
			computers.GET("", view, computerHandler.GetComputers)
			computers.GET("/export_csv", manage, computerHandler.ExportCSV)
			computers.POST("/import_csv", manage, computerHandler.ImportCSV)
			computers.GET("/:id", view, computerHandler.GetComputer)
			computers.GET("/:id/changes", manage, computerHandler.GetComputerChanges)
			computers.POST("", manage, computerHandler.CreateComputer)
			computers.POST("/:id/log_change", manage, computerHandler.LogChange)
			computers.PUT("/:id", manage, computerHandler.UpdateComputer)
			computers.PATCH("/:id", manage, computerHandler.UpdateComputer)
			computers.DELETE("/:id", manage, computerHandler.DeleteComputer)
		}

		// Change log routes
		changes := protected.Group("/changes")
		changes.Use(middleware.RequireCapability(services.CapViewChanges))
		{
			changes.GET("", changeHandler.GetChanges)
			changes.GET("/:id", changeHandler.GetChange)
			changes.DELETE("/:id", middleware.RequireCapability(services.CapDeleteChanges), changeHandler.DeleteChange)
		}
	}
}

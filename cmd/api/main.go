package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tradebook/internal/config"
	"tradebook/internal/database"
	"tradebook/internal/handlers"
	"tradebook/internal/logger"
	"tradebook/internal/marketdata"
	"tradebook/internal/metrics"
	"tradebook/internal/middleware"
	"tradebook/internal/services"
	"tradebook/internal/validator"
)

// @title           Tradebook API
// @version         1.0
// @description     Tradebook is a brokerage-style portfolio bookkeeping API covering holdings, intraday positions, orders and watchlists.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	prices := marketdata.NewSimulated(0.02)
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	holdingService := services.NewHoldingService(db, prices)
	positionService := services.NewPositionService(db, prices)
	orderService := services.NewOrderService(db)
	watchlistService := services.NewWatchlistService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	holdingHandler := handlers.NewHoldingHandler(holdingService, auditService)
	positionHandler := handlers.NewPositionHandler(positionService, auditService)
	orderHandler := handlers.NewOrderHandler(orderService, auditService)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(metrics.Middleware())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", metrics.Handler())

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Holding routes
	holdings := protected.Group("/holdings")
	holdings.POST("", holdingHandler.CreateHolding)
	holdings.GET("", holdingHandler.GetPortfolio)
	holdings.PUT("/prices", holdingHandler.BulkUpdatePrices)
	holdings.POST("/refresh", holdingHandler.RefreshPrices)
	holdings.GET("/:id", holdingHandler.GetHolding)
	holdings.PUT("/:id", holdingHandler.UpdateHolding)
	holdings.DELETE("/:id", holdingHandler.DeleteHolding)

	// Position routes
	positions := protected.Group("/positions")
	positions.POST("", positionHandler.OpenPosition)
	positions.GET("", positionHandler.GetPositions)
	positions.PUT("/ltp", positionHandler.BulkUpdateLTP)
	positions.POST("/refresh", positionHandler.RefreshPrices)
	positions.GET("/:id", positionHandler.GetPosition)
	positions.POST("/:id/fills", positionHandler.RecordFill)
	positions.PUT("/:id/ltp", positionHandler.UpdateLTP)
	positions.POST("/:id/squareoff", positionHandler.SquareOff)

	// Order routes
	orders := protected.Group("/orders")
	orders.POST("", orderHandler.PlaceOrder)
	orders.GET("", orderHandler.GetOrders)
	orders.GET("/:id", orderHandler.GetOrder)
	orders.PUT("/:id", orderHandler.ModifyOrder)
	orders.POST("/:id/cancel", orderHandler.CancelOrder)
	orders.PUT("/:id/status", orderHandler.UpdateStatus)

	// Watchlist routes
	watchlists := protected.Group("/watchlists")
	watchlists.POST("", watchlistHandler.CreateWatchlist)
	watchlists.GET("", watchlistHandler.GetWatchlists)
	watchlists.POST("/stocks", watchlistHandler.AddToDefault)
	watchlists.GET("/:id", watchlistHandler.GetWatchlist)
	watchlists.PUT("/:id", watchlistHandler.UpdateWatchlist)
	watchlists.DELETE("/:id", watchlistHandler.DeleteWatchlist)
	watchlists.POST("/:id/stocks", watchlistHandler.AddStock)
	watchlists.DELETE("/:id/stocks", watchlistHandler.RemoveStock)
	watchlists.PUT("/:id/reorder", watchlistHandler.Reorder)

	log.Infof("Starting Tradebook backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tradebook/internal/handlers"
	"tradebook/internal/logger"
	"tradebook/internal/marketdata"
	"tradebook/internal/middleware"
	"tradebook/internal/models"
	"tradebook/internal/services"
	"tradebook/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Holding{},
		&models.Position{},
		&models.Order{},
		&models.Watchlist{},
		&models.WatchlistItem{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services, with a seeded price source so refresh endpoints stay deterministic.
	prices := marketdata.NewSimulatedWithSeed(0.02, 1)
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	holdingService := services.NewHoldingService(db, prices)
	positionService := services.NewPositionService(db, prices)
	orderService := services.NewOrderService(db)
	watchlistService := services.NewWatchlistService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	holdingHandler := handlers.NewHoldingHandler(holdingService, auditService)
	positionHandler := handlers.NewPositionHandler(positionService, auditService)
	orderHandler := handlers.NewOrderHandler(orderService, auditService)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	holdings := protected.Group("/holdings")
	holdings.POST("", holdingHandler.CreateHolding)
	holdings.GET("", holdingHandler.GetPortfolio)
	holdings.PUT("/prices", holdingHandler.BulkUpdatePrices)
	holdings.POST("/refresh", holdingHandler.RefreshPrices)
	holdings.GET("/:id", holdingHandler.GetHolding)
	holdings.PUT("/:id", holdingHandler.UpdateHolding)
	holdings.DELETE("/:id", holdingHandler.DeleteHolding)

	positions := protected.Group("/positions")
	positions.POST("", positionHandler.OpenPosition)
	positions.GET("", positionHandler.GetPositions)
	positions.PUT("/ltp", positionHandler.BulkUpdateLTP)
	positions.POST("/refresh", positionHandler.RefreshPrices)
	positions.GET("/:id", positionHandler.GetPosition)
	positions.POST("/:id/fills", positionHandler.RecordFill)
	positions.PUT("/:id/ltp", positionHandler.UpdateLTP)
	positions.POST("/:id/squareoff", positionHandler.SquareOff)

	orders := protected.Group("/orders")
	orders.POST("", orderHandler.PlaceOrder)
	orders.GET("", orderHandler.GetOrders)
	orders.GET("/:id", orderHandler.GetOrder)
	orders.PUT("/:id", orderHandler.ModifyOrder)
	orders.POST("/:id/cancel", orderHandler.CancelOrder)
	orders.PUT("/:id/status", orderHandler.UpdateStatus)

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

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// errorCode extracts the error code from an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"tradebook/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestHolding creates a holding with a unique symbol.
func CreateTestHolding(t *testing.T, db *gorm.DB, userID uint, quantity int64, averagePrice, currentPrice float64) *models.Holding {
	t.Helper()

	holding := &models.Holding{
		UserID:       userID,
		Symbol:       fmt.Sprintf("TST%d", nextID()),
		Exchange:     models.ExchangeNSE,
		Quantity:     quantity,
		AveragePrice: averagePrice,
		CurrentPrice: currentPrice,
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding
}

// CreateTestPosition creates a long MIS position with a unique symbol.
func CreateTestPosition(t *testing.T, db *gorm.DB, userID uint, quantity int64, averagePrice float64) *models.Position {
	t.Helper()

	position := &models.Position{
		UserID:          userID,
		Symbol:          fmt.Sprintf("POS%d", nextID()),
		Exchange:        models.ExchangeNSE,
		Product:         models.ProductMIS,
		AveragePrice:    averagePrice,
		LastTradedPrice: averagePrice,
		BuyQuantity:     quantity,
		BuyValue:        averagePrice * float64(quantity),
		Multiplier:      1,
	}
	if err := db.Create(position).Error; err != nil {
		t.Fatalf("failed to create test position: %v", err)
	}
	return position
}

// CreateTestOrder creates a pending limit order with a unique symbol.
func CreateTestOrder(t *testing.T, db *gorm.DB, userID uint, quantity int64, price float64) *models.Order {
	t.Helper()

	order := &models.Order{
		UserID:            userID,
		Symbol:            fmt.Sprintf("ORD%d", nextID()),
		Exchange:          models.ExchangeNSE,
		TransactionType:   models.TransactionBuy,
		OrderType:         models.OrderTypeLimit,
		Product:           models.ProductCNC,
		Quantity:          quantity,
		Price:             price,
		Validity:          models.ValidityDay,
		Status:            models.OrderStatusPending,
		RemainingQuantity: quantity,
		OrderValue:        price * float64(quantity),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("failed to create test order: %v", err)
	}
	return order
}

// CreateTestWatchlist creates a watchlist with a unique name.
func CreateTestWatchlist(t *testing.T, db *gorm.DB, userID uint) *models.Watchlist {
	t.Helper()

	watchlist := &models.Watchlist{
		UserID: userID,
		Name:   fmt.Sprintf("Test Watchlist %d", nextID()),
	}
	if err := db.Create(watchlist).Error; err != nil {
		t.Fatalf("failed to create test watchlist: %v", err)
	}
	return watchlist
}

// CreateTestWatchlistItem appends an item to a watchlist at the given position.
func CreateTestWatchlistItem(t *testing.T, db *gorm.DB, watchlistID uint, symbol string, position int) *models.WatchlistItem {
	t.Helper()

	item := &models.WatchlistItem{
		WatchlistID: watchlistID,
		Symbol:      symbol,
		Exchange:    models.ExchangeNSE,
		Position:    position,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test watchlist item: %v", err)
	}
	return item
}

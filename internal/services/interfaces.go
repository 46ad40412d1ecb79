package services

import (
	"tradebook/internal/models"
	"tradebook/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// PortfolioTotals contains the portfolio-level roll-up rendered for the wire.
// All money fields are 2-decimal strings.
type PortfolioTotals struct {
	TotalInvestment string `json:"total_investment"`
	CurrentValue    string `json:"current_value"`
	TodaysPnL       string `json:"todays_pnl"`
	TotalPnL        string `json:"total_pnl"`
	TotalPnLPct     string `json:"total_pnl_pct"`
	PctUndefined    bool   `json:"pnl_pct_undefined,omitempty"`
}

// PortfolioReport is the holdings list with its aggregate metrics.
type PortfolioReport struct {
	Holdings []models.Holding `json:"holdings"`
	Summary  PortfolioTotals  `json:"summary"`
}

// PriceUpdate is one item of a bulk price update.
type PriceUpdate struct {
	ID    uint    `json:"id" binding:"required"`
	Price float64 `json:"price" binding:"required,gt=0"`
}

// BulkItemError describes why a single bulk item was skipped.
type BulkItemError struct {
	ID      uint   `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BulkUpdateResult reports partial success of a bulk operation. A failed
// item never aborts the remaining items.
type BulkUpdateResult struct {
	Updated int             `json:"updated"`
	Errors  []BulkItemError `json:"errors"`
}

// HoldingServicer defines the contract for holding-related business logic.
type HoldingServicer interface {
	CreateHolding(userID uint, symbol string, exchange models.Exchange, quantity int64, averagePrice, currentPrice float64) (*models.Holding, error)
	GetPortfolio(userID uint) (*PortfolioReport, error)
	GetHoldingByID(userID, holdingID uint) (*models.Holding, error)
	UpdateHolding(userID, holdingID uint, quantity *int64, averagePrice, currentPrice *float64) (*models.Holding, error)
	DeleteHolding(userID, holdingID uint) error
	BulkUpdatePrices(userID uint, updates []PriceUpdate) (*BulkUpdateResult, error)
	RefreshPrices(userID uint) (*PortfolioReport, error)
}

// OpenPositionInput holds the parameters for opening a position.
type OpenPositionInput struct {
	Symbol          string
	Exchange        models.Exchange
	Product         models.Product
	TransactionType models.TransactionType
	Quantity        int64
	Price           float64
	Multiplier      int64
}

// PositionBook is the open-positions list with day and total P&L figures.
type PositionBook struct {
	Positions []models.Position `json:"positions"`
	DayPnL    string            `json:"day_pnl"`
	TotalPnL  string            `json:"total_pnl"`
}

// SquareOffResult reports the realized outcome of closing a position.
type SquareOffResult struct {
	PositionID  uint           `json:"position_id"`
	Symbol      string         `json:"symbol"`
	Product     models.Product `json:"product"`
	ExitPrice   float64        `json:"exit_price"`
	RealizedPnL string         `json:"realized_pnl"`
}

// PositionServicer defines the contract for position-related business logic.
type PositionServicer interface {
	OpenPosition(userID uint, input OpenPositionInput) (*models.Position, error)
	GetUserPositions(userID uint) (*PositionBook, error)
	GetPositionByID(userID, positionID uint) (*models.Position, error)
	RecordFill(userID, positionID uint, side models.TransactionType, quantity int64, price float64) (*models.Position, error)
	UpdateLTP(userID, positionID uint, ltp float64) (*models.Position, error)
	SquareOff(userID, positionID uint, exitPrice float64) (*SquareOffResult, error)
	BulkUpdateLTP(userID uint, updates []PriceUpdate) (*BulkUpdateResult, error)
	RefreshPrices(userID uint) (*PositionBook, error)
}

// OrderInput holds the parameters for placing an order.
type OrderInput struct {
	Symbol          string
	Exchange        models.Exchange
	TransactionType models.TransactionType
	OrderType       models.OrderType
	Product         models.Product
	Quantity        int64
	Price           float64
	TriggerPrice    float64
	Validity        models.OrderValidity
}

// OrderPatch holds the mutable fields of an open order. Nil fields are
// left unchanged.
type OrderPatch struct {
	Quantity     *int64
	Price        *float64
	TriggerPrice *float64
	Validity     *models.OrderValidity
}

// OrderFilter holds optional filter parameters for listing orders.
type OrderFilter struct {
	Status *models.OrderStatus
	Symbol string
}

// OrderServicer defines the contract for order lifecycle logic.
type OrderServicer interface {
	PlaceOrder(userID uint, input OrderInput) (*models.Order, error)
	GetUserOrders(userID uint, page pagination.PageRequest, filter OrderFilter) (*pagination.PageResponse[models.Order], error)
	GetOrderByID(userID, orderID uint) (*models.Order, error)
	ModifyOrder(userID, orderID uint, patch OrderPatch) (*models.Order, error)
	CancelOrder(userID, orderID uint) (*models.Order, error)
	UpdateStatus(userID, orderID uint, status models.OrderStatus) (*models.Order, error)
}

// StockRef identifies a stock by symbol and exchange.
type StockRef struct {
	Symbol   string          `json:"symbol" binding:"required,min=1,max=20"`
	Exchange models.Exchange `json:"exchange" binding:"required,exchange"`
}

// WatchlistServicer defines the contract for watchlist business logic.
type WatchlistServicer interface {
	CreateWatchlist(userID uint, name string, isDefault bool) (*models.Watchlist, error)
	GetUserWatchlists(userID uint) ([]models.Watchlist, error)
	GetWatchlistByID(userID, watchlistID uint) (*models.Watchlist, error)
	UpdateWatchlist(userID, watchlistID uint, name string, isDefault *bool) (*models.Watchlist, error)
	DeleteWatchlist(userID, watchlistID uint) error
	AddStock(userID, watchlistID uint, stock StockRef) (*models.Watchlist, error)
	AddToDefault(userID uint, stock StockRef) (*models.Watchlist, error)
	RemoveStock(userID, watchlistID uint, stock StockRef) (*models.Watchlist, error)
	Reorder(userID, watchlistID uint, entries []StockRef) (*models.Watchlist, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}

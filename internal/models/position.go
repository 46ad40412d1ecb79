package models

// Position represents a user's intraday or derivative exposure in a symbol
// under a product type. One row per (user, symbol, product); removed on
// square-off.
type Position struct {
	Base
	UserID          uint     `gorm:"not null;index;uniqueIndex:uq_positions_user_symbol_product" json:"user_id"`
	Symbol          string   `gorm:"not null;uniqueIndex:uq_positions_user_symbol_product" json:"symbol"`
	Exchange        Exchange `gorm:"not null;default:'NSE'" json:"exchange"`
	Product         Product  `gorm:"not null;uniqueIndex:uq_positions_user_symbol_product" json:"product"`
	AveragePrice    float64  `gorm:"not null" json:"average_price"`
	LastTradedPrice float64  `gorm:"not null" json:"last_traded_price"`
	BuyQuantity     int64    `gorm:"not null;default:0" json:"buy_quantity"`
	SellQuantity    int64    `gorm:"not null;default:0" json:"sell_quantity"`
	BuyValue        float64  `gorm:"not null;default:0" json:"buy_value"`
	SellValue       float64  `gorm:"not null;default:0" json:"sell_value"`
	Multiplier      int64    `gorm:"not null;default:1" json:"multiplier"`
	RealizedPnL     float64  `gorm:"column:realized_pnl;not null;default:0" json:"realized_pnl"`

	// Derived metrics populated at query time, never stored.
	NetQty        int64  `gorm:"-" json:"net_quantity"`
	UnrealizedPnL string `gorm:"-" json:"unrealized_pnl,omitempty"`
	TotalPnL      string `gorm:"-" json:"total_pnl,omitempty"`
}

// NetQuantity returns the signed open quantity: positive for long,
// negative for short.
func (p *Position) NetQuantity() int64 {
	return p.BuyQuantity - p.SellQuantity
}

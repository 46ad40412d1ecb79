package models

// Holding represents a user's accumulated delivery position in a symbol.
// One row per (user, symbol); removed when the position is fully exited.
type Holding struct {
	Base
	UserID          uint     `gorm:"not null;index;uniqueIndex:uq_holdings_user_symbol" json:"user_id"`
	Symbol          string   `gorm:"not null;uniqueIndex:uq_holdings_user_symbol" json:"symbol"`
	Exchange        Exchange `gorm:"not null;default:'NSE'" json:"exchange"`
	Quantity        int64    `gorm:"not null" json:"quantity"`
	PledgedQuantity int64    `gorm:"not null;default:0" json:"pledged_quantity"`
	AveragePrice    float64  `gorm:"not null" json:"average_price"`
	CurrentPrice    float64  `gorm:"not null" json:"current_price"`

	// Derived metrics populated at query time, never stored.
	PnL          string `gorm:"-" json:"pnl,omitempty"`
	DayChangePct string `gorm:"-" json:"day_change_pct,omitempty"`
	Invested     string `gorm:"-" json:"invested,omitempty"`
	CurrentValue string `gorm:"-" json:"current_value,omitempty"`
}

// AvailableQuantity returns the quantity free to sell, net of pledges.
func (h *Holding) AvailableQuantity() int64 {
	return h.Quantity - h.PledgedQuantity
}

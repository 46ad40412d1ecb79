package models

// Watchlist is a named, user-owned ordered set of stock references.
// Names are unique per user; at most one watchlist per user is the default.
type Watchlist struct {
	Base
	UserID    uint            `gorm:"not null;index;uniqueIndex:uq_watchlists_user_name" json:"user_id"`
	Name      string          `gorm:"not null;uniqueIndex:uq_watchlists_user_name" json:"name"`
	IsDefault bool            `gorm:"not null;default:false" json:"is_default"`
	Items     []WatchlistItem `gorm:"foreignKey:WatchlistID" json:"items,omitempty"`
}

// WatchlistItem is one (symbol, exchange) entry in a watchlist.
// Position holds the display order; entries are deduplicated by
// (watchlist, symbol, exchange).
type WatchlistItem struct {
	Base
	WatchlistID uint     `gorm:"not null;index;uniqueIndex:uq_watchlist_items_entry" json:"watchlist_id"`
	Symbol      string   `gorm:"not null;uniqueIndex:uq_watchlist_items_entry" json:"symbol"`
	Exchange    Exchange `gorm:"not null;uniqueIndex:uq_watchlist_items_entry" json:"exchange"`
	Position    int      `gorm:"not null" json:"position"`
}

package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
)

const defaultWatchlistName = "Default"

// watchlistService handles watchlist business logic.
type watchlistService struct {
	db *gorm.DB
}

// NewWatchlistService creates a new WatchlistServicer.
func NewWatchlistService(db *gorm.DB) WatchlistServicer {
	return &watchlistService{db: db}
}

// CreateWatchlist creates a named watchlist. Names are unique per user;
// marking it default demotes any existing default.
func (s *watchlistService) CreateWatchlist(userID uint, name string, isDefault bool) (*models.Watchlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	var count int64
	if err := s.db.Model(&models.Watchlist{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateWatchlist
	}

	watchlist := &models.Watchlist{
		UserID:    userID,
		Name:      name,
		IsDefault: isDefault,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if isDefault {
			if err := tx.Model(&models.Watchlist{}).
				Where("user_id = ? AND is_default = ?", userID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(watchlist).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	watchlist.Items = []models.WatchlistItem{}
	return watchlist, nil
}

// GetUserWatchlists returns all of the user's watchlists with their items
// in display order.
func (s *watchlistService) GetUserWatchlists(userID uint) ([]models.Watchlist, error) {
	var watchlists []models.Watchlist
	err := s.db.Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("name ASC").
		Find(&watchlists).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if watchlists == nil {
		watchlists = []models.Watchlist{}
	}
	return watchlists, nil
}

// GetWatchlistByID returns a watchlist with ordered items if it belongs
// to the user.
func (s *watchlistService) GetWatchlistByID(userID, watchlistID uint) (*models.Watchlist, error) {
	var watchlist models.Watchlist
	err := s.db.Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&watchlist, watchlistID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWatchlistNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if watchlist.Items == nil {
		watchlist.Items = []models.WatchlistItem{}
	}
	return &watchlist, nil
}

// UpdateWatchlist renames a watchlist and/or toggles its default flag.
// Promoting a list to default demotes the previous default in the same
// transaction.
func (s *watchlistService) UpdateWatchlist(userID, watchlistID uint, name string, isDefault *bool) (*models.Watchlist, error) {
	watchlist, err := s.GetWatchlistByID(userID, watchlistID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name != "" && name != watchlist.Name {
		var count int64
		if err := s.db.Model(&models.Watchlist{}).
			Where("user_id = ? AND name = ? AND id != ?", userID, name, watchlistID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateWatchlist
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if isDefault != nil && *isDefault && !watchlist.IsDefault {
			if err := tx.Model(&models.Watchlist{}).
				Where("user_id = ? AND is_default = ?", userID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}

		updates := map[string]interface{}{}
		if name != "" {
			updates["name"] = name
		}
		if isDefault != nil {
			updates["is_default"] = *isDefault
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(watchlist).Updates(updates).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if name != "" {
		watchlist.Name = name
	}
	if isDefault != nil {
		watchlist.IsDefault = *isDefault
	}
	return watchlist, nil
}

// DeleteWatchlist removes a watchlist and its items.
func (s *watchlistService) DeleteWatchlist(userID, watchlistID uint) error {
	watchlist, err := s.GetWatchlistByID(userID, watchlistID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("watchlist_id = ?", watchlistID).
			Delete(&models.WatchlistItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(watchlist).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddStock appends a stock to the end of a watchlist. Entries are unique
// by (symbol, exchange) within a list.
func (s *watchlistService) AddStock(userID, watchlistID uint, stock StockRef) (*models.Watchlist, error) {
	watchlist, err := s.GetWatchlistByID(userID, watchlistID)
	if err != nil {
		return nil, err
	}
	return s.appendStock(watchlist, stock)
}

// AddToDefault appends a stock to the user's default watchlist, creating
// a "Default" list on first use.
func (s *watchlistService) AddToDefault(userID uint, stock StockRef) (*models.Watchlist, error) {
	var watchlist models.Watchlist
	err := s.db.Where("user_id = ? AND is_default = ?", userID, true).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&watchlist).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		created, cerr := s.CreateWatchlist(userID, defaultWatchlistName, true)
		if cerr != nil {
			return nil, cerr
		}
		watchlist = *created
	}
	return s.appendStock(&watchlist, stock)
}

// RemoveStock removes a stock from a watchlist and closes the gap in the
// display order.
func (s *watchlistService) RemoveStock(userID, watchlistID uint, stock StockRef) (*models.Watchlist, error) {
	watchlist, err := s.GetWatchlistByID(userID, watchlistID)
	if err != nil {
		return nil, err
	}

	symbol := strings.ToUpper(strings.TrimSpace(stock.Symbol))

	res := s.db.Unscoped().Where("watchlist_id = ? AND symbol = ? AND exchange = ?",
		watchlist.ID, symbol, stock.Exchange).
		Delete(&models.WatchlistItem{})
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrStockNotInList
	}

	if err := s.compact(watchlist.ID); err != nil {
		return nil, err
	}
	return s.GetWatchlistByID(userID, watchlistID)
}

// Reorder rearranges a watchlist's items. The request must be an exact
// permutation of the current entries.
func (s *watchlistService) Reorder(userID, watchlistID uint, entries []StockRef) (*models.Watchlist, error) {
	watchlist, err := s.GetWatchlistByID(userID, watchlistID)
	if err != nil {
		return nil, err
	}

	if len(entries) != len(watchlist.Items) {
		return nil, apperrors.ErrWatchlistMismatch
	}

	itemByKey := make(map[string]uint, len(watchlist.Items))
	for _, item := range watchlist.Items {
		itemByKey[item.Symbol+"|"+string(item.Exchange)] = item.ID
	}

	ordered := make([]uint, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		key := strings.ToUpper(strings.TrimSpace(entry.Symbol)) + "|" + string(entry.Exchange)
		id, ok := itemByKey[key]
		if !ok || seen[key] {
			return nil, apperrors.ErrWatchlistMismatch
		}
		seen[key] = true
		ordered = append(ordered, id)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for pos, id := range ordered {
			if err := tx.Model(&models.WatchlistItem{}).
				Where("id = ?", id).
				Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetWatchlistByID(userID, watchlistID)
}

// appendStock inserts a stock after the current last position.
func (s *watchlistService) appendStock(watchlist *models.Watchlist, stock StockRef) (*models.Watchlist, error) {
	symbol := strings.ToUpper(strings.TrimSpace(stock.Symbol))
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol is required")
	}

	var count int64
	if err := s.db.Model(&models.WatchlistItem{}).
		Where("watchlist_id = ? AND symbol = ? AND exchange = ?", watchlist.ID, symbol, stock.Exchange).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEntry
	}

	item := &models.WatchlistItem{
		WatchlistID: watchlist.ID,
		Symbol:      symbol,
		Exchange:    stock.Exchange,
		Position:    len(watchlist.Items),
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetWatchlistByID(watchlist.UserID, watchlist.ID)
}

// compact renumbers positions 0..n-1 after a removal.
func (s *watchlistService) compact(watchlistID uint) error {
	var items []models.WatchlistItem
	if err := s.db.Where("watchlist_id = ?", watchlistID).
		Order("position ASC").
		Find(&items).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for pos := range items {
			if items[pos].Position == pos {
				continue
			}
			if err := tx.Model(&items[pos]).Update("position", pos).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
}

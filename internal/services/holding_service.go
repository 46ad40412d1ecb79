package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/marketdata"
	"tradebook/internal/models"
	"tradebook/internal/valuation"
)

// holdingService handles holding-related business logic.
type holdingService struct {
	db     *gorm.DB
	prices marketdata.Source
}

// NewHoldingService creates a new HoldingServicer.
func NewHoldingService(db *gorm.DB, prices marketdata.Source) HoldingServicer {
	return &holdingService{db: db, prices: prices}
}

// CreateHolding creates a holding for the user. A user holds at most one
// row per symbol.
func (s *holdingService) CreateHolding(userID uint, symbol string, exchange models.Exchange, quantity int64, averagePrice, currentPrice float64) (*models.Holding, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol is required")
	}
	if quantity < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must not be negative")
	}
	if averagePrice <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "average_price must be positive")
	}
	if currentPrice < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current_price must not be negative")
	}

	var count int64
	if err := s.db.Model(&models.Holding{}).
		Where("user_id = ? AND symbol = ?", userID, symbol).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateHolding
	}

	holding := &models.Holding{
		UserID:       userID,
		Symbol:       symbol,
		Exchange:     exchange,
		Quantity:     quantity,
		AveragePrice: averagePrice,
		CurrentPrice: currentPrice,
	}
	if holding.CurrentPrice == 0 {
		holding.CurrentPrice = averagePrice
	}

	if err := s.db.Create(holding).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.decorate(holding)
	return holding, nil
}

// GetPortfolio returns all holdings for the user with per-holding metrics
// and the portfolio-level roll-up.
func (s *holdingService) GetPortfolio(userID uint) (*PortfolioReport, error) {
	var holdings []models.Holding
	if err := s.db.Where("user_id = ?", userID).Order("symbol ASC").Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	entries := make([]valuation.PortfolioEntry, 0, len(holdings))
	for i := range holdings {
		h := &holdings[i]
		s.decorate(h)
		entry := valuation.PortfolioEntry{
			Quantity:     h.Quantity,
			AveragePrice: h.AveragePrice,
			CurrentPrice: h.CurrentPrice,
		}
		if metrics, err := valuation.ComputeHoldingMetrics(h.Quantity, h.AveragePrice, h.CurrentPrice); err == nil {
			entry.Net = metrics.Net
		}
		entries = append(entries, entry)
	}

	summary := valuation.AggregatePortfolio(entries)
	report := &PortfolioReport{
		Holdings: holdings,
		Summary: PortfolioTotals{
			TotalInvestment: valuation.Fixed(summary.TotalInvestment),
			CurrentValue:    valuation.Fixed(summary.CurrentValue),
			TodaysPnL:       valuation.Fixed(summary.TodaysPnL),
			TotalPnL:        valuation.Fixed(summary.TotalPnL),
			TotalPnLPct:     valuation.Fixed(summary.TotalPnLPct),
			PctUndefined:    summary.PctUndefined,
		},
	}
	if report.Holdings == nil {
		report.Holdings = []models.Holding{}
	}
	return report, nil
}

// GetHoldingByID returns a holding if it belongs to the user.
func (s *holdingService) GetHoldingByID(userID, holdingID uint) (*models.Holding, error) {
	var holding models.Holding
	if err := s.db.Where("user_id = ?", userID).First(&holding, holdingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHoldingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.decorate(&holding)
	return &holding, nil
}

// UpdateHolding updates quantity, average price and/or current price.
// Nil fields are left unchanged.
func (s *holdingService) UpdateHolding(userID, holdingID uint, quantity *int64, averagePrice, currentPrice *float64) (*models.Holding, error) {
	holding, err := s.GetHoldingByID(userID, holdingID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if quantity != nil {
		if *quantity < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must not be negative")
		}
		updates["quantity"] = *quantity
	}
	if averagePrice != nil {
		if *averagePrice <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "average_price must be positive")
		}
		updates["average_price"] = *averagePrice
	}
	if currentPrice != nil {
		if *currentPrice < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current_price must not be negative")
		}
		updates["current_price"] = *currentPrice
	}

	if len(updates) > 0 {
		if err := s.db.Model(holding).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	s.decorate(holding)
	return holding, nil
}

// DeleteHolding removes a holding, e.g. when the position is fully exited.
func (s *holdingService) DeleteHolding(userID, holdingID uint) error {
	result := s.db.Unscoped().Where("user_id = ?", userID).Delete(&models.Holding{}, holdingID)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrHoldingNotFound
	}
	return nil
}

// BulkUpdatePrices applies a list of (id, price) updates. A bad item is
// reported in the error list and never aborts the remaining items.
func (s *holdingService) BulkUpdatePrices(userID uint, updates []PriceUpdate) (*BulkUpdateResult, error) {
	result := &BulkUpdateResult{Errors: []BulkItemError{}}

	for _, u := range updates {
		if u.Price <= 0 {
			result.Errors = append(result.Errors, BulkItemError{
				ID:      u.ID,
				Code:    apperrors.ErrInvalidInput.Code,
				Message: "price must be positive",
			})
			continue
		}

		res := s.db.Model(&models.Holding{}).
			Where("id = ? AND user_id = ?", u.ID, userID).
			Update("current_price", u.Price)
		if res.Error != nil {
			result.Errors = append(result.Errors, BulkItemError{
				ID:      u.ID,
				Code:    apperrors.ErrInternalServer.Code,
				Message: apperrors.ErrInternalServer.Message,
			})
			continue
		}
		if res.RowsAffected == 0 {
			result.Errors = append(result.Errors, BulkItemError{
				ID:      u.ID,
				Code:    apperrors.ErrHoldingNotFound.Code,
				Message: apperrors.ErrHoldingNotFound.Message,
			})
			continue
		}
		result.Updated++
	}

	return result, nil
}

// RefreshPrices advances every holding's current price by one simulated
// tick and returns the refreshed portfolio.
func (s *holdingService) RefreshPrices(userID uint) (*PortfolioReport, error) {
	var holdings []models.Holding
	if err := s.db.Where("user_id = ?", userID).Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range holdings {
		h := &holdings[i]
		next := s.prices.NextPrice(h.Symbol, h.CurrentPrice)
		if err := s.db.Model(h).Update("current_price", next).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetPortfolio(userID)
}

// decorate populates the derived display fields on a holding.
func (s *holdingService) decorate(h *models.Holding) {
	metrics, err := valuation.ComputeHoldingMetrics(h.Quantity, h.AveragePrice, h.CurrentPrice)
	if err != nil {
		// avg=0 only occurs on rows predating validation; leave derived fields empty
		return
	}
	h.PnL = valuation.Fixed(metrics.Net)
	h.DayChangePct = valuation.Fixed(metrics.DayChangePct)
	h.Invested = valuation.Fixed(metrics.Invested)
	h.CurrentValue = valuation.Fixed(metrics.CurrentValue)
}

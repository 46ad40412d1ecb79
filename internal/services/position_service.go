package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/marketdata"
	"tradebook/internal/models"
	"tradebook/internal/valuation"
)

// positionService handles position-related business logic.
type positionService struct {
	db     *gorm.DB
	prices marketdata.Source
}

// NewPositionService creates a new PositionServicer.
func NewPositionService(db *gorm.DB, prices marketdata.Source) PositionServicer {
	return &positionService{db: db, prices: prices}
}

// OpenPosition opens a position with an initial fill. A user holds at most
// one row per (symbol, product).
func (s *positionService) OpenPosition(userID uint, input OpenPositionInput) (*models.Position, error) {
	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be positive")
	}
	if input.Price <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price must be positive")
	}
	multiplier := input.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}
	if multiplier < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "multiplier must be at least 1")
	}

	var count int64
	if err := s.db.Model(&models.Position{}).
		Where("user_id = ? AND symbol = ? AND product = ?", userID, symbol, input.Product).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicatePosition
	}

	position := &models.Position{
		UserID:          userID,
		Symbol:          symbol,
		Exchange:        input.Exchange,
		Product:         input.Product,
		AveragePrice:    input.Price,
		LastTradedPrice: input.Price,
		Multiplier:      multiplier,
	}
	value := input.Price * float64(input.Quantity)
	if input.TransactionType == models.TransactionSell {
		position.SellQuantity = input.Quantity
		position.SellValue = value
	} else {
		position.BuyQuantity = input.Quantity
		position.BuyValue = value
	}

	if err := s.db.Create(position).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.decorate(position)
	return position, nil
}

// GetUserPositions returns all open positions with derived P&L and the
// day/total roll-up.
func (s *positionService) GetUserPositions(userID uint) (*PositionBook, error) {
	var positions []models.Position
	if err := s.db.Where("user_id = ?", userID).Order("symbol ASC").Find(&positions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	day := decimal.Zero
	total := decimal.Zero
	for i := range positions {
		p := &positions[i]
		pnl := s.decorate(p)
		day = day.Add(pnl.Unrealized)
		total = total.Add(pnl.Total)
	}

	book := &PositionBook{
		Positions: positions,
		DayPnL:    valuation.Fixed(day),
		TotalPnL:  valuation.Fixed(total),
	}
	if book.Positions == nil {
		book.Positions = []models.Position{}
	}
	return book, nil
}

// GetPositionByID returns a position if it belongs to the user.
func (s *positionService) GetPositionByID(userID, positionID uint) (*models.Position, error) {
	var position models.Position
	if err := s.db.Where("user_id = ?", userID).First(&position, positionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPositionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.decorate(&position)
	return &position, nil
}

// RecordFill applies a fill to a position: side aggregates always grow,
// the average price is re-weighted while exposure increases, and P&L is
// realized while exposure shrinks.
func (s *positionService) RecordFill(userID, positionID uint, side models.TransactionType, quantity int64, price float64) (*models.Position, error) {
	if quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be positive")
	}
	if price <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price must be positive")
	}

	position, err := s.GetPositionByID(userID, positionID)
	if err != nil {
		return nil, err
	}

	net := position.NetQuantity()
	value := price * float64(quantity)

	if side == models.TransactionBuy {
		position.BuyQuantity += quantity
		position.BuyValue += value
		if net >= 0 {
			// Extending the long side: weighted average entry price.
			totalCost := position.AveragePrice*float64(net) + value
			position.AveragePrice = totalCost / float64(net+quantity)
		} else {
			// Covering a short: realize against the short entry price.
			closing := quantity
			if closing > -net {
				closing = -net
			}
			position.RealizedPnL += (position.AveragePrice - price) * float64(closing) * float64(position.Multiplier)
			if quantity > -net {
				// Flipped long; remainder opens at the fill price.
				position.AveragePrice = price
			}
		}
	} else {
		position.SellQuantity += quantity
		position.SellValue += value
		if net <= 0 {
			totalCost := position.AveragePrice*float64(-net) + value
			position.AveragePrice = totalCost / float64(-net+quantity)
		} else {
			closing := quantity
			if closing > net {
				closing = net
			}
			position.RealizedPnL += (price - position.AveragePrice) * float64(closing) * float64(position.Multiplier)
			if quantity > net {
				position.AveragePrice = price
			}
		}
	}
	position.LastTradedPrice = price

	if err := s.db.Model(position).Updates(map[string]interface{}{
		"buy_quantity":      position.BuyQuantity,
		"buy_value":         position.BuyValue,
		"sell_quantity":     position.SellQuantity,
		"sell_value":        position.SellValue,
		"average_price":     position.AveragePrice,
		"last_traded_price": position.LastTradedPrice,
		"realized_pnl":      position.RealizedPnL,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.decorate(position)
	return position, nil
}

// UpdateLTP updates the last traded price of a position.
func (s *positionService) UpdateLTP(userID, positionID uint, ltp float64) (*models.Position, error) {
	if ltp <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "last_traded_price must be positive")
	}

	position, err := s.GetPositionByID(userID, positionID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(position).Update("last_traded_price", ltp).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.decorate(position)
	return position, nil
}

// SquareOff closes a position at the given exit price, realizing the open
// P&L and removing the row.
func (s *positionService) SquareOff(userID, positionID uint, exitPrice float64) (*SquareOffResult, error) {
	if exitPrice <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "exit_price must be positive")
	}

	position, err := s.GetPositionByID(userID, positionID)
	if err != nil {
		return nil, err
	}

	pnl := valuation.ComputePositionPnL(
		position.NetQuantity(),
		position.AveragePrice,
		exitPrice,
		position.Multiplier,
		position.RealizedPnL,
	)

	if err := s.db.Unscoped().Delete(position).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &SquareOffResult{
		PositionID:  position.ID,
		Symbol:      position.Symbol,
		Product:     position.Product,
		ExitPrice:   exitPrice,
		RealizedPnL: valuation.Fixed(pnl.Total),
	}, nil
}

// BulkUpdateLTP applies a list of (id, ltp) updates. A bad item is
// reported in the error list and never aborts the remaining items.
func (s *positionService) BulkUpdateLTP(userID uint, updates []PriceUpdate) (*BulkUpdateResult, error) {
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

		res := s.db.Model(&models.Position{}).
			Where("id = ? AND user_id = ?", u.ID, userID).
			Update("last_traded_price", u.Price)
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
				Code:    apperrors.ErrPositionNotFound.Code,
				Message: apperrors.ErrPositionNotFound.Message,
			})
			continue
		}
		result.Updated++
	}

	return result, nil
}

// RefreshPrices advances every position's LTP by one simulated tick and
// returns the refreshed book.
func (s *positionService) RefreshPrices(userID uint) (*PositionBook, error) {
	var positions []models.Position
	if err := s.db.Where("user_id = ?", userID).Find(&positions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range positions {
		p := &positions[i]
		next := s.prices.NextPrice(p.Symbol, p.LastTradedPrice)
		if err := s.db.Model(p).Update("last_traded_price", next).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetUserPositions(userID)
}

// decorate populates the derived display fields on a position and returns
// the computed P&L for roll-ups.
func (s *positionService) decorate(p *models.Position) valuation.PositionPnL {
	pnl := valuation.ComputePositionPnL(
		p.NetQuantity(),
		p.AveragePrice,
		p.LastTradedPrice,
		p.Multiplier,
		p.RealizedPnL,
	)
	p.NetQty = p.NetQuantity()
	p.UnrealizedPnL = valuation.Fixed(pnl.Unrealized)
	p.TotalPnL = valuation.Fixed(pnl.Total)
	return pnl
}

package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/pagination"
)

// orderService handles order lifecycle logic.
type orderService struct {
	db *gorm.DB
}

// NewOrderService creates a new OrderServicer.
func NewOrderService(db *gorm.DB) OrderServicer {
	return &orderService{db: db}
}

// validateOrderFields enforces the per-type price rules. quantity must be
// positive for every type; LIMIT and SL carry a limit price, SL and SL-M
// carry a trigger, and an SL trigger sits below its limit price.
func validateOrderFields(orderType models.OrderType, quantity int64, price, triggerPrice float64) error {
	if quantity <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidOrder, "quantity must be positive")
	}
	if price < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidOrder, "price must not be negative")
	}
	if triggerPrice < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidOrder, "trigger_price must not be negative")
	}

	switch orderType {
	case models.OrderTypeLimit:
		if price <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidOrder, "price is required for LIMIT orders")
		}
	case models.OrderTypeSL:
		if price <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidOrder, "price is required for SL orders")
		}
		if triggerPrice <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidOrder, "trigger_price is required for SL orders")
		}
		if triggerPrice >= price {
			return apperrors.WithMessage(apperrors.ErrInvalidOrder, "trigger_price must be below price for SL orders")
		}
	case models.OrderTypeSLM:
		if triggerPrice <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidOrder, "trigger_price is required for SL-M orders")
		}
	}
	return nil
}

// PlaceOrder records a new order in PENDING status.
func (s *orderService) PlaceOrder(userID uint, input OrderInput) (*models.Order, error) {
	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidOrder, "symbol is required")
	}
	if err := validateOrderFields(input.OrderType, input.Quantity, input.Price, input.TriggerPrice); err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:            userID,
		Symbol:            symbol,
		Exchange:          input.Exchange,
		TransactionType:   input.TransactionType,
		OrderType:         input.OrderType,
		Product:           input.Product,
		Quantity:          input.Quantity,
		Price:             input.Price,
		TriggerPrice:      input.TriggerPrice,
		Validity:          input.Validity,
		Status:            models.OrderStatusPending,
		RemainingQuantity: input.Quantity,
		OrderValue:        input.Price * float64(input.Quantity),
	}

	if err := s.db.Create(order).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return order, nil
}

// GetUserOrders returns the user's orders, newest first, with optional
// status and symbol filters.
func (s *orderService) GetUserOrders(userID uint, page pagination.PageRequest, filter OrderFilter) (*pagination.PageResponse[models.Order], error) {
	page.Defaults()

	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if symbol := strings.ToUpper(strings.TrimSpace(filter.Symbol)); symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&orders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(orders, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetOrderByID returns an order if it belongs to the user.
func (s *orderService) GetOrderByID(userID, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Where("user_id = ?", userID).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &order, nil
}

// ModifyOrder patches the mutable fields of an order that is still open.
// The patched result is re-validated against the per-type rules.
func (s *orderService) ModifyOrder(userID, orderID uint, patch OrderPatch) (*models.Order, error) {
	order, err := s.GetOrderByID(userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.IsOpen() {
		return nil, apperrors.ErrOrderNotOpen
	}

	quantity := order.Quantity
	price := order.Price
	triggerPrice := order.TriggerPrice
	validity := order.Validity
	if patch.Quantity != nil {
		quantity = *patch.Quantity
	}
	if patch.Price != nil {
		price = *patch.Price
	}
	if patch.TriggerPrice != nil {
		triggerPrice = *patch.TriggerPrice
	}
	if patch.Validity != nil {
		validity = *patch.Validity
	}

	if err := validateOrderFields(order.OrderType, quantity, price, triggerPrice); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"quantity":           quantity,
		"price":              price,
		"trigger_price":      triggerPrice,
		"validity":           validity,
		"remaining_quantity": quantity,
		"order_value":        price * float64(quantity),
	}
	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	order.Quantity = quantity
	order.Price = price
	order.TriggerPrice = triggerPrice
	order.Validity = validity
	order.RemainingQuantity = quantity
	order.OrderValue = price * float64(quantity)
	return order, nil
}

// CancelOrder moves an open order to CANCELLED.
func (s *orderService) CancelOrder(userID, orderID uint) (*models.Order, error) {
	return s.transition(userID, orderID, models.OrderStatusCancelled, 0)
}

// UpdateStatus moves an open order to a terminal status. EXECUTED clears
// the remaining quantity; the order value is left as placed.
func (s *orderService) UpdateStatus(userID, orderID uint, status models.OrderStatus) (*models.Order, error) {
	switch status {
	case models.OrderStatusExecuted, models.OrderStatusRejected, models.OrderStatusCancelled:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be EXECUTED, CANCELLED or REJECTED")
	}
	return s.transition(userID, orderID, status, 0)
}

// transition applies a terminal status to an order that is still open.
func (s *orderService) transition(userID, orderID uint, status models.OrderStatus, remaining int64) (*models.Order, error) {
	order, err := s.GetOrderByID(userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.IsOpen() {
		return nil, apperrors.ErrOrderNotOpen
	}

	updates := map[string]interface{}{"status": status}
	if status == models.OrderStatusExecuted {
		updates["remaining_quantity"] = remaining
	}
	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	order.Status = status
	if status == models.OrderStatusExecuted {
		order.RemainingQuantity = remaining
	}
	return order, nil
}

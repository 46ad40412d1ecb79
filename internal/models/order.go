package models

import "time"

// TransactionType is the side of an order.
type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// OrderType determines which price fields an order requires.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeSL     OrderType = "SL"
	OrderTypeSLM    OrderType = "SL-M"
)

// OrderValidity controls how long an order stays live.
type OrderValidity string

const (
	ValidityDay OrderValidity = "DAY"
	ValidityIOC OrderValidity = "IOC"
)

// OrderStatus is the lifecycle state of an order. PENDING and OPEN are
// modifiable; EXECUTED, CANCELLED and REJECTED are terminal.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusOpen      OrderStatus = "OPEN"
	OrderStatusExecuted  OrderStatus = "EXECUTED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// IsOpen reports whether the status still allows modification.
func (s OrderStatus) IsOpen() bool {
	return s == OrderStatusPending || s == OrderStatusOpen
}

// IsTerminal reports whether the status permits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusExecuted || s == OrderStatusCancelled || s == OrderStatusRejected
}

// Order represents a request to transact. No execution engine backs it;
// status only changes through the lifecycle rules in the order service.
type Order struct {
	Base
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	Symbol            string          `gorm:"not null" json:"symbol"`
	Exchange          Exchange        `gorm:"not null;default:'NSE'" json:"exchange"`
	TransactionType   TransactionType `gorm:"not null" json:"transaction_type"`
	OrderType         OrderType       `gorm:"not null" json:"order_type"`
	Product           Product         `gorm:"not null;default:'CNC'" json:"product"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
	Price             float64         `json:"price"`
	TriggerPrice      float64         `json:"trigger_price"`
	Validity          OrderValidity   `gorm:"not null;default:'DAY'" json:"validity"`
	Status            OrderStatus     `gorm:"not null;default:'PENDING';index" json:"status"`
	RemainingQuantity int64           `gorm:"not null" json:"remaining_quantity"`
	OrderValue        float64         `gorm:"not null;default:0" json:"order_value"`
}

// Age returns how long ago the order was placed.
func (o *Order) Age() time.Duration {
	return time.Since(o.CreatedAt)
}

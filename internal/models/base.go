package models

import (
	"time"

	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Exchange identifies the stock exchange an instrument trades on.
type Exchange string

const (
	ExchangeNSE Exchange = "NSE"
	ExchangeBSE Exchange = "BSE"
)

// Product identifies the product type a position is carried under.
type Product string

const (
	ProductCNC  Product = "CNC"  // delivery
	ProductMIS  Product = "MIS"  // intraday margin
	ProductNRML Product = "NRML" // carry-forward derivative
)

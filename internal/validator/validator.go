// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("exchange", validateExchange)
		_ = v.RegisterValidation("product", validateProduct)
		_ = v.RegisterValidation("order_type", validateOrderType)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("order_validity", validateOrderValidity)
		_ = v.RegisterValidation("order_status", validateOrderStatus)
	}
}

func validateExchange(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "NSE", "BSE":
		return true
	}
	return false
}

func validateProduct(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "CNC", "MIS", "NRML":
		return true
	}
	return false
}

func validateOrderType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "MARKET", "LIMIT", "SL", "SL-M":
		return true
	}
	return false
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "BUY", "SELL":
		return true
	}
	return false
}

func validateOrderValidity(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "DAY", "IOC":
		return true
	}
	return false
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "PENDING", "OPEN", "EXECUTED", "CANCELLED", "REJECTED":
		return true
	}
	return false
}

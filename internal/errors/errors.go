// Package errors provides custom error types for the Tradebook API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Holding errors.
var (
	ErrHoldingNotFound  = &AppError{Code: "HOLDING_NOT_FOUND", Message: "Holding not found", StatusCode: http.StatusNotFound}
	ErrDuplicateHolding = &AppError{Code: "DUPLICATE_HOLDING", Message: "A holding for this symbol already exists", StatusCode: http.StatusConflict}
)

// Position errors.
var (
	ErrPositionNotFound  = &AppError{Code: "POSITION_NOT_FOUND", Message: "Position not found", StatusCode: http.StatusNotFound}
	ErrDuplicatePosition = &AppError{Code: "DUPLICATE_POSITION", Message: "A position for this symbol and product already exists", StatusCode: http.StatusConflict}
)

// Order errors.
var (
	ErrOrderNotFound = &AppError{Code: "ORDER_NOT_FOUND", Message: "Order not found", StatusCode: http.StatusNotFound}
	ErrInvalidOrder  = &AppError{Code: "INVALID_ORDER", Message: "Invalid order parameters", StatusCode: http.StatusBadRequest}
	ErrOrderNotOpen  = &AppError{Code: "ORDER_NOT_OPEN", Message: "Order is no longer open for modification", StatusCode: http.StatusConflict}
)

// Watchlist errors.
var (
	ErrWatchlistNotFound  = &AppError{Code: "WATCHLIST_NOT_FOUND", Message: "Watchlist not found", StatusCode: http.StatusNotFound}
	ErrDuplicateWatchlist = &AppError{Code: "DUPLICATE_WATCHLIST", Message: "A watchlist with this name already exists", StatusCode: http.StatusConflict}
	ErrDuplicateEntry     = &AppError{Code: "DUPLICATE_ENTRY", Message: "Stock is already in this watchlist", StatusCode: http.StatusConflict}
	ErrStockNotInList     = &AppError{Code: "STOCK_NOT_IN_WATCHLIST", Message: "Stock is not in this watchlist", StatusCode: http.StatusNotFound}
	ErrWatchlistMismatch  = &AppError{Code: "WATCHLIST_SET_MISMATCH", Message: "Reorder must contain exactly the existing watchlist entries", StatusCode: http.StatusBadRequest}
)
